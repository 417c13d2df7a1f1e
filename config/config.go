// Package config loads and validates the calibre2jellyfin configuration
// file. The file is configparser-style INI: each [Construct...] section
// describes one export job, and list-valued keys use python multiline
// values (indented continuation lines).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// FolderMode controls the nesting depth of the destination tree.
type FolderMode string

const (
	FolderModeBook             FolderMode = "book"
	FolderModeSeriesBook       FolderMode = "series,book"
	FolderModeAuthorSeriesBook FolderMode = "author,series,book"
)

// NestsSeries reports whether books belonging to a series are placed under
// a series folder.
func (m FolderMode) NestsSeries() bool {
	return m == FolderModeSeriesBook || m == FolderModeAuthorSeriesBook
}

// NestsAuthor reports whether books are placed under an author folder.
func (m FolderMode) NestsAuthor() bool {
	return m == FolderModeAuthorSeriesBook
}

// SelectionMode controls which books a Construct includes.
type SelectionMode string

const (
	SelectionAuthor  SelectionMode = "author"
	SelectionSubject SelectionMode = "subject"
	SelectionAll     SelectionMode = "all"
)

// Construct describes one export job: one Calibre store mirrored into one
// Jellyfin store with its own selection and folder-mode rules.
type Construct struct {
	Name                string
	CalibreStore        string
	JellyfinStore       string
	FolderMode          FolderMode
	SelectionMode       SelectionMode
	AuthorFolders       []string
	SubjectQuery        [][]string
	BookFileTypes       []string
	MangleMetaTitle     bool
	MangleMetaTitleSort bool
}

// DefaultPath returns the conventional configuration file location,
// ~/.config/calibre2jellyfin.cfg.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(home, ".config", "calibre2jellyfin.cfg"), nil
}

// Load reads the configuration file at path and returns every validated
// Construct section. Any missing required key, unknown enum value or failed
// store check is an error; the caller is expected to treat it as fatal.
func Load(path string) ([]Construct, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
	}, path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read configuration %q", path)
	}

	var constructs []Construct
	for _, section := range file.Sections() {
		if !strings.HasPrefix(section.Name(), "Construct") {
			continue
		}
		construct, err := parseSection(section)
		if err != nil {
			return nil, errors.Wrapf(err, "section [%s] in configuration %q", section.Name(), path)
		}
		constructs = append(constructs, construct)
	}
	if len(constructs) == 0 {
		return nil, errors.Errorf("no [Construct...] sections found in configuration %q", path)
	}
	return constructs, nil
}

func parseSection(section *ini.Section) (Construct, error) {
	construct := Construct{
		Name: section.Name(),
		MangleMetaTitle:     true,
		MangleMetaTitleSort: false,
	}

	var err error
	if construct.CalibreStore, err = requiredKey(section, "calibreStore"); err != nil {
		return construct, err
	}
	if construct.JellyfinStore, err = requiredKey(section, "jellyfinStore"); err != nil {
		return construct, err
	}

	mode, err := requiredKey(section, "foldermode")
	if err != nil {
		return construct, err
	}
	construct.FolderMode = FolderMode(mode)
	switch construct.FolderMode {
	case FolderModeBook, FolderModeSeriesBook, FolderModeAuthorSeriesBook:
	default:
		return construct, errors.Errorf(`foldermode value must be "book", "series,book" or "author,series,book"`)
	}

	// An absent selectionMode keeps older configuration files working:
	// they predate the key and always selected by author list.
	construct.SelectionMode = SelectionAuthor
	if section.HasKey("selectionMode") {
		construct.SelectionMode = SelectionMode(section.Key("selectionMode").String())
	}
	switch construct.SelectionMode {
	case SelectionAuthor, SelectionSubject, SelectionAll:
	default:
		return construct, errors.Errorf(`selectionMode value must be "author", "subject" or "all"`)
	}

	construct.AuthorFolders = splitLines(section.Key("authorFolders").String())
	construct.BookFileTypes = splitLines(section.Key("bookfiletypes").String())
	construct.SubjectQuery = parseSubjects(section.Key("subjects").String())

	if section.HasKey("mangleMetaTitle") {
		if construct.MangleMetaTitle, err = section.Key("mangleMetaTitle").Bool(); err != nil {
			return construct, errors.Wrap(err, "mangleMetaTitle")
		}
	}
	if section.HasKey("mangleMetaTitleSort") {
		if construct.MangleMetaTitleSort, err = section.Key("mangleMetaTitleSort").Bool(); err != nil {
			return construct, errors.Wrap(err, "mangleMetaTitleSort")
		}
	}

	return construct, validate(construct)
}

func validate(construct Construct) error {
	srcInfo, err := os.Stat(construct.CalibreStore)
	if err != nil || !srcInfo.IsDir() {
		return errors.Errorf("calibreStore value %q is not a directory or does not exist", construct.CalibreStore)
	}
	dstInfo, err := os.Stat(construct.JellyfinStore)
	if err != nil || !dstInfo.IsDir() {
		return errors.Errorf("jellyfinStore value %q is not a directory or does not exist", construct.JellyfinStore)
	}
	if os.SameFile(srcInfo, dstInfo) {
		return errors.New("jellyfinStore and calibreStore must be different locations")
	}
	if len(construct.BookFileTypes) == 0 {
		return errors.New("bookfiletypes must contain at least one entry")
	}
	if construct.SelectionMode == SelectionAuthor && len(construct.AuthorFolders) == 0 {
		return errors.New("authorFolders must contain at least one entry when selectionMode is author")
	}
	if construct.SelectionMode == SelectionSubject && len(construct.SubjectQuery) == 0 {
		return errors.New("subjects must contain at least one entry when selectionMode is subject")
	}
	return nil
}

func requiredKey(section *ini.Section, name string) (string, error) {
	if !section.HasKey(name) {
		return "", errors.Errorf("required parameter %q is missing", name)
	}
	return section.Key(name).String(), nil
}

// splitLines converts a multiline INI value into an ordered list, dropping
// blank lines.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseSubjects converts the multiline subjects value into an OR-list of
// AND-groups. Each line is one group of comma-separated subject tags,
// lower-cased and trimmed.
func parseSubjects(raw string) [][]string {
	var query [][]string
	for _, line := range splitLines(raw) {
		var group []string
		for _, item := range strings.Split(line, ",") {
			item = strings.ToLower(strings.TrimSpace(item))
			if item != "" {
				group = append(group, item)
			}
		}
		if len(group) > 0 {
			query = append(query, group)
		}
	}
	return query
}
