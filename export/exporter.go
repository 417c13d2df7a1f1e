// Package export mirrors selected Calibre book folders into a
// Jellyfin-compatible library tree of symlinks and metadata copies.
//
// The destination is synchronized incrementally: a run compares each
// destination artifact's own modification time against its source and only
// creates or refreshes what is missing or stale, so re-running on an
// unchanged library performs zero writes.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/shawn61cp/calibre2jellyfin/config"
	"github.com/shawn61cp/calibre2jellyfin/opf"
)

// Options are the run-wide switches from the command line.
type Options struct {
	// UpdateAllMetadata forces a rewrite of every selected book's metadata
	// copy, useful after mangling options change.
	UpdateAllMetadata bool
	// DryRun prints planned destination paths without touching the
	// filesystem.
	DryRun bool
	// ListOnly collects a selection report instead of exporting.
	ListOnly bool
}

// Exporter mirrors one Construct's selection of Calibre books into its
// Jellyfin store.
type Exporter struct {
	Construct config.Construct
	Options   Options

	report []string
}

// NewExporter returns an Exporter for one configured Construct.
func NewExporter(construct config.Construct, opts Options) *Exporter {
	return &Exporter{Construct: construct, Options: opts}
}

// Run processes every author folder the Construct selects, one book at a
// time. Per-book problems are logged as warnings and skipped; only a
// failure to enumerate the Calibre store itself returns an error.
func (e *Exporter) Run() error {
	if e.Construct.SelectionMode == config.SelectionAuthor {
		for _, author := range e.Construct.AuthorFolders {
			e.doAuthor(author)
		}
		return nil
	}

	// all and subject modes scan every author folder in the store
	entries, err := os.ReadDir(e.Construct.CalibreStore)
	if err != nil {
		return fmt.Errorf("read calibre store %s: %w", e.Construct.CalibreStore, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			e.doAuthor(entry.Name())
		}
	}
	return nil
}

// ReportLines returns the selection report collected so far, one
// tab-separated line per selected book, unsorted.
func (e *Exporter) ReportLines() []string {
	return e.report
}

func (e *Exporter) doAuthor(authorFolder string) {
	authorSrcPath := filepath.Join(e.Construct.CalibreStore, authorFolder)
	authorDstPath := filepath.Join(e.Construct.JellyfinStore, authorFolder)

	info, err := os.Stat(authorSrcPath)
	if err != nil || !info.IsDir() {
		log.Warnf("author folder %q does not exist or is not a directory in calibre store %q",
			authorFolder, e.Construct.CalibreStore)
		return
	}

	entries, err := os.ReadDir(authorSrcPath)
	if err != nil {
		log.Warnf("could not read author folder %q: %v", authorSrcPath, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			e.doBook(authorDstPath, filepath.Join(authorSrcPath, entry.Name()))
		}
	}
}

// doBook plans and synchronizes the destination folder, symlinks and
// metadata copy for one source book folder.
func (e *Exporter) doBook(authorDstPath, bookSrcPath string) {
	bookFilePath := findBookFile(bookSrcPath, e.Construct.BookFileTypes)
	if bookFilePath == "" {
		// In subject mode a folder without a recognized book file is not
		// even a candidate, so stay quiet about it.
		if e.Construct.SelectionMode != config.SelectionSubject {
			log.Warnf("no book file (%s) found in %q",
				strings.Join(e.Construct.BookFileTypes, ", "), bookSrcPath)
		}
		return
	}

	metadataPath := findMetadata(bookSrcPath)
	coverPath := findCover(bookSrcPath)

	var doc *opf.Document
	if metadataPath != "" {
		var err error
		if doc, err = opf.Load(metadataPath); err != nil {
			log.Warnf("could not read metadata file %q: %v", metadataPath, err)
			doc = nil
		}
	}

	if e.Construct.SelectionMode == config.SelectionSubject {
		if doc == nil {
			return
		}
		matched := SubjectQuery(e.Construct.SubjectQuery).Match(doc.Subjects)
		if matched < 0 {
			return
		}
		log.Debugf("%q selected by subject line %d", bookSrcPath, matched+1)
	}

	if doc != nil && !doc.HasTitle() {
		log.Warnf("missing normally required <dc:title> element in metadata for %q", bookSrcPath)
	}
	if doc != nil && doc.Author == "" {
		log.Warnf("missing normally required <dc:creator> (i.e. author) element in metadata for %q", bookSrcPath)
	}

	var series, seriesIndex, author string
	if doc != nil {
		series, seriesIndex, author = doc.Series, doc.SeriesIndex, doc.Author
	}
	bookFolder := filepath.Base(bookSrcPath)

	if e.Options.ListOnly {
		e.report = append(e.report, reportLine(author, series, seriesIndex, bookFolder))
		return
	}

	// Output is .../author/series/book, .../series/book or .../book
	// depending on folder mode. A book without series metadata never nests
	// under a series folder: the structure degrades to the next-looser mode
	// for that one book.
	var bookDstPath string
	switch {
	case series != "" && e.Construct.FolderMode.NestsSeries():
		bookFolder = SanitizeFilename(FormatSeriesIndex(seriesIndex) + " - " + bookFolder)
		seriesFolder := SanitizeFilename(series + " Series")
		if e.Construct.FolderMode.NestsAuthor() {
			bookDstPath = filepath.Join(authorDstPath, seriesFolder, bookFolder)
		} else {
			bookDstPath = filepath.Join(e.Construct.JellyfinStore, seriesFolder, bookFolder)
		}
	case e.Construct.FolderMode.NestsAuthor():
		bookDstPath = filepath.Join(authorDstPath, bookFolder)
	default:
		bookDstPath = filepath.Join(e.Construct.JellyfinStore, bookFolder)
	}

	log.Debugf("book %q: file=%q cover=%q metadata=%q series=%q index=%q author=%q dst=%q",
		bookSrcPath, bookFilePath, coverPath, metadataPath, series, seriesIndex, author, bookDstPath)

	if e.Options.DryRun {
		fmt.Printf("%s -> %s\n", bookSrcPath, bookDstPath)
		return
	}

	log.Info(bookSrcPath)

	if err := os.MkdirAll(bookDstPath, 0o755); err != nil {
		log.Warnf("could not create book's destination folder (or a parent folder thereof) %q: %v",
			bookDstPath, err)
		return
	}

	// The remaining steps are independent: a failure in one is logged and
	// the next is still attempted. A later run heals partial results.
	e.syncLink(bookFilePath, filepath.Join(bookDstPath, filepath.Base(bookFilePath)))
	if coverPath != "" {
		e.syncLink(coverPath, filepath.Join(bookDstPath, filepath.Base(coverPath)))
	}
	if doc != nil && metadataPath != "" {
		e.syncMetadata(doc, metadataPath, filepath.Join(bookDstPath, filepath.Base(metadataPath)), series)
	}
}

// syncLink points dst at src. An existing destination entry is never
// recreated; when the source is newer than the link itself, the link is
// touched so Jellyfin's change detection notices it.
func (e *Exporter) syncLink(src, dst string) {
	dstInfo, err := os.Lstat(dst)
	if err == nil {
		srcInfo, err := os.Stat(src)
		if err == nil && dstInfo.ModTime().Before(srcInfo.ModTime()) {
			if err := unix.Lutimes(dst, nil); err != nil {
				log.Warnf("could not touch symlink %q: %v", dst, err)
			}
		}
		return
	}
	if err := os.Symlink(src, dst); err != nil {
		log.Warnf("could not create symlink %q: %v", dst, err)
	}
}

// syncMetadata decides whether the destination metadata copy needs
// (re)writing and applies the series mangling rules before the write.
func (e *Exporter) syncMetadata(doc *opf.Document, src, dst, series string) {
	write := e.Options.UpdateAllMetadata
	if !write {
		dstInfo, err := os.Stat(dst)
		if err != nil {
			write = true
		} else if srcInfo, err := os.Stat(src); err == nil && dstInfo.ModTime().Before(srcInfo.ModTime()) {
			write = true
		}
	}
	if !write {
		return
	}

	if series != "" && e.Construct.FolderMode.NestsSeries() {
		prefix := FormatSeriesIndex(doc.SeriesIndex) + " - "
		if e.Construct.MangleMetaTitle {
			doc.MangleTitle(prefix)
		}
		if e.Construct.MangleMetaTitleSort {
			doc.MangleTitleSort(prefix)
		}
		// The description header uses the raw series index, not the
		// zero-padded one.
		doc.PrependDescription(fmt.Sprintf("<H4>Book %s of <em>%s</em>, by %s</H4>",
			doc.SeriesIndex, series, doc.Author))
	}

	if err := doc.Write(dst); err != nil {
		log.Warnf("could not (over)write metadata file %q: %v", dst, err)
	}
}

func reportLine(author, series, seriesIndex, bookFolder string) string {
	if author == "" {
		author = "-"
	}
	if series == "" {
		series = "-"
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", author, series, FormatSeriesIndex(seriesIndex), bookFolder)
}
