// Package opf reads and writes Calibre .opf metadata sidecar files.
//
// A Document wraps the parsed XML tree and keeps handles to the few
// elements the exporter may rewrite (title, title sort, description), so
// everything else in the file is carried through to the destination
// unchanged.
package opf

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Document is one parsed .opf metadata file.
type Document struct {
	doc *etree.Document

	// Series and SeriesIndex are the raw calibre:series meta values,
	// empty when the book does not belong to a series.
	Series      string
	SeriesIndex string

	// Author is the text of the first dc:creator element.
	Author string

	// Subjects holds every dc:subject text, lower-cased and trimmed,
	// order-preserving, duplicates kept.
	Subjects []string

	title     *etree.Element
	titleSort *etree.Element
	desc      *etree.Element
}

// Load parses the metadata file at path. The read is permissive: Calibre
// output varies and a slightly malformed file is still worth mirroring.
func Load(path string) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse %s: no root element", path)
	}
	d := &Document{doc: doc}
	d.extract(doc.Root())
	return d, nil
}

// extract walks the tree once, capturing the first occurrence of each field
// of interest. Matching is by local element name so both dc:-prefixed and
// unprefixed documents work.
func (d *Document) extract(el *etree.Element) {
	switch el.Tag {
	case "title":
		if d.title == nil {
			d.title = el
		}
	case "creator":
		if d.Author == "" {
			d.Author = el.Text()
		}
	case "description":
		if d.desc == nil {
			d.desc = el
		}
	case "subject":
		d.Subjects = append(d.Subjects, strings.ToLower(strings.TrimSpace(el.Text())))
	case "meta":
		switch el.SelectAttrValue("name", "") {
		case "calibre:series":
			if d.Series == "" {
				d.Series = el.SelectAttrValue("content", "")
			}
		case "calibre:series_index":
			if d.SeriesIndex == "" {
				d.SeriesIndex = el.SelectAttrValue("content", "")
			}
		case "calibre:title_sort":
			if d.titleSort == nil {
				d.titleSort = el
			}
		}
	}
	for _, child := range el.ChildElements() {
		d.extract(child)
	}
}

// HasTitle reports whether the document contains a dc:title element.
func (d *Document) HasTitle() bool { return d.title != nil }

// HasTitleSort reports whether the document contains a calibre:title_sort
// meta tag.
func (d *Document) HasTitleSort() bool { return d.titleSort != nil }

// HasDescription reports whether the document contains a dc:description
// element.
func (d *Document) HasDescription() bool { return d.desc != nil }

// Title returns the title text, empty if absent.
func (d *Document) Title() string {
	if d.title == nil {
		return ""
	}
	return d.title.Text()
}

// TitleSort returns the calibre:title_sort content attribute, empty if
// absent.
func (d *Document) TitleSort() string {
	if d.titleSort == nil {
		return ""
	}
	return d.titleSort.SelectAttrValue("content", "")
}

// Description returns the description text, empty if absent.
func (d *Document) Description() string {
	if d.desc == nil {
		return ""
	}
	return d.desc.Text()
}

// MangleTitle prefixes the title text in place, typically with a formatted
// series index. No-op when the document has no title.
func (d *Document) MangleTitle(prefix string) {
	if d.title == nil {
		return
	}
	d.title.SetText(prefix + d.title.Text())
}

// MangleTitleSort prefixes the calibre:title_sort content attribute in
// place. No-op when the document has no sort tag.
func (d *Document) MangleTitleSort(prefix string) {
	if d.titleSort == nil {
		return
	}
	d.titleSort.CreateAttr("content", prefix+d.titleSort.SelectAttrValue("content", ""))
}

// PrependDescription prepends an HTML fragment to the description text.
// No-op when the document has no description.
func (d *Document) PrependDescription(fragment string) {
	if d.desc == nil {
		return
	}
	d.desc.SetText(fragment + d.desc.Text())
}

// Write serializes the (possibly mutated) document to path, truncating any
// existing file.
func (d *Document) Write(path string) error {
	if err := d.doc.WriteToFile(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
