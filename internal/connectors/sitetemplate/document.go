package sitetemplate

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Document keeps the raw body next to the parsed tree because the script
// page strategy matches against the original HTML text.
type Document struct {
	raw  string
	root *goquery.Document
}

func NewDocument(body []byte) (*Document, error) {
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{raw: string(body), root: root}, nil
}

func ParseHTML(html string) (*Document, error) {
	return NewDocument([]byte(html))
}

func (d *Document) Raw() string {
	return d.raw
}

func (d *Document) Find(selector string) *goquery.Selection {
	return d.root.Find(selector)
}
