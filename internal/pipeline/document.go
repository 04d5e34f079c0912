package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Doctype is written in front of every serialized document.
const Doctype = "<!DOCTYPE html>\n"

// ErrNoDocumentElement indicates the parsed tree has no <html> element.
var ErrNoDocumentElement = errors.New("document has no html element")

// Document is a parsed HTML page.
// The parser always synthesizes <html>, <head> and <body>, so fragments
// and full pages are handled alike.
type Document struct {
	doc *goquery.Document
}

// ParseDocument parses HTML content into a Document.
func ParseDocument(content []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// BodyHTML returns the inner HTML of <body>.
func (d *Document) BodyHTML() (string, error) {
	return d.doc.Find("body").First().Html()
}

// SetBodyHTML replaces the children of <body> with the given markup.
func (d *Document) SetBodyHTML(markup string) {
	d.doc.Find("body").First().SetHtml(markup)
}

// BodyText returns the text content of <body>.
func (d *Document) BodyText() string {
	return d.doc.Find("body").First().Text()
}

// AppendHead appends markup (typically a <style> element) to <head>.
// An element with the same id already in <head> is replaced.
func (d *Document) AppendHead(markup string) {
	if markup == "" {
		return
	}
	head := d.doc.Find("head").First()

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err == nil {
		frag.Find("head > [id], body > [id]").Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("id")
			head.Children().FilterFunction(func(_ int, c *goquery.Selection) bool {
				v, ok := c.Attr("id")
				return ok && v == id
			}).Remove()
		})
	}
	head.AppendHtml(markup)
}

// Render serializes the document as the doctype followed by the outer HTML
// of the <html> element, with leading whitespace removed.
func (d *Document) Render() ([]byte, error) {
	root := d.doc.Find("html").First()
	if root.Length() == 0 {
		return nil, ErrNoDocumentElement
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root.Get(0)); err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	out := strings.TrimLeft(buf.String(), " \t\r\n")
	return []byte(Doctype + out), nil
}
