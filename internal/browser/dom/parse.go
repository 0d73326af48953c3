package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// Document is the adaptor output: the wrapped tree plus the stylesheet text
// gathered while wrapping, in document order.
type Document struct {
	Root *Node
	// HTMLRoot is the untranslated parser document, kept for XPath lookup.
	HTMLRoot *html.Node
	// Styles holds the contents of <style> blocks. Linked external sheets
	// are the caller's to fetch and append.
	Styles []string
}

// Parse wraps the output of the tolerant HTML5 parser into the internal
// tree. It never fails on malformed markup; only reader errors surface.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	doc := &Document{HTMLRoot: root}
	doc.Root = doc.wrap(root, nil)
	return doc, nil
}

// ParseBytes parses raw document bytes, transcoding to UTF-8 first when the
// content sniffs as another charset.
func ParseBytes(b []byte) (*Document, error) {
	b = toUTF8(b)
	return Parse(bytes.NewReader(b))
}

// toUTF8 best-effort transcodes non-UTF-8 input using charset detection.
// Undecodable input is passed through; the HTML parser copes.
func toUTF8(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	best, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || best == nil {
		return b
	}
	enc, err := htmlindex.Get(strings.ToLower(best.Charset))
	if err != nil {
		return b
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return decoded
}

func (d *Document) wrap(src *html.Node, parent *Node) *Node {
	n := &Node{Parent: parent, Src: src}
	switch src.Type {
	case html.DocumentNode:
		n.Type = DocumentNode
	case html.ElementNode:
		n.Type = ElementNode
		n.Tag = strings.ToLower(src.Data)
		n.Attrs = make([]Attr, 0, len(src.Attr))
		for _, a := range src.Attr {
			n.Attrs = append(n.Attrs, Attr{Name: strings.ToLower(a.Key), Value: a.Val})
		}
	case html.TextNode:
		n.Type = TextNode
		n.Text = src.Data
	case html.CommentNode:
		n.Type = CommentNode
		n.Text = src.Data
	default:
		// Doctype and error nodes carry nothing the pipeline needs.
		n.Type = CommentNode
	}

	if n.Type == ElementNode {
		switch n.Tag {
		case "style":
			d.Styles = append(d.Styles, rawText(src))
			return n
		case "script":
			// Script text never becomes DOM text, but the element itself
			// is kept so CAPTCHA detection can inspect its src.
			return n
		}
	}

	for c := src.FirstChild; c != nil; c = c.NextSibling {
		n.Children = append(n.Children, d.wrap(c, n))
	}
	return n
}

func rawText(src *html.Node) string {
	var b strings.Builder
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// Body returns the <body> element, or nil for a bodyless fragment.
func (d *Document) Body() *Node {
	return d.Root.Find(func(n *Node) bool { return n.Tag == "body" })
}

// Title returns the trimmed text of the first <title> element.
func (d *Document) Title() string {
	t := d.Root.Find(func(n *Node) bool { return n.Tag == "title" })
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.CollectText())
}
