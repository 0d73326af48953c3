package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// NodeType discriminates the node kinds retained from the source markup.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

// Attr is one attribute occurrence. Names are lowercased at build time.
type Attr struct {
	Name  string
	Value string
}

// Node is the uniform tree the pipeline operates on. Tag and attribute names
// are lowercase; text nodes preserve whitespace. Comments are retained but
// ignored by every later stage. Src points back at the underlying parser
// node so XPath tooling can address the original tree.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Text     string
	Parent   *Node
	Children []*Node
	Src      *html.Node
}

// Attr returns the value of the named attribute. Duplicate attribute names
// resolve to the first occurrence.
func (n *Node) Attr(name string) string {
	v, _ := n.AttrOK(name)
	return v
}

// AttrOK reports the attribute value and whether the attribute is present.
func (n *Node) AttrOK(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute is present, regardless of value.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.AttrOK(name)
	return ok
}

// DirectText concatenates the node's immediate text children, trimmed.
func (n *Node) DirectText() string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.Type != TextNode {
			continue
		}
		t := strings.TrimSpace(c.Text)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t)
	}
	return b.String()
}

// CollectText concatenates all descendant text, whitespace-normalized.
func (n *Node) CollectText() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	if n.Type == TextNode {
		t := strings.TrimSpace(n.Text)
		if t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
		return
	}
	if n.Type == CommentNode {
		return
	}
	for _, c := range n.Children {
		c.collectText(b)
	}
}

// Walk visits the subtree depth-first, children left to right. Returning
// false from fn prunes the subtree below the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first element in document order satisfying pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if found != nil {
			return false
		}
		if cur.Type == ElementNode && pred(cur) {
			found = cur
			return false
		}
		return true
	})
	return found
}
