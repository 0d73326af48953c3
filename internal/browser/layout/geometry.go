package layout

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// Bounds maps styled nodes to their border boxes. Nodes absent from the map
// generated no box, which for elements means display:none.
type Bounds map[*style.StyledNode]Rect

// CollectBounds flattens a laid-out tree into per-node border boxes.
// Anonymous boxes are skipped; their children carry the geometry.
func CollectBounds(root *LayoutBox) Bounds {
	out := make(Bounds)
	var walk func(*LayoutBox)
	walk = func(b *LayoutBox) {
		if b == nil {
			return
		}
		if b.StyledNode != nil {
			out[b.StyledNode] = b.Dimensions.BorderBox()
		}
		for _, c := range b.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// GetElementGeometry locates an element by XPath against the parsed document
// and returns its border box. The query runs on the original parser tree;
// the match is joined back to layout through the wrapper's source pointers.
func GetElementGeometry(doc *dom.Document, root *LayoutBox, xpath string) (Rect, error) {
	if doc == nil || doc.HTMLRoot == nil {
		return Rect{}, fmt.Errorf("document has no parse tree")
	}
	node, err := htmlquery.Query(doc.HTMLRoot, xpath)
	if err != nil {
		return Rect{}, fmt.Errorf("querying %q: %w", xpath, err)
	}
	if node == nil {
		return Rect{}, fmt.Errorf("no element matches %q", xpath)
	}
	box := findBoxForSource(root, node)
	if box == nil {
		return Rect{}, fmt.Errorf("element %q has no layout box", xpath)
	}
	return box.Dimensions.BorderBox(), nil
}

func findBoxForSource(b *LayoutBox, src *html.Node) *LayoutBox {
	if b == nil {
		return nil
	}
	if b.StyledNode != nil && b.StyledNode.Node != nil && b.StyledNode.Node.Src == src {
		return b
	}
	for _, c := range b.Children {
		if found := findBoxForSource(c, src); found != nil {
			return found
		}
	}
	return nil
}
