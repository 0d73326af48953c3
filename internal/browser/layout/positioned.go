package layout

import (
	"math"

	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// layoutPositionedChildren runs after normal flow and solves every absolute
// and fixed box against its containing block: the nearest positioned
// ancestor for absolute, the root (viewport origin) for fixed.
func (b *LayoutBox) layoutPositionedChildren(e *Engine) {
	root := b
	var walk func(*LayoutBox)
	walk = func(box *LayoutBox) {
		for _, c := range box.Children {
			if c.isOutOfFlow() {
				cb := root
				if c.StyledNode.Position() == style.PositionAbsolute {
					cb = positionedAncestor(c, root)
				}
				c.ContainingBlock = cb
				c.layoutPositioned(cb, e)
			}
			walk(c)
		}
	}
	walk(b)
}

func positionedAncestor(box *LayoutBox, root *LayoutBox) *LayoutBox {
	for cur := box.parent; cur != nil; cur = cur.parent {
		if cur.StyledNode != nil && cur.StyledNode.Position() != style.PositionStatic {
			return cur
		}
	}
	return root
}

// layoutPositioned solves the horizontal and vertical constraint equations
// for one out-of-flow box and lays out its content.
func (b *LayoutBox) layoutPositioned(cb *LayoutBox, e *Engine) {
	sn := b.StyledNode
	cbBox := cb.Dimensions.Content
	b.calculatePaddingAndBorders(cbBox.Width, e)
	b.Dimensions.Margin = Edges{
		Top:    b.resolveMargin("margin-top", cbBox.Width, e),
		Right:  b.resolveMargin("margin-right", cbBox.Width, e),
		Bottom: b.resolveMargin("margin-bottom", cbBox.Width, e),
		Left:   b.resolveMargin("margin-left", cbBox.Width, e),
	}
	edgesX := b.Dimensions.Padding.Left + b.Dimensions.Padding.Right +
		b.Dimensions.Border.Left + b.Dimensions.Border.Right
	edgesY := b.Dimensions.Padding.Top + b.Dimensions.Padding.Bottom +
		b.Dimensions.Border.Top + b.Dimensions.Border.Bottom

	get := func(prop string, ref float64) (float64, bool) {
		raw := string(sn.Lookup(parserProp(prop), "auto"))
		if raw == "auto" || raw == "" {
			return 0, false
		}
		return b.resolve(raw, ref, e), true
	}

	left, hasLeft := get("left", cbBox.Width)
	right, hasRight := get("right", cbBox.Width)
	width, hasWidth := get("width", cbBox.Width)
	if hasWidth && sn.BoxSizing() == style.BorderBox {
		width = math.Max(0, width-edgesX)
	}
	switch {
	case !hasWidth && hasLeft && hasRight:
		width = math.Max(0, cbBox.Width-left-right-edgesX-
			b.Dimensions.Margin.Left-b.Dimensions.Margin.Right)
	case !hasWidth:
		width = b.shrinkToFitWidth(e, cbBox.Width-edgesX)
	}
	width = b.clampWidth(width, cbBox.Width, e)

	var borderLeft float64
	switch {
	case hasLeft:
		borderLeft = cbBox.X + left + b.Dimensions.Margin.Left
	case hasRight:
		borderLeft = cbBox.X + cbBox.Width - right - width - edgesX - b.Dimensions.Margin.Right
	default:
		borderLeft = cbBox.X + b.Dimensions.Margin.Left
	}

	b.Dimensions.Content.X = borderLeft + b.Dimensions.Border.Left + b.Dimensions.Padding.Left
	b.Dimensions.Content.Width = width

	top, hasTop := get("top", cbBox.Height)
	bottom, hasBottom := get("bottom", cbBox.Height)
	height, hasHeight := get("height", cbBox.Height)
	if hasHeight && sn.BoxSizing() == style.BorderBox {
		height = math.Max(0, height-edgesY)
	}

	var borderTop float64
	switch {
	case hasTop:
		borderTop = cbBox.Y + top + b.Dimensions.Margin.Top
	case hasBottom && hasHeight:
		borderTop = cbBox.Y + cbBox.Height - bottom - height - edgesY - b.Dimensions.Margin.Bottom
	default:
		borderTop = cbBox.Y + b.Dimensions.Margin.Top
	}
	b.Dimensions.Content.Y = borderTop + b.Dimensions.Border.Top + b.Dimensions.Padding.Top

	b.Dimensions.Content.Height = 0
	b.layoutContent(e)
	b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, contentExtent(b))
	switch {
	case hasHeight:
		b.Dimensions.Content.Height = height
	case hasTop && hasBottom:
		b.Dimensions.Content.Height = math.Max(0, cbBox.Height-top-bottom-edgesY-
			b.Dimensions.Margin.Top-b.Dimensions.Margin.Bottom)
	}
	b.Dimensions.Content.Height = b.clampHeight(b.Dimensions.Content.Height, cbBox.Height, e)

	// Bottom-anchored boxes with auto height settle after content is known.
	if !hasTop && hasBottom && !hasHeight {
		newTop := cbBox.Y + cbBox.Height - bottom - b.Dimensions.Content.Height - edgesY - b.Dimensions.Margin.Bottom
		b.offsetSubtree(0, newTop-borderTop)
	}
}
