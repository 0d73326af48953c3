package layout

import (
	"math"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// layoutBlockFlow stacks in-flow children vertically, collapsing adjacent
// vertical margins between siblings. Absolute and fixed children take no
// space here; they are solved in a later pass against their containing block.
func (b *LayoutBox) layoutBlockFlow(e *Engine) {
	if b.isInlineContext() {
		b.layoutInline(e)
		return
	}

	cursor := b.Dimensions.Content.Y
	prevMarginBottom := 0.0
	first := true

	for _, c := range b.Children {
		if c.isOutOfFlow() {
			c.ContainingBlock = b
			continue
		}
		c.ContainingBlock = b
		c.calculateBlockWidthAndEdges(e)

		gap := c.Dimensions.Margin.Top
		if !first {
			gap = math.Max(prevMarginBottom, c.Dimensions.Margin.Top) - prevMarginBottom
			// cursor already sits below the previous border box, so only the
			// collapsed excess over the trailing margin is added.
			cursor += prevMarginBottom
			if gap < 0 {
				gap = 0
			}
		}
		borderTop := cursor + gap
		c.Dimensions.Content.X = b.Dimensions.Content.X + c.Dimensions.Margin.Left +
			c.Dimensions.Border.Left + c.Dimensions.Padding.Left
		c.Dimensions.Content.Y = borderTop + c.Dimensions.Border.Top + c.Dimensions.Padding.Top

		c.layoutContent(e)
		c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, contentExtent(c))
		c.calculateBlockHeight(e)

		if c.StyledNode != nil && c.StyledNode.Position() == style.PositionRelative {
			c.applyRelativeOffsets(e)
		}

		bb := c.Dimensions.BorderBox()
		cursor = bb.Y + bb.Height
		prevMarginBottom = c.Dimensions.Margin.Bottom
		first = false
	}
	if !first {
		cursor += prevMarginBottom
	}
	b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, cursor-b.Dimensions.Content.Y)
}

func (b *LayoutBox) isOutOfFlow() bool {
	if b.StyledNode == nil {
		return false
	}
	p := b.StyledNode.Position()
	return p == style.PositionAbsolute || p == style.PositionFixed
}

// isInlineContext reports whether every in-flow child participates in inline
// layout, making this box an inline formatting context.
func (b *LayoutBox) isInlineContext() bool {
	any := false
	for _, c := range b.Children {
		if c.isOutOfFlow() {
			continue
		}
		if c.BoxType != InlineBox && c.BoxType != InlineBlockBox {
			return false
		}
		any = true
	}
	return any
}

// applyRelativeOffsets shifts a relatively positioned box and its subtree by
// its left/top offsets without affecting flow.
func (b *LayoutBox) applyRelativeOffsets(e *Engine) {
	sn := b.StyledNode
	ref := 0.0
	if b.ContainingBlock != nil {
		ref = b.ContainingBlock.Dimensions.Content.Width
	}
	dx := 0.0
	if raw := string(sn.Lookup("left", "auto")); raw != "auto" {
		dx = b.resolve(raw, ref, e)
	} else if raw := string(sn.Lookup("right", "auto")); raw != "auto" {
		dx = -b.resolve(raw, ref, e)
	}
	dy := 0.0
	if raw := string(sn.Lookup("top", "auto")); raw != "auto" {
		dy = b.resolve(raw, ref, e)
	} else if raw := string(sn.Lookup("bottom", "auto")); raw != "auto" {
		dy = -b.resolve(raw, ref, e)
	}
	if dx != 0 || dy != 0 {
		b.offsetSubtree(dx, dy)
	}
}

func (b *LayoutBox) offsetSubtree(dx, dy float64) {
	b.Dimensions.Content.X += dx
	b.Dimensions.Content.Y += dy
	for _, c := range b.Children {
		c.offsetSubtree(dx, dy)
	}
}

// -- inline formatting --

// inlineCursor tracks the current line during inline layout.
type inlineCursor struct {
	left, right float64
	x, y        float64
	lineHeight  float64
}

func (cur *inlineCursor) newline() {
	if cur.lineHeight == 0 {
		cur.lineHeight = style.BaseFontSize * style.DefaultLineHeight
	}
	cur.y += cur.lineHeight
	cur.x = cur.left
	cur.lineHeight = 0
}

// layoutInline flows the children left to right into line boxes. A run wider
// than the content width wraps onto as many lines as its measured width
// requires.
func (b *LayoutBox) layoutInline(e *Engine) {
	c := b.Dimensions.Content
	cur := &inlineCursor{left: c.X, right: c.X + c.Width, x: c.X, y: c.Y}
	for _, child := range b.Children {
		if child.isOutOfFlow() {
			child.ContainingBlock = b
			continue
		}
		child.ContainingBlock = b
		b.flowInline(child, cur, e)
	}
	if cur.x > cur.left || cur.lineHeight > 0 {
		cur.y += cur.lineHeight
	}
	b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, cur.y-c.Y)
}

func (b *LayoutBox) flowInline(child *LayoutBox, cur *inlineCursor, e *Engine) {
	sn := child.StyledNode
	switch {
	case sn != nil && sn.Node.Type == dom.TextNode:
		w, h := style.MeasureText(sn)
		placeInlineRun(child, cur, w, h)

	case child.BoxType == InlineBlockBox:
		child.calculateBlockWidthAndEdges(e)
		// Position is provisional; layout uses relative content math, then
		// the margin box is slotted onto the line.
		child.Dimensions.Content.X = cur.x + child.Dimensions.Margin.Left +
			child.Dimensions.Border.Left + child.Dimensions.Padding.Left
		child.Dimensions.Content.Y = cur.y + child.Dimensions.Margin.Top +
			child.Dimensions.Border.Top + child.Dimensions.Padding.Top
		child.layoutContent(e)
		child.Dimensions.Content.Height = math.Max(child.Dimensions.Content.Height, contentExtent(child))
		child.calculateBlockHeight(e)

		mb := child.Dimensions.MarginBox()
		if cur.x+mb.Width > cur.right && cur.x > cur.left {
			dx := cur.left - cur.x
			cur.newline()
			child.offsetSubtree(dx, cur.y-mb.Y)
		}
		mb = child.Dimensions.MarginBox()
		child.offsetSubtree(cur.x-mb.X, cur.y-mb.Y)
		mb = child.Dimensions.MarginBox()
		cur.x += mb.Width
		if mb.Height > cur.lineHeight {
			cur.lineHeight = mb.Height
		}

	case sn != nil && sn.Node.Tag == "br":
		child.Dimensions.Content = Rect{X: cur.x, Y: cur.y}
		cur.newline()

	default:
		// Inline element: flow its children, then wrap its own box around
		// what they occupied.
		startX, startY := cur.x, cur.y
		for _, gc := range child.Children {
			if gc.isOutOfFlow() {
				gc.ContainingBlock = b
				continue
			}
			gc.ContainingBlock = b
			b.flowInline(gc, cur, e)
		}
		child.Dimensions.Content = unionBounds(child.Children, Rect{X: startX, Y: startY})
	}
}

// placeInlineRun slots a measured run onto the line, wrapping when it does
// not fit.
func placeInlineRun(box *LayoutBox, cur *inlineCursor, w, h float64) {
	avail := cur.right - cur.left
	if w <= cur.right-cur.x {
		box.Dimensions.Content = Rect{X: cur.x, Y: cur.y, Width: w, Height: h}
		cur.x += w
		if h > cur.lineHeight {
			cur.lineHeight = h
		}
		return
	}
	if cur.x > cur.left {
		cur.newline()
	}
	if w <= avail || avail <= 0 {
		box.Dimensions.Content = Rect{X: cur.x, Y: cur.y, Width: w, Height: h}
		cur.x += w
		if h > cur.lineHeight {
			cur.lineHeight = h
		}
		return
	}
	lines := math.Ceil(w / avail)
	box.Dimensions.Content = Rect{X: cur.left, Y: cur.y, Width: avail, Height: lines * h}
	cur.y += lines * h
	cur.x = cur.left
	cur.lineHeight = 0
}

// unionBounds is the bounding border box of the given boxes, or fallback for
// an empty set.
func unionBounds(boxes []*LayoutBox, fallback Rect) Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, c := range boxes {
		if c.isOutOfFlow() {
			continue
		}
		bb := c.Dimensions.BorderBox()
		if bb.Width == 0 && bb.Height == 0 {
			continue
		}
		if first {
			minX, minY = bb.X, bb.Y
			maxX, maxY = bb.X+bb.Width, bb.Y+bb.Height
			first = false
			continue
		}
		minX = math.Min(minX, bb.X)
		minY = math.Min(minY, bb.Y)
		maxX = math.Max(maxX, bb.X+bb.Width)
		maxY = math.Max(maxY, bb.Y+bb.Height)
	}
	if first {
		return fallback
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// -- table rows --

// layoutTableRow divides the row width into equal columns, one per cell, and
// stretches every cell to the tallest.
func (b *LayoutBox) layoutTableRow(e *Engine) {
	var cells []*LayoutBox
	for _, c := range b.Children {
		if c.isOutOfFlow() {
			c.ContainingBlock = b
			continue
		}
		cells = append(cells, c)
	}
	if len(cells) == 0 {
		return
	}
	colWidth := b.Dimensions.Content.Width / float64(len(cells))
	rowHeight := 0.0
	for i, c := range cells {
		c.ContainingBlock = b
		c.calculatePaddingAndBorders(colWidth, e)
		inner := colWidth - c.Dimensions.Padding.Left - c.Dimensions.Padding.Right -
			c.Dimensions.Border.Left - c.Dimensions.Border.Right
		c.Dimensions.Content.Width = math.Max(0, inner)
		c.Dimensions.Content.X = b.Dimensions.Content.X + float64(i)*colWidth +
			c.Dimensions.Border.Left + c.Dimensions.Padding.Left
		c.Dimensions.Content.Y = b.Dimensions.Content.Y +
			c.Dimensions.Border.Top + c.Dimensions.Padding.Top
		c.layoutContent(e)
		c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, contentExtent(c))
		c.calculateBlockHeight(e)
		if h := c.Dimensions.BorderBox().Height; h > rowHeight {
			rowHeight = h
		}
	}
	for _, c := range cells {
		pad := c.Dimensions.Padding.Top + c.Dimensions.Padding.Bottom +
			c.Dimensions.Border.Top + c.Dimensions.Border.Bottom
		c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, rowHeight-pad)
	}
	b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, rowHeight)
}
