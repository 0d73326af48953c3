// Package layout computes box geometry for a styled tree: block flow with
// margin collapsing, inline line boxes, flexbox, a simple grid model, table
// rows, and absolute/fixed positioning. Output is a tree of LayoutBox whose
// border boxes are the bounds the spatial generator consumes.
package layout

import (
	"math"
	"strings"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
	"github.com/browsyhq/browsy-core/internal/browser/style"
)

func parserProp(s string) parser.Property { return parser.Property(s) }

// Rect is an axis-aligned box in document-origin pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Edges holds per-side thicknesses.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Dimensions is the CSS box model of one layout box. Content is positioned
// absolutely; padding, border and margin expand outward from it.
type Dimensions struct {
	Content Rect
	Padding Edges
	Border  Edges
	Margin  Edges
}

func (d Dimensions) PaddingBox() Rect {
	return expand(d.Content, d.Padding)
}

func (d Dimensions) BorderBox() Rect {
	return expand(d.PaddingBox(), d.Border)
}

func (d Dimensions) MarginBox() Rect {
	return expand(d.BorderBox(), d.Margin)
}

func expand(r Rect, e Edges) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

// BoxType drives the layout dispatch.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	InlineBlockBox
	AnonymousBlockBox
	FlexContainer
	GridContainer
	TableBox
	TableRowBox
	TableCellBox
)

// LayoutBox is one node of the layout tree.
type LayoutBox struct {
	BoxType         BoxType
	Dimensions      Dimensions
	StyledNode      *style.StyledNode
	Children        []*LayoutBox
	ContainingBlock *LayoutBox
	parent          *LayoutBox
}

// Engine lays out styled trees for one viewport.
type Engine struct {
	vpW, vpH float64
}

func NewEngine(viewportWidth, viewportHeight float64) *Engine {
	return &Engine{vpW: viewportWidth, vpH: viewportHeight}
}

func (e *Engine) Viewport() (w, h float64) { return e.vpW, e.vpH }

// BuildAndLayoutTree builds the box tree and runs layout against the
// viewport. display:none subtrees yield no boxes.
func (e *Engine) BuildAndLayoutTree(root *style.StyledNode) *LayoutBox {
	box := e.BuildLayoutTree(root)
	if box == nil {
		return nil
	}
	box.Dimensions.Content.Width = e.vpW
	box.layoutContent(e)
	box.Dimensions.Content.Height = math.Max(box.Dimensions.Content.Height, contentExtent(box))
	box.layoutPositionedChildren(e)
	return box
}

// BuildLayoutTree translates a styled node into a box, recursively. Inline
// runs inside block containers are wrapped in anonymous blocks so every
// container holds a single formatting context.
func (e *Engine) BuildLayoutTree(sn *style.StyledNode) *LayoutBox {
	if sn == nil || sn.Node == nil {
		return nil
	}
	if sn.Node.Type == dom.TextNode {
		if strings.TrimSpace(sn.Node.Text) == "" {
			return nil
		}
		return &LayoutBox{BoxType: InlineBox, StyledNode: sn}
	}
	if sn.Node.Type != dom.ElementNode && sn.Node.Type != dom.DocumentNode {
		return nil
	}

	display := style.DisplayBlock
	if sn.Node.Type == dom.ElementNode {
		display = sn.Display()
	}
	if display == style.DisplayNone {
		return nil
	}

	box := &LayoutBox{StyledNode: sn, BoxType: boxTypeFor(display)}
	for _, child := range sn.Children {
		cb := e.BuildLayoutTree(child)
		if cb == nil {
			continue
		}
		cb.parent = box
		box.appendChild(cb)
	}
	return box
}

func boxTypeFor(d style.DisplayType) BoxType {
	switch d {
	case style.DisplayInline:
		return InlineBox
	case style.DisplayInlineBlock:
		return InlineBlockBox
	case style.DisplayFlex, style.DisplayInlineFlex:
		return FlexContainer
	case style.DisplayGrid:
		return GridContainer
	case style.DisplayTable:
		return TableBox
	case style.DisplayTableRow:
		return TableRowBox
	case style.DisplayTableCell:
		return TableCellBox
	case style.DisplayTableRowGroup:
		return BlockBox
	default:
		return BlockBox
	}
}

// appendChild places a child, inserting anonymous blocks so block containers
// never mix inline and block children directly.
func (b *LayoutBox) appendChild(child *LayoutBox) {
	switch b.BoxType {
	case FlexContainer, GridContainer, TableBox, TableRowBox:
		// Items are items; no anonymous wrapping.
		b.Children = append(b.Children, child)
		return
	}
	inline := child.BoxType == InlineBox || child.BoxType == InlineBlockBox
	if !inline {
		b.Children = append(b.Children, child)
		return
	}
	if n := len(b.Children); n > 0 && b.Children[n-1].BoxType == AnonymousBlockBox {
		anon := b.Children[n-1]
		child.parent = anon
		anon.Children = append(anon.Children, child)
		return
	}
	if b.hasBlockChildren() || b.BoxType == BlockBox || b.BoxType == TableCellBox || b.BoxType == AnonymousBlockBox {
		anon := &LayoutBox{BoxType: AnonymousBlockBox, parent: b}
		child.parent = anon
		anon.Children = append(anon.Children, child)
		b.Children = append(b.Children, anon)
		return
	}
	b.Children = append(b.Children, child)
}

func (b *LayoutBox) hasBlockChildren() bool {
	for _, c := range b.Children {
		if c.BoxType != InlineBox && c.BoxType != InlineBlockBox {
			return true
		}
	}
	return false
}

// Layout computes this box's children given Content.X/Y/Width already set.
func (b *LayoutBox) layoutContent(e *Engine) {
	switch b.BoxType {
	case FlexContainer:
		b.layoutFlex(e)
	case GridContainer:
		b.layoutGrid(e)
	case TableRowBox:
		b.layoutTableRow(e)
	default:
		b.layoutBlockFlow(e)
	}
}

// contentExtent is the lowest margin-box bottom of in-flow descendants,
// relative to the box's content origin.
func contentExtent(b *LayoutBox) float64 {
	max := 0.0
	for _, c := range b.Children {
		if c.StyledNode != nil {
			pos := c.StyledNode.Position()
			if pos == style.PositionAbsolute || pos == style.PositionFixed {
				continue
			}
		}
		mb := c.Dimensions.MarginBox()
		if bottom := mb.Y + mb.Height - b.Dimensions.Content.Y; bottom > max {
			max = bottom
		}
	}
	return max
}

// -- box model resolution --

func (b *LayoutBox) fontSize() float64 {
	if b.StyledNode == nil {
		if b.parent != nil {
			return b.parent.fontSize()
		}
		return style.BaseFontSize
	}
	return style.GetFontSize(b.StyledNode)
}

func (b *LayoutBox) resolve(value string, reference float64, e *Engine) float64 {
	return style.ParseLengthWithUnits(value, b.fontSize(), style.BaseFontSize, reference, e.vpW, e.vpH)
}

// calculatePaddingAndBorders resolves the four paddings and border widths
// against the containing block width, per CSS.
func (b *LayoutBox) calculatePaddingAndBorders(referenceWidth float64, e *Engine) {
	sn := b.StyledNode
	if sn == nil {
		return
	}
	pad := func(prop string) float64 {
		return math.Max(0, b.resolve(string(sn.Lookup(parserProp(prop), "0")), referenceWidth, e))
	}
	b.Dimensions.Padding = Edges{
		Top:    pad("padding-top"),
		Right:  pad("padding-right"),
		Bottom: pad("padding-bottom"),
		Left:   pad("padding-left"),
	}

	border := func(widthProp, styleProp string) float64 {
		bs := string(sn.Lookup(parserProp(styleProp), "none"))
		if bs == "none" || bs == "hidden" {
			return 0
		}
		switch raw := string(sn.Lookup(parserProp(widthProp), "medium")); raw {
		case "thin":
			return 1
		case "medium":
			return 3
		case "thick":
			return 5
		default:
			return math.Max(0, b.resolve(raw, 0, e))
		}
	}
	b.Dimensions.Border = Edges{
		Top:    border("border-top-width", "border-top-style"),
		Right:  border("border-right-width", "border-right-style"),
		Bottom: border("border-bottom-width", "border-bottom-style"),
		Left:   border("border-left-width", "border-left-style"),
	}
}

// calculateBlockWidthAndEdges solves the horizontal constraint equation for
// in-flow block boxes: margins, borders, padding and width must fill the
// containing block. Auto margins center; over-constraint adjusts the right
// margin.
func (b *LayoutBox) calculateBlockWidthAndEdges(e *Engine) {
	sn := b.StyledNode
	if sn == nil || b.ContainingBlock == nil {
		if b.ContainingBlock != nil {
			b.Dimensions.Content.Width = b.ContainingBlock.Dimensions.Content.Width
		}
		return
	}
	cbWidth := b.ContainingBlock.Dimensions.Content.Width
	b.calculatePaddingAndBorders(cbWidth, e)

	auto := math.NaN()
	parse := func(prop, def string) float64 {
		raw := string(sn.Lookup(parserProp(prop), def))
		if raw == "auto" {
			return auto
		}
		return b.resolve(raw, cbWidth, e)
	}

	width := parse("width", "auto")
	marginLeft := parse("margin-left", "0")
	marginRight := parse("margin-right", "0")

	static := b.Dimensions.Padding.Left + b.Dimensions.Padding.Right +
		b.Dimensions.Border.Left + b.Dimensions.Border.Right

	if sn.BoxSizing() == style.BorderBox && !math.IsNaN(width) {
		width = math.Max(0, width-static)
	}

	shrinkToFit := b.BoxType == InlineBlockBox
	if shrinkToFit {
		if math.IsNaN(width) {
			width = b.shrinkToFitWidth(e, cbWidth-static)
		}
		if math.IsNaN(marginLeft) {
			marginLeft = 0
		}
		if math.IsNaN(marginRight) {
			marginRight = 0
		}
	} else {
		switch {
		case math.IsNaN(width):
			if math.IsNaN(marginLeft) {
				marginLeft = 0
			}
			if math.IsNaN(marginRight) {
				marginRight = 0
			}
			width = math.Max(0, cbWidth-static-marginLeft-marginRight)
		case math.IsNaN(marginLeft) && math.IsNaN(marginRight):
			remaining := cbWidth - static - width
			marginLeft = remaining / 2
			marginRight = remaining / 2
		case math.IsNaN(marginLeft):
			marginLeft = cbWidth - static - width - marginRight
		case math.IsNaN(marginRight):
			marginRight = cbWidth - static - width - marginLeft
		default:
			marginRight = cbWidth - static - width - marginLeft
		}
	}

	width = b.clampWidth(width, cbWidth, e)

	b.Dimensions.Content.Width = width
	b.Dimensions.Margin.Left = marginLeft
	b.Dimensions.Margin.Right = marginRight
	b.Dimensions.Margin.Top = b.resolveMargin("margin-top", cbWidth, e)
	b.Dimensions.Margin.Bottom = b.resolveMargin("margin-bottom", cbWidth, e)
}

func (b *LayoutBox) resolveMargin(prop string, reference float64, e *Engine) float64 {
	raw := string(b.StyledNode.Lookup(parserProp(prop), "0"))
	if raw == "auto" {
		return 0
	}
	return b.resolve(raw, reference, e)
}

func (b *LayoutBox) clampWidth(width, reference float64, e *Engine) float64 {
	sn := b.StyledNode
	if sn == nil {
		return width
	}
	if raw := string(sn.Lookup("max-width", "")); raw != "" && raw != "none" {
		if max := b.resolve(raw, reference, e); max > 0 {
			width = math.Min(width, max)
		}
	}
	if raw := string(sn.Lookup("min-width", "")); raw != "" {
		width = math.Max(width, b.resolve(raw, reference, e))
	}
	return math.Max(0, width)
}

func (b *LayoutBox) clampHeight(height, reference float64, e *Engine) float64 {
	sn := b.StyledNode
	if sn == nil {
		return height
	}
	if raw := string(sn.Lookup("max-height", "")); raw != "" && raw != "none" {
		if max := b.resolve(raw, reference, e); max > 0 {
			height = math.Min(height, max)
		}
	}
	if raw := string(sn.Lookup("min-height", "")); raw != "" {
		height = math.Max(height, b.resolve(raw, reference, e))
	}
	return math.Max(0, height)
}

// shrinkToFitWidth approximates preferred width from the widest text run.
func (b *LayoutBox) shrinkToFitWidth(e *Engine, available float64) float64 {
	max := 0.0
	var walk func(*LayoutBox)
	walk = func(box *LayoutBox) {
		if box.StyledNode != nil && box.StyledNode.Node.Type == dom.TextNode {
			w, _ := style.MeasureText(box.StyledNode)
			if w > max {
				max = w
			}
			return
		}
		run := 0.0
		for _, c := range box.Children {
			if c.StyledNode != nil && c.StyledNode.Node.Type == dom.TextNode {
				w, _ := style.MeasureText(c.StyledNode)
				run += w
			} else {
				walk(c)
			}
		}
		if run > max {
			max = run
		}
	}
	walk(b)
	if b.StyledNode != nil {
		if w := intrinsicControlWidth(b.StyledNode); w > 0 && w > max {
			max = w
		}
	}
	return math.Min(max, math.Max(0, available))
}

// intrinsicControlWidth estimates button-like widths from their label.
func intrinsicControlWidth(sn *style.StyledNode) float64 {
	tag := sn.Node.Tag
	if tag != "button" && !(tag == "input" && (sn.Node.Attr("type") == "submit" || sn.Node.Attr("type") == "button")) {
		return 0
	}
	label := sn.Node.CollectText()
	if label == "" {
		label = sn.Node.Attr("value")
	}
	fs := style.GetFontSize(sn)
	// Label plus default control padding.
	return float64(len(label))*fs*0.6 + 16
}

// calculateBlockHeight resolves an explicit height or falls back to the
// content extent already accumulated in Content.Height.
func (b *LayoutBox) calculateBlockHeight(e *Engine) {
	sn := b.StyledNode
	if sn == nil {
		return
	}
	raw := string(sn.Lookup("height", "auto"))
	if raw == "auto" {
		b.Dimensions.Content.Height = b.clampHeight(b.Dimensions.Content.Height, 0, e)
		return
	}
	refHeight := 0.0
	refIsDefinite := false
	if cb := b.ContainingBlock; cb != nil && cb.StyledNode != nil {
		if string(cb.StyledNode.Lookup("height", "auto")) != "auto" || cb.ContainingBlock == nil {
			refHeight = cb.Dimensions.Content.Height
			refIsDefinite = true
		}
	} else if cb != nil {
		refHeight = cb.Dimensions.Content.Height
		refIsDefinite = true
	}
	if strings.Contains(raw, "%") && !refIsDefinite {
		return
	}
	h := b.resolve(raw, refHeight, e)
	if sn.BoxSizing() == style.BorderBox {
		h -= b.Dimensions.Padding.Top + b.Dimensions.Padding.Bottom +
			b.Dimensions.Border.Top + b.Dimensions.Border.Bottom
	}
	b.Dimensions.Content.Height = b.clampHeight(math.Max(0, h), refHeight, e)
}
