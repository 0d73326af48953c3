package layout

import (
	"math"

	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// flexItem carries one child's resolved flex inputs and working sizes. Main
// and cross sizes are border-box sizes; outer adds the margins.
type flexItem struct {
	box          *LayoutBox
	grow, shrink float64
	base         float64 // border-box main size before flexing
	main         float64 // border-box main size after flexing
	cross        float64 // border-box cross size
	marginLead   float64 // main-axis leading margin
	marginTrail  float64
	crossLead    float64
	crossTrail   float64
}

func (it *flexItem) outerMain() float64 { return it.marginLead + it.main + it.marginTrail }

// layoutFlex implements a single-pass flexbox: base sizes, line breaking,
// grow/shrink resolution, then main and cross placement.
func (b *LayoutBox) layoutFlex(e *Engine) {
	sn := b.StyledNode
	dir := sn.FlexDirectionValue()
	row := dir == style.FlexRow || dir == style.FlexRowReverse
	reverse := dir == style.FlexRowReverse || dir == style.FlexColumnReverse

	mainSize := b.Dimensions.Content.Width
	crossAvail := b.Dimensions.Content.Height
	if !row {
		mainSize = b.Dimensions.Content.Height
		crossAvail = b.Dimensions.Content.Width
		if mainSize <= 0 {
			// Auto-height column container: items keep their base sizes.
			mainSize = math.Inf(1)
		}
	}

	colGap := b.resolve(string(sn.Lookup("column-gap", "0")), b.Dimensions.Content.Width, e)
	rowGap := b.resolve(string(sn.Lookup("row-gap", "0")), b.Dimensions.Content.Height, e)
	mainGap, crossGap := colGap, rowGap
	if !row {
		mainGap, crossGap = rowGap, colGap
	}

	var items []*flexItem
	for _, c := range b.Children {
		if c.isOutOfFlow() {
			c.ContainingBlock = b
			continue
		}
		c.ContainingBlock = b
		items = append(items, b.prepareFlexItem(c, row, e))
	}
	if len(items) == 0 {
		return
	}

	lines := [][]*flexItem{nil}
	if sn.FlexWrap() && !math.IsInf(mainSize, 1) {
		used := 0.0
		for _, it := range items {
			li := len(lines) - 1
			need := it.outerMain()
			if len(lines[li]) > 0 {
				need += mainGap
			}
			if len(lines[li]) > 0 && used+need > mainSize {
				lines = append(lines, []*flexItem{it})
				used = it.outerMain()
				continue
			}
			lines[li] = append(lines[li], it)
			used += need
		}
	} else {
		lines[0] = items
	}

	crossCursor := 0.0
	for li, line := range lines {
		if reverse {
			for i, j := 0, len(line)-1; i < j; i, j = i+1, j-1 {
				line[i], line[j] = line[j], line[i]
			}
		}
		b.resolveFlexLine(line, mainSize, mainGap)
		lineCross := b.layoutFlexLine(line, row, crossCursor, e)
		if li == len(lines)-1 && len(lines) == 1 && crossAvail > lineCross && row {
			// Single row line stretches into a definite container height.
			lineCross = b.stretchLine(line, lineCross, crossAvail, row, crossCursor, e)
		}
		b.placeFlexLine(line, row, mainSize, mainGap, crossCursor, lineCross, e)
		crossCursor += lineCross + crossGap
	}
	if crossCursor > 0 {
		crossCursor -= crossGap
	}
	if row {
		b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, crossCursor)
	} else if math.IsInf(mainSize, 1) {
		total := 0.0
		for _, it := range items {
			total += it.outerMain() + mainGap
		}
		if total > 0 {
			total -= mainGap
		}
		b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, total)
	}
}

// prepareFlexItem resolves grow, shrink, basis and margins for one item.
func (b *LayoutBox) prepareFlexItem(c *LayoutBox, row bool, e *Engine) *flexItem {
	it := &flexItem{box: c, shrink: 1}
	sn := c.StyledNode
	cbWidth := b.Dimensions.Content.Width
	c.calculatePaddingAndBorders(cbWidth, e)

	if sn != nil {
		if n, err := parseNumber(string(sn.Lookup("flex-grow", "0"))); err == nil {
			it.grow = n
		}
		if n, err := parseNumber(string(sn.Lookup("flex-shrink", "1"))); err == nil {
			it.shrink = n
		}
		c.Dimensions.Margin = Edges{
			Top:    c.resolveMargin("margin-top", cbWidth, e),
			Right:  c.resolveMargin("margin-right", cbWidth, e),
			Bottom: c.resolveMargin("margin-bottom", cbWidth, e),
			Left:   c.resolveMargin("margin-left", cbWidth, e),
		}
	}
	if row {
		it.marginLead, it.marginTrail = c.Dimensions.Margin.Left, c.Dimensions.Margin.Right
		it.crossLead, it.crossTrail = c.Dimensions.Margin.Top, c.Dimensions.Margin.Bottom
	} else {
		it.marginLead, it.marginTrail = c.Dimensions.Margin.Top, c.Dimensions.Margin.Bottom
		it.crossLead, it.crossTrail = c.Dimensions.Margin.Left, c.Dimensions.Margin.Right
	}

	it.base = b.flexBaseSize(c, row, e)
	it.main = it.base
	return it
}

// flexBaseSize resolves flex-basis, falling back to the main-axis size
// property, then to a content estimate.
func (b *LayoutBox) flexBaseSize(c *LayoutBox, row bool, e *Engine) float64 {
	sn := c.StyledNode
	edges := c.Dimensions.Padding.Left + c.Dimensions.Padding.Right +
		c.Dimensions.Border.Left + c.Dimensions.Border.Right
	ref := b.Dimensions.Content.Width
	sizeProp := "width"
	if !row {
		edges = c.Dimensions.Padding.Top + c.Dimensions.Padding.Bottom +
			c.Dimensions.Border.Top + c.Dimensions.Border.Bottom
		ref = b.Dimensions.Content.Height
		sizeProp = "height"
	}
	resolveSize := func(raw string) (float64, bool) {
		if raw == "" || raw == "auto" || raw == "content" {
			return 0, false
		}
		px := c.resolve(raw, ref, e)
		if sn.BoxSizing() != style.BorderBox {
			px += edges
		}
		return math.Max(px, edges), true
	}
	if sn != nil {
		if px, ok := resolveSize(string(sn.Lookup("flex-basis", "auto"))); ok {
			return px
		}
		if px, ok := resolveSize(string(sn.Lookup(parserProp(sizeProp), "auto"))); ok {
			return px
		}
	}
	if row {
		return c.shrinkToFitWidth(e, b.Dimensions.Content.Width) + edges
	}
	// Column base height: lay out at full width and measure.
	c.Dimensions.Content.Width = math.Max(0, b.Dimensions.Content.Width-edges)
	c.layoutContent(e)
	c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, contentExtent(c))
	c.calculateBlockHeight(e)
	return c.Dimensions.Content.Height + edges
}

// resolveFlexLine distributes free space by flex-grow, or recovers overflow
// by flex-shrink weighted on base size.
func (b *LayoutBox) resolveFlexLine(line []*flexItem, mainSize, gap float64) {
	if math.IsInf(mainSize, 1) {
		return
	}
	used := gap * float64(len(line)-1)
	for _, it := range line {
		used += it.outerMain()
	}
	free := mainSize - used
	switch {
	case free > 0:
		totalGrow := 0.0
		for _, it := range line {
			totalGrow += it.grow
		}
		if totalGrow <= 0 {
			return
		}
		for _, it := range line {
			it.main += free * it.grow / totalGrow
		}
	case free < 0:
		totalWeight := 0.0
		for _, it := range line {
			totalWeight += it.shrink * it.base
		}
		if totalWeight <= 0 {
			return
		}
		for _, it := range line {
			it.main = math.Max(0, it.main+free*it.shrink*it.base/totalWeight)
		}
	}
}

// layoutFlexLine sizes each item's content given its final main size and
// returns the line's cross extent.
func (b *LayoutBox) layoutFlexLine(line []*flexItem, row bool, crossCursor float64, e *Engine) float64 {
	lineCross := 0.0
	for _, it := range line {
		c := it.box
		padX := c.Dimensions.Padding.Left + c.Dimensions.Padding.Right +
			c.Dimensions.Border.Left + c.Dimensions.Border.Right
		padY := c.Dimensions.Padding.Top + c.Dimensions.Padding.Bottom +
			c.Dimensions.Border.Top + c.Dimensions.Border.Bottom
		if row {
			c.Dimensions.Content.Width = math.Max(0, it.main-padX)
			c.layoutContent(e)
			c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, contentExtent(c))
			c.calculateBlockHeight(e)
			it.cross = c.Dimensions.Content.Height + padY
		} else {
			// Cross axis is horizontal: stretch to the container by default.
			width := b.Dimensions.Content.Width - it.crossLead - it.crossTrail
			if sn := c.StyledNode; sn != nil {
				if raw := string(sn.Lookup("width", "auto")); raw != "auto" && raw != "" {
					width = c.resolve(raw, b.Dimensions.Content.Width, e)
					if sn.BoxSizing() != style.BorderBox {
						width += padX
					}
				}
			}
			c.Dimensions.Content.Width = math.Max(0, width-padX)
			c.layoutContent(e)
			c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, contentExtent(c))
			c.calculateBlockHeight(e)
			total := c.Dimensions.Content.Height + padY
			if total < it.main {
				c.Dimensions.Content.Height = math.Max(0, it.main-padY)
			} else if it.main < total {
				it.main = total
			}
			it.cross = width
		}
		if v := it.crossLead + it.cross + it.crossTrail; v > lineCross {
			lineCross = v
		}
	}
	return lineCross
}

// stretchLine grows align-items:stretch rows into a definite container
// height.
func (b *LayoutBox) stretchLine(line []*flexItem, lineCross, crossAvail float64, row bool, crossCursor float64, e *Engine) float64 {
	align := b.StyledNode.AlignItems()
	if align != "stretch" {
		return lineCross
	}
	for _, it := range line {
		if self := itemAlign(it, align); self != "stretch" {
			continue
		}
		if sn := it.box.StyledNode; sn != nil && string(sn.Lookup("height", "auto")) != "auto" {
			continue
		}
		padY := it.box.Dimensions.Padding.Top + it.box.Dimensions.Padding.Bottom +
			it.box.Dimensions.Border.Top + it.box.Dimensions.Border.Bottom
		target := crossAvail - it.crossLead - it.crossTrail
		if target > it.cross {
			it.box.Dimensions.Content.Height = math.Max(0, target-padY)
			it.cross = target
		}
	}
	return crossAvail
}

func itemAlign(it *flexItem, containerAlign string) string {
	if sn := it.box.StyledNode; sn != nil {
		if self := sn.AlignSelf(); self != "auto" && self != "" {
			return self
		}
	}
	return containerAlign
}

// placeFlexLine positions items along the main axis per justify-content and
// along the cross axis per align-items, then shifts each item's subtree into
// place.
func (b *LayoutBox) placeFlexLine(line []*flexItem, row bool, mainSize, gap, crossStart, lineCross float64, e *Engine) {
	used := gap * float64(len(line)-1)
	for _, it := range line {
		used += it.outerMain()
	}
	free := 0.0
	if !math.IsInf(mainSize, 1) {
		free = math.Max(0, mainSize-used)
	}

	offset, between := 0.0, gap
	switch b.StyledNode.JustifyContent() {
	case "center":
		offset = free / 2
	case "flex-end", "end":
		offset = free
	case "space-between":
		if len(line) > 1 {
			between = gap + free/float64(len(line)-1)
		}
	case "space-around":
		share := free / float64(len(line))
		offset = share / 2
		between = gap + share
	case "space-evenly":
		share := free / float64(len(line)+1)
		offset = share
		between = gap + share
	}

	mainCursor := offset
	align := b.StyledNode.AlignItems()
	for _, it := range line {
		c := it.box
		crossOffset := it.crossLead
		switch itemAlign(it, align) {
		case "center":
			crossOffset += (lineCross - it.crossLead - it.cross - it.crossTrail) / 2
		case "flex-end", "end":
			crossOffset += lineCross - it.crossLead - it.cross - it.crossTrail
		}

		var targetX, targetY float64
		if row {
			targetX = b.Dimensions.Content.X + mainCursor + it.marginLead
			targetY = b.Dimensions.Content.Y + crossStart + crossOffset
		} else {
			targetX = b.Dimensions.Content.X + crossStart + crossOffset
			targetY = b.Dimensions.Content.Y + mainCursor + it.marginLead
		}
		bb := c.Dimensions.BorderBox()
		c.offsetSubtree(targetX-bb.X, targetY-bb.Y)

		if c.StyledNode != nil && c.StyledNode.Position() == style.PositionRelative {
			c.applyRelativeOffsets(e)
		}
		mainCursor += it.outerMain() + between
	}
}
