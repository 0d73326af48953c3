package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// gridTrack is one resolved column or row track.
type gridTrack struct {
	size float64 // resolved pixels
	fr   float64 // fractional weight, 0 for fixed tracks
	auto bool
}

// layoutGrid implements a simplified grid: template columns with px, %, fr
// and repeat(), row-major auto placement honoring explicit line numbers and
// span counts, and content-sized rows.
func (b *LayoutBox) layoutGrid(e *Engine) {
	sn := b.StyledNode
	width := b.Dimensions.Content.Width
	colGap := b.resolve(string(sn.Lookup("column-gap", "0")), width, e)
	rowGap := b.resolve(string(sn.Lookup("row-gap", "0")), b.Dimensions.Content.Height, e)

	cols := b.resolveGridTracks(string(sn.Lookup("grid-template-columns", "")), width, colGap, e)
	if len(cols) == 0 {
		cols = []gridTrack{{fr: 1}}
	}
	distributeFractions(cols, width, colGap)

	var items []*LayoutBox
	for _, c := range b.Children {
		if c.isOutOfFlow() {
			c.ContainingBlock = b
			continue
		}
		c.ContainingBlock = b
		items = append(items, c)
	}
	if len(items) == 0 {
		return
	}

	type placement struct {
		box            *LayoutBox
		col, row, span int
	}
	placements := make([]placement, 0, len(items))
	nextCol, nextRow := 0, 0
	maxRow := 0
	for _, c := range items {
		col, span := gridColumnPlacement(c.StyledNode, len(cols))
		row := gridRowPlacement(c.StyledNode)
		if row < 0 {
			row = nextRow
		}
		if col < 0 {
			if nextCol+span > len(cols) && nextCol > 0 {
				nextCol = 0
				nextRow++
				row = nextRow
			} else if row == nextRow {
				// keep flowing on the current row
			}
			col = nextCol
			if row == nextRow {
				nextCol = col + span
				if nextCol >= len(cols) {
					nextCol = 0
					nextRow++
				}
			}
		} else {
			nextCol = col + span
			nextRow = row
			if nextCol >= len(cols) {
				nextCol = 0
				nextRow++
			}
		}
		if span > len(cols) {
			span = len(cols)
		}
		if col+span > len(cols) {
			col = len(cols) - span
		}
		placements = append(placements, placement{box: c, col: col, row: row, span: span})
		if row > maxRow {
			maxRow = row
		}
	}

	colStart := make([]float64, len(cols)+1)
	for i, t := range cols {
		colStart[i+1] = colStart[i] + t.size
		if i < len(cols)-1 {
			colStart[i+1] += colGap
		}
	}

	// Size every cell's content at its track width, then derive row heights.
	rowHeights := make([]float64, maxRow+1)
	for _, p := range placements {
		c := p.box
		cellWidth := colStart[p.col+p.span] - colStart[p.col]
		if p.col+p.span <= len(cols)-1 {
			cellWidth -= colGap
		}
		c.calculatePaddingAndBorders(cellWidth, e)
		inner := cellWidth - c.Dimensions.Padding.Left - c.Dimensions.Padding.Right -
			c.Dimensions.Border.Left - c.Dimensions.Border.Right
		c.Dimensions.Content.Width = math.Max(0, inner)
		c.layoutContent(e)
		c.Dimensions.Content.Height = math.Max(c.Dimensions.Content.Height, contentExtent(c))
		c.calculateBlockHeight(e)
		if h := c.Dimensions.BorderBox().Height; h > rowHeights[p.row] {
			rowHeights[p.row] = h
		}
	}

	rowStart := make([]float64, len(rowHeights)+1)
	for i, h := range rowHeights {
		rowStart[i+1] = rowStart[i] + h + rowGap
	}

	for _, p := range placements {
		c := p.box
		targetX := b.Dimensions.Content.X + colStart[p.col] +
			c.Dimensions.Border.Left + c.Dimensions.Padding.Left
		targetY := b.Dimensions.Content.Y + rowStart[p.row] +
			c.Dimensions.Border.Top + c.Dimensions.Padding.Top
		dx := targetX - c.Dimensions.Content.X
		dy := targetY - c.Dimensions.Content.Y
		c.offsetSubtree(dx, dy)
		if c.StyledNode != nil && c.StyledNode.Position() == style.PositionRelative {
			c.applyRelativeOffsets(e)
		}
	}

	total := rowStart[len(rowHeights)]
	if total > 0 {
		total -= rowGap
	}
	b.Dimensions.Content.Height = math.Max(b.Dimensions.Content.Height, total)
}

// resolveGridTracks parses a grid-template value into tracks, expanding
// repeat(n, ...). Auto tracks become 1fr.
func (b *LayoutBox) resolveGridTracks(template string, available, gap float64, e *Engine) []gridTrack {
	template = strings.TrimSpace(template)
	if template == "" || template == "none" {
		return nil
	}
	var tracks []gridTrack
	for _, tok := range splitTrackList(template) {
		lower := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(lower, "repeat(") && strings.HasSuffix(lower, ")"):
			inner := tok[len("repeat(") : len(tok)-1]
			countStr, rest, ok := strings.Cut(inner, ",")
			if !ok {
				continue
			}
			count, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil || count <= 0 || count > 1000 {
				continue
			}
			sub := b.resolveGridTracks(strings.TrimSpace(rest), available, gap, e)
			for i := 0; i < count; i++ {
				tracks = append(tracks, sub...)
			}
		case strings.HasPrefix(lower, "minmax(") && strings.HasSuffix(lower, ")"):
			// Use the max bound; fr maxes behave like plain fr tracks.
			inner := tok[len("minmax(") : len(tok)-1]
			if _, maxPart, ok := strings.Cut(inner, ","); ok {
				sub := b.resolveGridTracks(strings.TrimSpace(maxPart), available, gap, e)
				tracks = append(tracks, sub...)
			}
		case strings.HasSuffix(lower, "fr"):
			if n, err := parseNumber(strings.TrimSuffix(lower, "fr")); err == nil && n > 0 {
				tracks = append(tracks, gridTrack{fr: n})
			}
		case lower == "auto":
			tracks = append(tracks, gridTrack{fr: 1, auto: true})
		default:
			px := b.resolve(tok, available, e)
			tracks = append(tracks, gridTrack{size: math.Max(0, px)})
		}
	}
	return tracks
}

// distributeFractions assigns the space left after fixed tracks and gaps to
// the fr tracks in proportion to their weights.
func distributeFractions(tracks []gridTrack, available, gap float64) {
	fixed := gap * float64(len(tracks)-1)
	totalFr := 0.0
	for _, t := range tracks {
		fixed += t.size
		totalFr += t.fr
	}
	if totalFr <= 0 {
		return
	}
	free := math.Max(0, available-fixed)
	for i := range tracks {
		if tracks[i].fr > 0 {
			tracks[i].size = free * tracks[i].fr / totalFr
		}
	}
}

// splitTrackList splits on top-level whitespace, keeping function arguments
// together.
func splitTrackList(s string) []string {
	var out []string
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// gridColumnPlacement resolves grid-column-start/end into a zero-based
// column and span. Returns col -1 for auto placement.
func gridColumnPlacement(sn *style.StyledNode, ncols int) (col, span int) {
	col, span = -1, 1
	if sn == nil {
		return
	}
	start := strings.TrimSpace(string(sn.Lookup("grid-column-start", "")))
	end := strings.TrimSpace(string(sn.Lookup("grid-column-end", "")))

	if rest, ok := strings.CutPrefix(start, "span"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
			span = n
		}
		return
	}
	if n, err := strconv.Atoi(start); err == nil && n > 0 {
		col = n - 1
		if rest, ok := strings.CutPrefix(end, "span"); ok {
			if s, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && s > 0 {
				span = s
			}
		} else if m, err := strconv.Atoi(end); err == nil && m > n {
			span = m - n
		}
	}
	return
}

// gridRowPlacement resolves an explicit grid-row-start, or -1 for auto.
func gridRowPlacement(sn *style.StyledNode) int {
	if sn == nil {
		return -1
	}
	start := strings.TrimSpace(string(sn.Lookup("grid-row-start", "")))
	if n, err := strconv.Atoi(start); err == nil && n > 0 {
		return n - 1
	}
	return -1
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
