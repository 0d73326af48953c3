package spatial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/browsyhq/browsy-core/api/schemas"
)

// ToCompact renders one line per element, preceded by a short header:
//
//	title: ...
//	url: ...
//	vp: 1280x720
//	els: 42
//	---
//	[1:a "Home" ->https://example.com/ @top-L]
//
// Element line grammar: [!id:tag:type [name] "text" [=val] [v] [*] sizehint
// ->href @pos]. The leading ! marks hidden; type appears for non-text
// inputs; @pos only disambiguates duplicate (tag, text) pairs.
func ToCompact(d *schemas.SpatialDOM) string {
	var b strings.Builder
	fmt.Fprintf(&b, "title: %s\n", d.Title)
	fmt.Fprintf(&b, "url: %s\n", d.URL)
	fmt.Fprintf(&b, "vp: %dx%d\n", int(d.VP[0]), int(d.VP[1]))
	fmt.Fprintf(&b, "els: %d\n", len(d.Els))
	b.WriteString("---\n")

	dups := duplicatePairs(d.Els)
	for _, el := range d.Els {
		b.WriteString(compactLine(el, d.VP, dups, ""))
		b.WriteByte('\n')
	}
	return b.String()
}

// ToCompactDelta renders a delta as one removal line plus one line per
// changed element, each marked with a + after the bracket.
func ToCompactDelta(delta *schemas.DeltaDOM) string {
	var b strings.Builder
	if len(delta.Removed) > 0 {
		ids := make([]string, len(delta.Removed))
		for i, id := range delta.Removed {
			ids[i] = strconv.FormatUint(uint64(id), 10)
		}
		b.WriteString("-[" + strings.Join(ids, ",") + "]\n")
	}
	dups := duplicatePairs(delta.Changed)
	for _, el := range delta.Changed {
		b.WriteString(compactLine(el, delta.VP, dups, "+"))
		b.WriteByte('\n')
	}
	return b.String()
}

type tagText struct{ tag, text string }

// duplicatePairs marks the (tag, text) tuples occurring more than once; only
// those receive position suffixes.
func duplicatePairs(els []schemas.Element) map[tagText]bool {
	counts := make(map[tagText]int, len(els))
	for _, el := range els {
		counts[tagText{el.Tag, el.Text}]++
	}
	out := make(map[tagText]bool)
	for k, n := range counts {
		if n > 1 {
			out[k] = true
		}
	}
	return out
}

func compactLine(el schemas.Element, vp [2]float64, dups map[tagText]bool, marker string) string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(marker)
	if el.Hidden {
		b.WriteByte('!')
	}
	b.WriteString(strconv.FormatUint(uint64(el.ID), 10))
	b.WriteByte(':')
	b.WriteString(el.Tag)
	if el.InputType != "" && el.InputType != "text" {
		b.WriteByte(':')
		b.WriteString(el.InputType)
	}
	if el.Name != "" {
		b.WriteString(" [")
		b.WriteString(el.Name)
		b.WriteByte(']')
	}
	if el.Text != "" {
		b.WriteString(" \"")
		b.WriteString(el.Text)
		b.WriteByte('"')
	} else if el.Ph != "" {
		b.WriteString(" \"")
		b.WriteString(el.Ph)
		b.WriteByte('"')
	}
	if el.Val != "" {
		b.WriteString(" [=")
		b.WriteString(el.Val)
		b.WriteByte(']')
	}
	if el.Checked || el.Selected {
		b.WriteString(" [v]")
	}
	if el.Required {
		b.WriteString(" [*]")
	}
	if isFormControl(el.Tag) {
		if hint := SizeHint(el, vp[0]); hint != "" {
			b.WriteByte(' ')
			b.WriteString(hint)
		}
	}
	if el.Href != "" {
		b.WriteString(" ->")
		b.WriteString(el.Href)
	}
	if dups[tagText{el.Tag, el.Text}] {
		b.WriteByte(' ')
		b.WriteString(PositionSuffix(el, vp[0], vp[1]))
	}
	b.WriteByte(']')
	return b.String()
}

func isFormControl(tag string) bool {
	switch tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}
