package style

import (
	"strings"

	"github.com/browsyhq/browsy-core/internal/browser/parser"
)

type DisplayType int

const (
	DisplayBlock DisplayType = iota
	DisplayInline
	DisplayInlineBlock
	DisplayFlex
	DisplayInlineFlex
	DisplayGrid
	DisplayTable
	DisplayTableRowGroup
	DisplayTableRow
	DisplayTableCell
	DisplayNone
)

type PositionType int

const (
	PositionStatic PositionType = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

type BoxSizingType int

const (
	ContentBox BoxSizingType = iota
	BorderBox
)

// Display returns the computed display, falling back to the tag default.
func (sn *StyledNode) Display() DisplayType {
	raw := string(sn.Lookup("display", ""))
	if raw == "" {
		return defaultDisplay(sn.Node.Tag)
	}
	switch raw {
	case "none":
		return DisplayNone
	case "inline":
		return DisplayInline
	case "inline-block":
		return DisplayInlineBlock
	case "flex":
		return DisplayFlex
	case "inline-flex":
		return DisplayInlineFlex
	case "grid", "inline-grid":
		return DisplayGrid
	case "table":
		return DisplayTable
	case "table-row-group", "thead", "tbody", "tfoot":
		return DisplayTableRowGroup
	case "table-row":
		return DisplayTableRow
	case "table-cell":
		return DisplayTableCell
	case "list-item":
		return DisplayBlock
	case "block":
		return DisplayBlock
	default:
		return defaultDisplay(sn.Node.Tag)
	}
}

func (sn *StyledNode) Position() PositionType {
	switch string(sn.Lookup("position", "static")) {
	case "relative", "sticky":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	default:
		return PositionStatic
	}
}

func (sn *StyledNode) BoxSizing() BoxSizingType {
	if sn.Lookup("box-sizing", "content-box") == "border-box" {
		return BorderBox
	}
	return ContentBox
}

// IsVisible reports CSS visibility; display:none is a separate concern
// handled by the layout tree builder.
func (sn *StyledNode) IsVisible() bool {
	return sn.Lookup("visibility", "visible") != "hidden"
}

// -- flex accessors --

type FlexDirection int

const (
	FlexRow FlexDirection = iota
	FlexRowReverse
	FlexColumn
	FlexColumnReverse
)

func (sn *StyledNode) FlexDirectionValue() FlexDirection {
	switch string(sn.Lookup("flex-direction", "row")) {
	case "row-reverse":
		return FlexRowReverse
	case "column":
		return FlexColumn
	case "column-reverse":
		return FlexColumnReverse
	default:
		return FlexRow
	}
}

func (sn *StyledNode) FlexWrap() bool {
	v := string(sn.Lookup("flex-wrap", "nowrap"))
	return v == "wrap" || v == "wrap-reverse"
}

func (sn *StyledNode) JustifyContent() string {
	return string(sn.Lookup("justify-content", "flex-start"))
}

func (sn *StyledNode) AlignItems() string {
	return string(sn.Lookup("align-items", "stretch"))
}

func (sn *StyledNode) AlignSelf() string {
	return string(sn.Lookup("align-self", "auto"))
}

// -- shorthand expansion --

// expandShorthand maps one declared property to its long-hand components.
// Non-shorthands pass through unchanged.
func expandShorthand(prop parser.Property, value string) map[parser.Property]string {
	switch prop {
	case "margin", "padding":
		return expandBox(string(prop)+"-", "", value)
	case "border-width":
		return expandBox("border-", "-width", value)
	case "border":
		return expandBorder(value)
	case "flex":
		return expandFlex(value)
	case "gap":
		return expandGap(value)
	case "grid-column", "grid-row":
		return expandGridPlacement(prop, value)
	default:
		return map[parser.Property]string{prop: value}
	}
}

// expandBox applies the CSS 1-to-4 value rule.
func expandBox(prefix, suffix, value string) map[parser.Property]string {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return nil
	}
	return map[parser.Property]string{
		parser.Property(prefix + "top" + suffix):    top,
		parser.Property(prefix + "right" + suffix):  right,
		parser.Property(prefix + "bottom" + suffix): bottom,
		parser.Property(prefix + "left" + suffix):   left,
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// expandBorder pulls the width and style tokens out of a border shorthand;
// color is a non-goal and is discarded.
func expandBorder(value string) map[parser.Property]string {
	width := "medium"
	style := "none"
	for _, tok := range strings.Fields(value) {
		lower := strings.ToLower(tok)
		switch {
		case borderStyles[lower]:
			style = lower
		case lower == "thin" || lower == "medium" || lower == "thick":
			width = lower
		default:
			if _, err := parseFloat(strings.TrimRight(lower, "abcdefghijklmnopqrstuvwxyz%")); err == nil {
				width = lower
			}
		}
	}
	out := make(map[parser.Property]string, 8)
	for _, side := range []string{"top", "right", "bottom", "left"} {
		out[parser.Property("border-"+side+"-width")] = width
		out[parser.Property("border-"+side+"-style")] = style
	}
	return out
}

func expandFlex(value string) map[parser.Property]string {
	out := map[parser.Property]string{
		"flex-grow":   "0",
		"flex-shrink": "1",
		"flex-basis":  "auto",
	}
	switch strings.TrimSpace(value) {
	case "none":
		out["flex-shrink"] = "0"
		return out
	case "auto":
		out["flex-grow"] = "1"
		return out
	}
	parts := strings.Fields(value)
	if len(parts) >= 1 {
		out["flex-grow"] = parts[0]
		out["flex-shrink"] = "1"
		out["flex-basis"] = "0"
	}
	if len(parts) >= 2 {
		if isNumeric(parts[1]) {
			out["flex-shrink"] = parts[1]
		} else {
			out["flex-basis"] = parts[1]
		}
	}
	if len(parts) >= 3 {
		out["flex-basis"] = parts[2]
	}
	return out
}

func expandGap(value string) map[parser.Property]string {
	parts := strings.Fields(value)
	out := map[parser.Property]string{}
	switch len(parts) {
	case 1:
		out["gap"] = parts[0]
		out["row-gap"] = parts[0]
		out["column-gap"] = parts[0]
	case 2:
		out["gap"] = parts[0]
		out["row-gap"] = parts[0]
		out["column-gap"] = parts[1]
	}
	return out
}

// expandGridPlacement splits "1 / 3" into start/end and keeps "span n"
// forms on the start side for the track resolver.
func expandGridPlacement(prop parser.Property, value string) map[parser.Property]string {
	start, end, found := strings.Cut(value, "/")
	out := map[parser.Property]string{
		prop + "-start": strings.TrimSpace(start),
	}
	if found {
		out[prop+"-end"] = strings.TrimSpace(end)
	}
	return out
}

func isNumeric(s string) bool {
	_, err := parseFloat(s)
	return err == nil
}

// defaultDisplay is the UA display for tags with no cascaded display.
func defaultDisplay(tag string) DisplayType {
	switch tag {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "dl", "dt", "dd", "form", "fieldset", "header",
		"footer", "nav", "main", "aside", "section", "article", "figure",
		"figcaption", "blockquote", "pre", "address", "hr", "details", "summary":
		return DisplayBlock
	case "table":
		return DisplayTable
	case "thead", "tbody", "tfoot":
		return DisplayTableRowGroup
	case "tr":
		return DisplayTableRow
	case "td", "th":
		return DisplayTableCell
	case "input", "select", "textarea", "button", "img", "video", "canvas",
		"iframe", "svg", "object", "embed", "progress", "meter":
		return DisplayInlineBlock
	case "script", "style", "meta", "link", "title", "head", "base", "template", "noscript":
		return DisplayNone
	default:
		return DisplayInline
	}
}

// DefaultUserAgentCSS carries the browser-default metrics the layout stage
// depends on: body margin, heading scale, and intrinsic control sizes.
const DefaultUserAgentCSS = `
[hidden] { display: none; }
body { margin: 8px; }
h1 { font-size: 32px; margin-top: 21px; margin-bottom: 21px; }
h2 { font-size: 24px; margin-top: 19px; margin-bottom: 19px; }
h3 { font-size: 18px; margin-top: 18px; margin-bottom: 18px; }
h4 { font-size: 16px; margin-top: 21px; margin-bottom: 21px; }
h5 { font-size: 13px; margin-top: 22px; margin-bottom: 22px; }
h6 { font-size: 10px; margin-top: 24px; margin-bottom: 24px; }
p { margin-top: 16px; margin-bottom: 16px; }
ul, ol { margin-top: 16px; margin-bottom: 16px; padding-left: 40px; }
input { width: 173px; height: 21px; }
input[type=checkbox], input[type=radio] { width: 13px; height: 13px; }
input[type=hidden] { display: none; }
input[type=submit], input[type=button] { width: auto; height: 21px; }
select { width: 173px; height: 21px; }
textarea { width: 300px; height: 66px; }
button { height: 21px; }
table { width: 100%; }
hr { margin-top: 8px; margin-bottom: 8px; height: 2px; }
`
