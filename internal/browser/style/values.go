package style

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// BaseFontSize is the root font size in pixels when nothing overrides it.
const BaseFontSize = 16.0

// DefaultLineHeight is the unitless fallback line-height multiplier.
const DefaultLineHeight = 1.2

// charWidthRatio approximates average glyph width as a fraction of the font
// size. Good enough for spatial reasoning without font metrics.
const charWidthRatio = 0.6

// DimKind tags a Dimension value.
type DimKind int

const (
	DimAuto DimKind = iota
	DimPx
	DimPercent
	DimCalc
)

// Dimension is a resolved-as-far-as-possible CSS length: absolute pixels,
// a percentage kept for the layout stage, a calc() result carrying both, or
// auto.
type Dimension struct {
	Kind DimKind
	Px   float64
	Pct  float64
}

// Resolve collapses the dimension against a reference length. The second
// return is false for auto.
func (d Dimension) Resolve(reference float64) (float64, bool) {
	switch d.Kind {
	case DimPx:
		return d.Px, true
	case DimPercent:
		return d.Pct / 100.0 * reference, true
	case DimCalc:
		return d.Px + d.Pct/100.0*reference, true
	default:
		return 0, false
	}
}

// ParseDimension parses a length value into the tagged form. em resolves
// against fontSize, rem against rootFontSize; percentages survive for the
// layout stage; malformed input degrades to auto.
func ParseDimension(value string, fontSize, rootFontSize float64) Dimension {
	v := strings.TrimSpace(value)
	if v == "" || v == "auto" || v == "none" || v == "initial" || v == "inherit" {
		return Dimension{Kind: DimAuto}
	}
	if strings.HasPrefix(v, "calc(") && strings.HasSuffix(v, ")") {
		px, pct, ok := evalCalc(v[len("calc("):len(v)-1], fontSize, rootFontSize)
		if !ok {
			return Dimension{Kind: DimAuto}
		}
		if pct == 0 {
			return Dimension{Kind: DimPx, Px: px}
		}
		return Dimension{Kind: DimCalc, Px: px, Pct: pct}
	}
	if strings.HasSuffix(v, "%") {
		n, err := parseFloat(strings.TrimSuffix(v, "%"))
		if err != nil {
			return Dimension{Kind: DimAuto}
		}
		return Dimension{Kind: DimPercent, Pct: n}
	}
	px, ok := parseAbsolute(v, fontSize, rootFontSize)
	if !ok {
		return Dimension{Kind: DimAuto}
	}
	return Dimension{Kind: DimPx, Px: px}
}

// ParseLengthWithUnits resolves a length to pixels. Percentages and the
// percent component of calc() resolve against reference; vw/vh against the
// viewport. Unresolvable input yields 0.
func ParseLengthWithUnits(value string, fontSize, rootFontSize, reference, vw, vh float64) float64 {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(v, "vw"):
		if n, err := parseFloat(strings.TrimSuffix(v, "vw")); err == nil {
			return n / 100.0 * vw
		}
		return 0
	case strings.HasSuffix(v, "vh"):
		if n, err := parseFloat(strings.TrimSuffix(v, "vh")); err == nil {
			return n / 100.0 * vh
		}
		return 0
	}
	d := ParseDimension(v, fontSize, rootFontSize)
	px, ok := d.Resolve(reference)
	if !ok {
		return 0
	}
	return px
}

// ParseAbsoluteLength resolves px and unitless values only, for contexts
// with no reference dimension (line-height fallbacks).
func ParseAbsoluteLength(value string) float64 {
	px, ok := parseAbsolute(strings.TrimSpace(value), BaseFontSize, BaseFontSize)
	if !ok {
		return 0
	}
	return px
}

func parseAbsolute(v string, fontSize, rootFontSize float64) (float64, bool) {
	var n float64
	var err error
	switch {
	case strings.HasSuffix(v, "px"):
		n, err = parseFloat(strings.TrimSuffix(v, "px"))
	case strings.HasSuffix(v, "rem"):
		n, err = parseFloat(strings.TrimSuffix(v, "rem"))
		n *= rootFontSize
	case strings.HasSuffix(v, "em"):
		n, err = parseFloat(strings.TrimSuffix(v, "em"))
		n *= fontSize
	case strings.HasSuffix(v, "pt"):
		n, err = parseFloat(strings.TrimSuffix(v, "pt"))
		n *= 96.0 / 72.0
	default:
		n, err = parseFloat(v)
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// -- calc() --

type calcToken struct {
	op  byte    // one of + - * / ( ), 0 for operand
	px  float64 // operand pixel component
	pct float64 // operand percent component
}

// evalCalc evaluates a calc() expression body to a (px, percent) pair with
// standard precedence. Multiplication requires one unitless operand;
// division requires a unitless divisor.
func evalCalc(expr string, fontSize, rootFontSize float64) (px, pct float64, ok bool) {
	tokens, ok := tokenizeCalc(expr, fontSize, rootFontSize)
	if !ok {
		return 0, 0, false
	}
	pos := 0
	px, pct, ok = calcAddSub(tokens, &pos, fontSize, rootFontSize)
	if !ok || pos != len(tokens) {
		return 0, 0, false
	}
	return px, pct, true
}

func tokenizeCalc(expr string, fontSize, rootFontSize float64) ([]calcToken, bool) {
	var tokens []calcToken
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '+' || c == '*' || c == '/' || c == '(' || c == ')':
			tokens = append(tokens, calcToken{op: c})
			i++
		case c == '-':
			// A minus is an operator only when separated from the next
			// operand by whitespace; otherwise it signs the number.
			if i+1 < len(expr) && expr[i+1] == ' ' {
				tokens = append(tokens, calcToken{op: '-'})
				i++
				continue
			}
			fallthrough
		default:
			start := i
			for i < len(expr) && expr[i] != ' ' && expr[i] != '+' && expr[i] != '*' &&
				expr[i] != '/' && expr[i] != '(' && expr[i] != ')' {
				i++
			}
			raw := expr[start:i]
			if strings.HasSuffix(raw, "%") {
				n, err := parseFloat(strings.TrimSuffix(raw, "%"))
				if err != nil {
					return nil, false
				}
				tokens = append(tokens, calcToken{pct: n})
				continue
			}
			n, ok := parseAbsolute(raw, fontSize, rootFontSize)
			if !ok {
				return nil, false
			}
			// Unitless numbers keep their raw value in px and are told
			// apart at multiply time by a zero pct and bare digits.
			tokens = append(tokens, calcToken{px: n})
		}
	}
	return tokens, true
}

func calcPrimary(tokens []calcToken, pos *int, fontSize, rootFontSize float64) (float64, float64, bool) {
	if *pos >= len(tokens) {
		return 0, 0, false
	}
	t := tokens[*pos]
	if t.op == '(' {
		*pos++
		px, pct, ok := calcAddSub(tokens, pos, fontSize, rootFontSize)
		if !ok || *pos >= len(tokens) || tokens[*pos].op != ')' {
			return 0, 0, false
		}
		*pos++
		return px, pct, true
	}
	if t.op != 0 {
		return 0, 0, false
	}
	*pos++
	return t.px, t.pct, true
}

func calcMulDiv(tokens []calcToken, pos *int, fontSize, rootFontSize float64) (float64, float64, bool) {
	px, pct, ok := calcPrimary(tokens, pos, fontSize, rootFontSize)
	if !ok {
		return 0, 0, false
	}
	for *pos < len(tokens) && (tokens[*pos].op == '*' || tokens[*pos].op == '/') {
		op := tokens[*pos].op
		*pos++
		rpx, rpct, ok := calcPrimary(tokens, pos, fontSize, rootFontSize)
		if !ok {
			return 0, 0, false
		}
		if op == '*' {
			// One side must be a plain number (no percent component).
			switch {
			case rpct == 0:
				px *= rpx
				pct *= rpx
			case pct == 0:
				px, pct = rpx*px, rpct*px
			default:
				return 0, 0, false
			}
			continue
		}
		if rpct != 0 || rpx == 0 {
			return 0, 0, false
		}
		px /= rpx
		pct /= rpx
	}
	return px, pct, true
}

func calcAddSub(tokens []calcToken, pos *int, fontSize, rootFontSize float64) (float64, float64, bool) {
	px, pct, ok := calcMulDiv(tokens, pos, fontSize, rootFontSize)
	if !ok {
		return 0, 0, false
	}
	for *pos < len(tokens) && (tokens[*pos].op == '+' || tokens[*pos].op == '-') {
		op := tokens[*pos].op
		*pos++
		rpx, rpct, ok := calcMulDiv(tokens, pos, fontSize, rootFontSize)
		if !ok {
			return 0, 0, false
		}
		if op == '+' {
			px += rpx
			pct += rpct
		} else {
			px -= rpx
			pct -= rpct
		}
	}
	return px, pct, true
}

// -- var() --

// ResolveVars substitutes var(--name) and var(--name, fallback) references
// against the given environment. Fallbacks may nest further var() calls.
// Unresolvable references collapse to the empty string.
func ResolveVars(value string, vars map[string]string) string {
	return resolveVars(value, vars, 0)
}

func resolveVars(value string, vars map[string]string, depth int) string {
	if depth > 16 {
		return ""
	}
	idx := strings.Index(value, "var(")
	if idx < 0 {
		return value
	}
	// Find the matching close paren.
	open := idx + len("var(")
	level := 1
	end := -1
	for i := open; i < len(value); i++ {
		switch value[i] {
		case '(':
			level++
		case ')':
			level--
			if level == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return value[:idx]
	}
	inner := value[open:end]
	name := inner
	fallback := ""
	hasFallback := false
	if comma := topLevelComma(inner); comma >= 0 {
		name = strings.TrimSpace(inner[:comma])
		fallback = strings.TrimSpace(inner[comma+1:])
		hasFallback = true
	} else {
		name = strings.TrimSpace(name)
	}

	replacement, ok := vars[name]
	if !ok && hasFallback {
		replacement = resolveVars(fallback, vars, depth+1)
		ok = true
	}
	if !ok {
		replacement = ""
	}
	out := value[:idx] + replacement + value[end+1:]
	return resolveVars(out, vars, depth+1)
}

func topLevelComma(s string) int {
	level := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			level++
		case ')':
			level--
		case ',':
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

// -- text metrics --

// MeasureText estimates the rendered size of a text node using the character
// count heuristic: width = runes x fontSize x charWidthRatio, height =
// fontSize x line-height.
func MeasureText(sn *StyledNode) (width, height float64) {
	text := strings.TrimSpace(sn.Node.Text)
	fontSize := GetFontSize(sn)
	width = float64(utf8.RuneCountInString(text)) * fontSize * charWidthRatio
	height = fontSize * lineHeightFactor(sn, fontSize)
	return width, height
}

func lineHeightFactor(sn *StyledNode, fontSize float64) float64 {
	raw := string(sn.Lookup("line-height", ""))
	if raw == "" || raw == "normal" {
		return DefaultLineHeight
	}
	if !strings.ContainsAny(raw, "abcdefghijklmnopqrstuvwxyz%") {
		if n, err := parseFloat(raw); err == nil && n > 0 {
			return n
		}
		return DefaultLineHeight
	}
	px := ParseLengthWithUnits(raw, fontSize, BaseFontSize, fontSize, 0, 0)
	if px <= 0 || fontSize <= 0 {
		return DefaultLineHeight
	}
	return px / fontSize
}

// parseFloat parses a CSS number, tolerating surrounding whitespace.
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
