// Package style computes the styled tree: for every element, the cascaded
// subset of CSS that affects layout, with shorthands expanded, custom
// properties substituted, and font sizes resolved to absolute pixels.
package style

import (
	"sort"
	"strconv"
	"strings"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
)

// StyledNode pairs a DOM node with its computed layout-affecting styles.
// Vars is the custom-property environment in scope at this node.
type StyledNode struct {
	Node     *dom.Node
	Styles   map[parser.Property]parser.Value
	Vars     map[string]string
	Parent   *StyledNode
	Children []*StyledNode
}

// Lookup returns the computed value for a property, or def when unset.
func (sn *StyledNode) Lookup(prop parser.Property, def string) parser.Value {
	if sn == nil || sn.Styles == nil {
		return parser.Value(def)
	}
	if v, ok := sn.Styles[prop]; ok && v != "" {
		return v
	}
	return parser.Value(def)
}

// Engine resolves stylesheets against a DOM tree for one viewport.
type Engine struct {
	uaSheet      parser.StyleSheet
	authorSheets []parser.StyleSheet
	vpW, vpH     float64
	rootFontSize float64
}

func NewEngine() *Engine {
	return &Engine{
		uaSheet:      parser.NewParser(DefaultUserAgentCSS).Parse(),
		rootFontSize: BaseFontSize,
	}
}

func (e *Engine) SetViewport(w, h float64) {
	e.vpW, e.vpH = w, h
}

// AddAuthorSheet appends a parsed author stylesheet. Order of addition is
// cascade order.
func (e *Engine) AddAuthorSheet(s parser.StyleSheet) {
	e.authorSheets = append(e.authorSheets, s)
}

// inheritedProps propagate from parent to child when the child has no
// cascaded value of its own.
var inheritedProps = []parser.Property{"font-size", "line-height", "visibility", "cursor"}

// BuildTree computes styles for the subtree rooted at n. Comment nodes are
// dropped; text nodes inherit.
func (e *Engine) BuildTree(n *dom.Node, parent *StyledNode) *StyledNode {
	if n.Type == dom.CommentNode {
		return nil
	}
	sn := &StyledNode{Node: n, Parent: parent}

	switch n.Type {
	case dom.ElementNode:
		sn.Vars = e.collectVars(n, parent)
		sn.Styles = e.CalculateStyles(n, sn.Vars, parent)
		e.resolveFontSize(sn, parent)
		if n.Tag == "html" {
			e.rootFontSize = GetFontSize(sn)
		}
	case dom.TextNode, dom.DocumentNode:
		// Text inherits everything relevant from its element parent.
		sn.Styles = make(map[parser.Property]parser.Value)
		if parent != nil {
			for _, p := range inheritedProps {
				if v, ok := parent.Styles[p]; ok {
					sn.Styles[p] = v
				}
			}
			sn.Vars = parent.Vars
		}
	}

	for _, c := range n.Children {
		if child := e.BuildTree(c, sn); child != nil {
			sn.Children = append(sn.Children, child)
		}
	}
	return sn
}

// declWithContext carries the cascade sort keys of one declaration.
type declWithContext struct {
	decl   parser.Declaration
	origin int // 0 user agent, 1 author, 2 inline
	spec   [3]int
	order  int
}

// CalculateStyles runs the cascade for a single element: user-agent sheet,
// author sheets, then the inline style attribute. Ties break on specificity
// then source order; later wins. !important is captured by the parser but
// deliberately carries no extra cascade weight here.
func (e *Engine) CalculateStyles(n *dom.Node, vars map[string]string, parent *StyledNode) map[parser.Property]parser.Value {
	var decls []declWithContext
	order := 0

	gather := func(sheet parser.StyleSheet, origin int) {
		for _, rule := range sheet.Rules {
			if rule.Media != "" && !EvaluateMedia(rule.Media, e.vpW, e.vpH) {
				continue
			}
			for _, sel := range rule.Selectors {
				if sel.Unsupported || !e.Matches(sel, n) {
					continue
				}
				a, b, c := sel.Specificity()
				for _, d := range rule.Declarations {
					decls = append(decls, declWithContext{
						decl:   d,
						origin: origin,
						spec:   [3]int{a, b, c},
						order:  order,
					})
					order++
				}
			}
		}
	}

	gather(e.uaSheet, 0)
	for _, sheet := range e.authorSheets {
		gather(sheet, 1)
	}
	if inline := n.Attr("style"); inline != "" {
		for _, d := range parser.ParseDeclarations(inline) {
			decls = append(decls, declWithContext{decl: d, origin: 2, order: order})
			order++
		}
	}

	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].origin != decls[j].origin {
			return decls[i].origin < decls[j].origin
		}
		if decls[i].spec != decls[j].spec {
			return specLess(decls[i].spec, decls[j].spec)
		}
		return decls[i].order < decls[j].order
	})

	styles := make(map[parser.Property]parser.Value)
	if parent != nil {
		for _, p := range inheritedProps {
			if v, ok := parent.Styles[p]; ok {
				styles[p] = v
			}
		}
	}
	for _, dc := range decls {
		applyDeclaration(styles, dc.decl, vars)
	}
	return styles
}

func specLess(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// applyDeclaration writes one declaration into the computed map, expanding
// shorthands and substituting custom-property references.
func applyDeclaration(styles map[parser.Property]parser.Value, d parser.Declaration, vars map[string]string) {
	value := string(d.Value)
	if strings.Contains(value, "var(") {
		value = strings.TrimSpace(ResolveVars(value, vars))
		if value == "" {
			return
		}
	}
	for p, v := range expandShorthand(d.Property, value) {
		styles[p] = parser.Value(v)
	}
}

// collectVars builds the custom-property environment: the parent's scope
// overlaid with declarations on this element from any origin.
func (e *Engine) collectVars(n *dom.Node, parent *StyledNode) map[string]string {
	var vars map[string]string
	inherit := map[string]string(nil)
	if parent != nil {
		inherit = parent.Vars
	}

	set := func(name parser.Property, val parser.Value) {
		if !strings.HasPrefix(string(name), "--") {
			return
		}
		if vars == nil {
			vars = make(map[string]string, len(inherit)+1)
			for k, v := range inherit {
				vars[k] = v
			}
		}
		vars[string(name)] = string(val)
	}

	scan := func(sheet parser.StyleSheet) {
		for _, rule := range sheet.Rules {
			if rule.Media != "" && !EvaluateMedia(rule.Media, e.vpW, e.vpH) {
				continue
			}
			matched := false
			for _, sel := range rule.Selectors {
				if !sel.Unsupported && e.Matches(sel, n) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			for _, d := range rule.Declarations {
				set(d.Property, d.Value)
			}
		}
	}
	scan(e.uaSheet)
	for _, sheet := range e.authorSheets {
		scan(sheet)
	}
	if inline := n.Attr("style"); inline != "" {
		for _, d := range parser.ParseDeclarations(inline) {
			set(d.Property, d.Value)
		}
	}

	if vars == nil {
		return inherit
	}
	return vars
}

// resolveFontSize normalizes font-size to absolute pixels so descendants can
// resolve em units against it.
func (e *Engine) resolveFontSize(sn *StyledNode, parent *StyledNode) {
	raw := string(sn.Lookup("font-size", ""))
	parentSize := BaseFontSize
	if parent != nil {
		parentSize = GetFontSize(parent)
	}
	if raw == "" {
		return
	}
	var px float64
	switch {
	case strings.HasSuffix(raw, "%"):
		if n, err := parseFloat(strings.TrimSuffix(raw, "%")); err == nil {
			px = n / 100.0 * parentSize
		}
	default:
		d := ParseDimension(raw, parentSize, e.rootFontSize)
		px, _ = d.Resolve(parentSize)
	}
	if px <= 0 {
		px = parentSize
	}
	sn.Styles["font-size"] = parser.Value(formatPx(px))
}

// GetFontSize returns the computed font size of the node, walking up to the
// nearest ancestor with one.
func GetFontSize(sn *StyledNode) float64 {
	for cur := sn; cur != nil; cur = cur.Parent {
		if raw, ok := cur.Styles["font-size"]; ok && raw != "" {
			if px, ok := parseAbsolute(string(raw), BaseFontSize, BaseFontSize); ok && px > 0 {
				return px
			}
		}
	}
	return BaseFontSize
}

func formatPx(px float64) string {
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}
