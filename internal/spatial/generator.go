// Package spatial turns a laid-out styled tree into the flat, ID-addressed
// Spatial DOM, and hosts the pure operations over it: content-identity
// deltas, the compact formatter, and the form-state overlay.
package spatial

import (
	"math"
	"net/url"
	"strings"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/layout"
	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// Generator walks a laid-out tree and emits Spatial DOM elements.
type Generator struct {
	vpW, vpH float64
	base     *url.URL
}

// NewGenerator builds a generator for one viewport. baseURL may be empty;
// hrefs then stay as written.
func NewGenerator(vpW, vpH float64, baseURL string) *Generator {
	g := &Generator{vpW: vpW, vpH: vpH}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" {
			g.base = u
		}
	}
	return g
}

var dropTags = map[string]bool{
	"script": true, "style": true, "meta": true, "link": true,
	"noscript": true, "template": true, "head": true, "title": true, "base": true,
}

var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "textarea": true,
	"select": true, "option": true, "summary": true,
}

var interactiveRoles = map[string]bool{
	"button": true, "link": true, "checkbox": true, "radio": true,
	"textbox": true, "searchbox": true, "combobox": true, "listbox": true,
	"option": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "slider": true, "spinbutton": true,
	"switch": true, "tab": true,
}

var textTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "dt": true, "dd": true, "blockquote": true,
	"pre": true, "code": true, "label": true,
}

var wrapperTags = map[string]bool{
	"li": true, "td": true, "th": true, "span": true, "p": true,
	"dt": true, "dd": true, "div": true,
}

var landmarkRoles = map[string]bool{
	"navigation": true, "banner": true, "contentinfo": true,
	"complementary": true, "region": true, "main": true, "form": true,
}

// landmarkRoleForTag maps structural tags to their implicit landmark role.
// A section is a landmark only when it carries an explicit aria-label.
func landmarkRoleForTag(n *dom.Node) string {
	switch n.Tag {
	case "nav":
		return "navigation"
	case "header":
		return "banner"
	case "footer":
		return "contentinfo"
	case "main":
		return "main"
	case "aside":
		return "complementary"
	case "form":
		return "form"
	case "section":
		if strings.TrimSpace(n.Attr("aria-label")) != "" {
			return "region"
		}
	}
	return ""
}

// walkState carries the per-parse emission context.
type walkState struct {
	els      []schemas.Element
	nextID   uint32
	labelFor map[string]string
	inText   bool
}

// Generate produces the element list for one laid-out tree. The walk starts
// at body when present so head metadata never surfaces.
func (g *Generator) Generate(root *style.StyledNode, bounds layout.Bounds) []schemas.Element {
	if root == nil {
		return nil
	}
	st := &walkState{nextID: 1, labelFor: collectLabels(root.Node)}
	start := root
	if body := findStyled(root, func(sn *style.StyledNode) bool { return sn.Node.Tag == "body" }); body != nil {
		start = body
	}
	g.walk(start, bounds, st)
	return st.els
}

func findStyled(root *style.StyledNode, pred func(*style.StyledNode) bool) *style.StyledNode {
	if root.Node.Type == dom.ElementNode && pred(root) {
		return root
	}
	for _, c := range root.Children {
		if found := findStyled(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// collectLabels indexes <label for=X> text by X, first in document order.
func collectLabels(root *dom.Node) map[string]string {
	out := make(map[string]string)
	root.Walk(func(n *dom.Node) bool {
		if n.Type == dom.ElementNode && n.Tag == "label" {
			if target := n.Attr("for"); target != "" {
				if _, ok := out[target]; !ok {
					out[target] = n.CollectText()
				}
			}
		}
		return true
	})
	return out
}

func (g *Generator) walk(sn *style.StyledNode, bounds layout.Bounds, st *walkState) {
	n := sn.Node
	if n.Type != dom.ElementNode {
		if n.Type == dom.DocumentNode {
			for _, c := range sn.Children {
				g.walk(c, bounds, st)
			}
		}
		return
	}
	if dropTags[n.Tag] {
		return
	}

	switch n.Tag {
	case "svg":
		g.emitSVG(sn, bounds, st)
		return
	case "img":
		if strings.TrimSpace(n.Attr("alt")) != "" {
			g.emit(sn, bounds, st, func(el *schemas.Element) {
				el.Text = strings.TrimSpace(n.Attr("alt"))
				el.Role = roleFor(n)
			})
		}
		return
	}

	role := strings.ToLower(strings.TrimSpace(n.Attr("role")))
	interactive := interactiveTags[n.Tag] || interactiveRoles[role]
	if interactive {
		g.emitInteractive(sn, bounds, st)
		if n.Tag == "select" {
			for _, c := range sn.Children {
				g.walk(c, bounds, st)
			}
		}
		return
	}

	if lm := landmarkRole(n, role); lm != "" {
		g.emit(sn, bounds, st, func(el *schemas.Element) {
			el.Role = lm
		})
		for _, c := range sn.Children {
			g.walk(c, bounds, st)
		}
		return
	}

	if wrapperTags[n.Tag] {
		if child, ok := soleInteractiveChild(n); ok {
			ownText := n.DirectText()
			if ownText != "" && ownText != childText(child) {
				g.emit(sn, bounds, st, func(el *schemas.Element) {
					el.Text = ownText
				})
			}
			for _, c := range sn.Children {
				g.walk(c, bounds, st)
			}
			return
		}
	}

	if !st.inText {
		if textTags[n.Tag] {
			g.emit(sn, bounds, st, func(el *schemas.Element) {
				el.Text = n.CollectText()
				el.Role = roleFor(n)
			})
			st.inText = true
			for _, c := range sn.Children {
				g.walk(c, bounds, st)
			}
			st.inText = false
			return
		}
		if direct := n.DirectText(); direct != "" {
			g.emit(sn, bounds, st, func(el *schemas.Element) {
				el.Text = direct
			})
		}
	}

	for _, c := range sn.Children {
		g.walk(c, bounds, st)
	}
}

// landmarkRole decides landmark status from the explicit role first, then
// the tag.
func landmarkRole(n *dom.Node, explicitRole string) string {
	if explicitRole != "" {
		if landmarkRoles[explicitRole] {
			return explicitRole
		}
		return ""
	}
	return landmarkRoleForTag(n)
}

// soleInteractiveChild reports whether the element's only element child is
// interactive and the wrapper holds no other element children.
func soleInteractiveChild(n *dom.Node) (*dom.Node, bool) {
	var child *dom.Node
	for _, c := range n.Children {
		if c.Type != dom.ElementNode {
			continue
		}
		if child != nil {
			return nil, false
		}
		child = c
	}
	if child == nil {
		return nil, false
	}
	role := strings.ToLower(strings.TrimSpace(child.Attr("role")))
	if interactiveTags[child.Tag] || interactiveRoles[role] {
		return child, true
	}
	return nil, false
}

func childText(n *dom.Node) string {
	return n.CollectText()
}

// emit appends one element after the visibility gate: hidden elements are
// always kept, zero-size visible elements are dropped.
func (g *Generator) emit(sn *style.StyledNode, bounds layout.Bounds, st *walkState, fill func(*schemas.Element)) {
	n := sn.Node
	rect, laidOut := bounds[sn]
	hidden := isHidden(sn, laidOut)

	el := schemas.Element{
		Tag: n.Tag,
		B: [4]int{
			int(math.Round(rect.X)),
			int(math.Round(rect.Y)),
			int(math.Round(rect.Width)),
			int(math.Round(rect.Height)),
		},
	}
	if fill != nil {
		fill(&el)
	}
	if hidden {
		el.Hidden = true
	} else if el.B[2] == 0 && el.B[3] == 0 {
		return
	}
	el.AlertType = classifyAlert(n)

	el.ID = st.nextID
	st.nextID++
	st.els = append(st.els, el)
}

// isHidden applies the §visibility markers plus absence from layout, which
// means a display:none ancestor pruned the subtree.
func isHidden(sn *style.StyledNode, laidOut bool) bool {
	n := sn.Node
	if !laidOut {
		return true
	}
	if !sn.IsVisible() {
		return true
	}
	if sn.Display() == style.DisplayNone {
		return true
	}
	if n.HasAttr("hidden") {
		return true
	}
	if strings.EqualFold(n.Attr("aria-hidden"), "true") {
		return true
	}
	return false
}

func (g *Generator) emitSVG(sn *style.StyledNode, bounds layout.Bounds, st *walkState) {
	title := svgTitle(sn.Node)
	if title == "" {
		return
	}
	g.emit(sn, bounds, st, func(el *schemas.Element) {
		el.Text = title
		el.Role = "img"
	})
}

func svgTitle(n *dom.Node) string {
	for _, c := range n.Children {
		if c.Type == dom.ElementNode && c.Tag == "title" {
			return c.CollectText()
		}
	}
	return ""
}

func (g *Generator) emitInteractive(sn *style.StyledNode, bounds layout.Bounds, st *walkState) {
	n := sn.Node
	g.emit(sn, bounds, st, func(el *schemas.Element) {
		el.Role = roleFor(n)
		el.Text = interactiveText(n)
		el.Name = n.Attr("name")
		el.Ph = n.Attr("placeholder")
		el.Val = n.Attr("value")
		el.Href = g.resolveHref(n.Attr("href"))

		switch n.Tag {
		case "input":
			el.InputType = inputType(n)
			if el.InputType == "submit" || el.InputType == "button" {
				if el.Text == "" {
					el.Text = n.Attr("value")
				}
				el.Val = ""
			}
		case "option":
			if el.Text == "" {
				el.Text = n.CollectText()
			}
		}

		el.Checked = n.HasAttr("checked") || strings.EqualFold(n.Attr("aria-checked"), "true")
		el.Selected = n.HasAttr("selected") || strings.EqualFold(n.Attr("aria-selected"), "true")
		el.Disabled = n.HasAttr("disabled") || strings.EqualFold(n.Attr("aria-disabled"), "true")
		el.Required = n.HasAttr("required") || strings.EqualFold(n.Attr("aria-required"), "true")
		el.Expanded = strings.EqualFold(n.Attr("aria-expanded"), "true")
		el.Label = g.labelForControl(sn, st)
	})
}

// interactiveText is the element text with the fallback chain for elements
// holding no text of their own: aria-label, title, a descendant image alt,
// a descendant svg title.
func interactiveText(n *dom.Node) string {
	if t := n.CollectText(); t != "" {
		return t
	}
	if t := strings.TrimSpace(n.Attr("aria-label")); t != "" {
		return t
	}
	if t := strings.TrimSpace(n.Attr("title")); t != "" {
		return t
	}
	var fallback string
	n.Walk(func(cur *dom.Node) bool {
		if fallback != "" {
			return false
		}
		if cur.Type != dom.ElementNode {
			return true
		}
		switch cur.Tag {
		case "img":
			if alt := strings.TrimSpace(cur.Attr("alt")); alt != "" {
				fallback = alt
				return false
			}
		case "svg":
			if t := svgTitle(cur); t != "" {
				fallback = t
				return false
			}
		}
		return true
	})
	return fallback
}

// labelForControl resolves <label for=> by the control's id, then falls back
// to an enclosing label element.
func (g *Generator) labelForControl(sn *style.StyledNode, st *walkState) string {
	n := sn.Node
	switch n.Tag {
	case "input", "textarea", "select":
	default:
		return ""
	}
	if id := n.Attr("id"); id != "" {
		if text, ok := st.labelFor[id]; ok {
			return text
		}
	}
	for cur := sn.Parent; cur != nil; cur = cur.Parent {
		if cur.Node.Type == dom.ElementNode && cur.Node.Tag == "label" {
			return cur.Node.CollectText()
		}
	}
	return ""
}

func inputType(n *dom.Node) string {
	t := strings.ToLower(strings.TrimSpace(n.Attr("type")))
	if t == "" {
		return "text"
	}
	return t
}

// roleFor is the implicit ARIA role of the tag; an explicit role attribute
// wins.
func roleFor(n *dom.Node) string {
	if r := strings.ToLower(strings.TrimSpace(n.Attr("role"))); r != "" {
		return r
	}
	switch n.Tag {
	case "a":
		if n.HasAttr("href") {
			return "link"
		}
		return ""
	case "button", "summary":
		return "button"
	case "textarea":
		return "textbox"
	case "select":
		return "combobox"
	case "option":
		return "option"
	case "img", "svg":
		return "img"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "input":
		switch inputType(n) {
		case "text", "email", "password", "tel", "url":
			return "textbox"
		case "search":
			return "searchbox"
		case "checkbox":
			return "checkbox"
		case "radio":
			return "radio"
		case "number":
			return "spinbutton"
		case "range":
			return "slider"
		case "submit", "button", "image", "reset":
			return "button"
		default:
			return "textbox"
		}
	}
	return ""
}

// resolveHref makes hrefs absolute against the base URL. Fragment-only and
// non-navigational schemes stay verbatim.
func (g *Generator) resolveHref(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "#") {
		return href
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return href
		}
	}
	if g.base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return g.base.ResolveReference(ref).String()
}

// alertPrefixes and alertSuffixes describe the compound class forms that
// classify an element as an alert. Bare names like "error" stay ignored.
var alertPrefixes = []string{"alert", "msg", "message", "flash", "notification", "toast"}

var alertSuffixes = map[string]string{
	"error": "error", "danger": "error", "fail": "error",
	"success": "success", "ok": "success",
	"warning": "warning", "warn": "warning",
	"info": "status", "notice": "status",
}

func classifyAlert(n *dom.Node) string {
	switch strings.ToLower(strings.TrimSpace(n.Attr("role"))) {
	case "alert":
		return "alert"
	case "status":
		return "status"
	}
	for _, class := range strings.Fields(strings.ToLower(n.Attr("class"))) {
		for _, sep := range []string{"-", "_"} {
			prefix, suffix, ok := strings.Cut(class, sep)
			if !ok {
				continue
			}
			if !containsString(alertPrefixes, prefix) {
				continue
			}
			if kind, ok := alertSuffixes[suffix]; ok {
				return kind
			}
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PositionSuffix places an element's centre on the 3x3 viewport grid, or
// @below when its top edge is past the fold. Used to disambiguate duplicate
// (tag, text) pairs in the compact output.
func PositionSuffix(el schemas.Element, vpW, vpH float64) string {
	if float64(el.B[1]) >= vpH {
		return "@below"
	}
	cx := float64(el.B[0]) + float64(el.B[2])/2
	cy := float64(el.B[1]) + float64(el.B[3])/2

	var row string
	switch {
	case cy < vpH/3:
		row = "top"
	case cy < 2*vpH/3:
		row = "mid"
	default:
		row = "bot"
	}
	switch {
	case cx < vpW/3:
		return "@" + row + "-L"
	case cx < 2*vpW/3:
		return "@" + row
	default:
		return "@" + row + "-R"
	}
}

// SizeHint annotates form controls by width relative to the viewport.
func SizeHint(el schemas.Element, vpW float64) string {
	if vpW <= 0 {
		return ""
	}
	w := float64(el.B[2])
	switch {
	case w > vpW*0.9:
		return "full"
	case w > vpW*0.5:
		return "wide"
	case w < vpW*0.15:
		return "narrow"
	default:
		return ""
	}
}
