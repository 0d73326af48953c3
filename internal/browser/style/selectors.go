package style

import (
	"strings"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
)

// Matches reports whether the complex selector matches the element,
// evaluating compounds right to left against the ancestor chain.
func (e *Engine) Matches(sel parser.ComplexSelector, n *dom.Node) bool {
	if n == nil || n.Type != dom.ElementNode || len(sel.Compounds) == 0 {
		return false
	}
	return matchFrom(sel.Compounds, len(sel.Compounds)-1, n)
}

func matchFrom(compounds []parser.CompoundSelector, idx int, n *dom.Node) bool {
	if !matchesSimple(compounds[idx].Selector, n) {
		return false
	}
	if idx == 0 {
		return true
	}
	switch compounds[idx].Combinator {
	case parser.CombinatorChild:
		p := elementParent(n)
		return p != nil && matchFrom(compounds, idx-1, p)
	case parser.CombinatorDescendant:
		for p := elementParent(n); p != nil; p = elementParent(p) {
			if matchFrom(compounds, idx-1, p) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func elementParent(n *dom.Node) *dom.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == dom.ElementNode {
			return p
		}
	}
	return nil
}

func matchesSimple(s parser.SimpleSelector, n *dom.Node) bool {
	if s.TagName != "" && s.TagName != "*" && s.TagName != n.Tag {
		return false
	}
	if s.ID != "" && n.Attr("id") != s.ID {
		return false
	}
	if len(s.Classes) > 0 {
		classes := strings.Fields(n.Attr("class"))
		for _, want := range s.Classes {
			found := false
			for _, have := range classes {
				if have == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, attr := range s.Attributes {
		if !matchesAttribute(attr, n) {
			return false
		}
	}
	// Pseudo-classes parse but impose no condition.
	return true
}

func matchesAttribute(a parser.AttributeSelector, n *dom.Node) bool {
	val, ok := n.AttrOK(a.Name)
	if !ok {
		return false
	}
	switch a.Operator {
	case "":
		return true
	case "=":
		return val == a.Value
	case "~=":
		for _, word := range strings.Fields(val) {
			if word == a.Value {
				return true
			}
		}
		return false
	case "|=":
		return val == a.Value || strings.HasPrefix(val, a.Value+"-")
	case "^=":
		return a.Value != "" && strings.HasPrefix(val, a.Value)
	case "$=":
		return a.Value != "" && strings.HasSuffix(val, a.Value)
	case "*=":
		return a.Value != "" && strings.Contains(val, a.Value)
	default:
		return false
	}
}
