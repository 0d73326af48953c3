// Package parser implements a small CSS parser covering the subset the
// layout pipeline consumes: rule sets with tag/class/id/universal/attribute
// selectors, descendant and child combinators, comma groups, declarations
// with !important capture, and @media blocks whose conditions are recorded
// for viewport evaluation at cascade time. Everything else (other at-rules,
// pseudo-element bodies) is skipped without error.
package parser

import "strings"

// Property is a lowercase CSS property name ("margin-top", "--accent").
type Property string

// Value is the raw declaration value text, trimmed.
type Value string

// Declaration is a single property: value pair.
type Declaration struct {
	Property  Property
	Value     Value
	Important bool
}

// Combinator relates a simple selector to the one on its left.
type Combinator int

const (
	CombinatorNone Combinator = iota
	CombinatorDescendant
	CombinatorChild
)

// AttributeSelector is one [name op value] term.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// SimpleSelector matches one element: optional tag (or "*"), id, classes,
// attribute terms, and pseudo-classes that are parsed but never
// match-relevant.
type SimpleSelector struct {
	TagName    string
	ID         string
	Classes    []string
	Attributes []AttributeSelector
	Pseudos    []string
}

// CompoundSelector is a simple selector plus the combinator tying it to the
// preceding compound in the complex selector.
type CompoundSelector struct {
	Selector   SimpleSelector
	Combinator Combinator
}

// ComplexSelector is a left-to-right chain of compounds. Unsupported marks
// chains using combinators outside the supported set; they parse cleanly
// but never match.
type ComplexSelector struct {
	Compounds   []CompoundSelector
	Unsupported bool
}

// Specificity returns the (id, class/attr/pseudo, tag) counts of the chain.
func (c ComplexSelector) Specificity() (a, b, cc int) {
	for _, comp := range c.Compounds {
		s := comp.Selector
		if s.ID != "" {
			a++
		}
		b += len(s.Classes) + len(s.Attributes) + len(s.Pseudos)
		if s.TagName != "" && s.TagName != "*" {
			cc++
		}
	}
	return
}

// RuleSet is one selector group with its declarations. Media holds the raw
// @media condition text enclosing the rule, empty for top-level rules.
type RuleSet struct {
	Selectors    []ComplexSelector
	Declarations []Declaration
	Media        string
}

// StyleSheet is a parsed sheet in source order.
type StyleSheet struct {
	Rules []RuleSet
}

// Parser is a single-pass recursive-descent CSS parser.
type Parser struct {
	input string
	pos   int
}

func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse consumes the whole input and returns the sheet. Malformed constructs
// are skipped; parsing never fails.
func (p *Parser) Parse() StyleSheet {
	return StyleSheet{Rules: p.parseRules("")}
}

func (p *Parser) parseRules(media string) []RuleSet {
	var rules []RuleSet
	for {
		p.skipWhitespaceAndComments()
		if p.eof() || p.current() == '}' {
			return rules
		}
		if p.current() == '@' {
			rules = append(rules, p.parseAtRule(media)...)
			continue
		}
		selectors := p.parseSelectorGroup()
		if p.eof() || p.current() != '{' {
			p.skipTo('{', ';')
			if !p.eof() && p.current() == '{' {
				p.skipBlock()
			} else if !p.eof() {
				p.advance()
			}
			continue
		}
		p.advance() // '{'
		decls := p.parseDeclarations()
		if len(selectors) > 0 && len(decls) > 0 {
			rules = append(rules, RuleSet{Selectors: selectors, Declarations: decls, Media: media})
		}
	}
}

// parseAtRule handles @media by descending into its block; every other
// at-rule is skipped wholesale.
func (p *Parser) parseAtRule(media string) []RuleSet {
	p.advance() // '@'
	name := p.parseIdentifier()
	if name != "media" {
		p.skipTo('{', ';')
		if !p.eof() && p.current() == '{' {
			p.skipBlock()
		} else if !p.eof() {
			p.advance()
		}
		return nil
	}

	start := p.pos
	p.skipTo('{', ';')
	if p.eof() || p.current() != '{' {
		if !p.eof() {
			p.advance()
		}
		return nil
	}
	cond := strings.TrimSpace(p.input[start:p.pos])
	if media != "" {
		// Nested @media conditions conjoin.
		cond = media + " and " + cond
	}
	p.advance() // '{'
	rules := p.parseRules(cond)
	if !p.eof() && p.current() == '}' {
		p.advance()
	}
	return rules
}

func (p *Parser) parseSelectorGroup() []ComplexSelector {
	var group []ComplexSelector
	for {
		sel := p.parseComplexSelector()
		if len(sel.Compounds) > 0 {
			group = append(group, sel)
		}
		p.skipWhitespaceAndComments()
		if p.eof() || p.current() != ',' {
			return group
		}
		p.advance()
	}
}

func (p *Parser) parseComplexSelector() ComplexSelector {
	var sel ComplexSelector
	combinator := CombinatorNone
	for {
		p.skipComments()
		sawSpace := p.skipWhitespace()
		p.skipComments()
		if p.eof() {
			return sel
		}
		switch p.current() {
		case ',', '{', '}':
			return sel
		case '>':
			p.advance()
			combinator = CombinatorChild
			continue
		case '+', '~':
			p.advance()
			sel.Unsupported = true
			combinator = CombinatorDescendant
			continue
		}
		if sawSpace && len(sel.Compounds) > 0 && combinator == CombinatorNone {
			combinator = CombinatorDescendant
		}
		simple, ok := p.parseSimpleSelector()
		if !ok {
			return sel
		}
		sel.Compounds = append(sel.Compounds, CompoundSelector{Selector: simple, Combinator: combinator})
		combinator = CombinatorNone
	}
}

func (p *Parser) parseSimpleSelector() (SimpleSelector, bool) {
	var s SimpleSelector
	parsed := false
	for !p.eof() {
		switch c := p.current(); {
		case c == '*':
			p.advance()
			s.TagName = "*"
			parsed = true
		case c == '#':
			p.advance()
			s.ID = p.parseIdentifier()
			parsed = true
		case c == '.':
			p.advance()
			s.Classes = append(s.Classes, p.parseIdentifier())
			parsed = true
		case c == '[':
			p.advance()
			if attr, ok := p.parseAttributeSelector(); ok {
				s.Attributes = append(s.Attributes, attr)
				parsed = true
			}
		case c == ':':
			p.advance()
			if !p.eof() && p.current() == ':' {
				p.advance()
			}
			name := p.parseIdentifier()
			if !p.eof() && p.current() == '(' {
				p.skipParens()
			}
			s.Pseudos = append(s.Pseudos, name)
			parsed = true
		case isIdentChar(c):
			s.TagName = strings.ToLower(p.parseIdentifier())
			parsed = true
		default:
			return s, parsed
		}
	}
	return s, parsed
}

func (p *Parser) parseAttributeSelector() (AttributeSelector, bool) {
	var attr AttributeSelector
	p.skipWhitespace()
	attr.Name = strings.ToLower(p.parseIdentifier())
	if attr.Name == "" {
		p.skipTo(']')
		if !p.eof() {
			p.advance()
		}
		return attr, false
	}
	p.skipWhitespace()
	if p.eof() {
		return attr, false
	}
	switch p.current() {
	case ']':
		p.advance()
		return attr, true
	case '~', '|', '^', '$', '*':
		attr.Operator = string(p.current()) + "="
		p.advance()
		if p.eof() || p.current() != '=' {
			p.skipTo(']')
			if !p.eof() {
				p.advance()
			}
			return attr, false
		}
		p.advance()
	case '=':
		attr.Operator = "="
		p.advance()
	default:
		p.skipTo(']')
		if !p.eof() {
			p.advance()
		}
		return attr, false
	}
	p.skipWhitespace()
	attr.Value = p.parseAttributeValue()
	p.skipWhitespace()
	if !p.eof() && p.current() == ']' {
		p.advance()
		return attr, true
	}
	p.skipTo(']')
	if !p.eof() {
		p.advance()
	}
	return attr, true
}

func (p *Parser) parseAttributeValue() string {
	if p.eof() {
		return ""
	}
	if q := p.current(); q == '"' || q == '\'' {
		p.advance()
		start := p.pos
		for !p.eof() && p.current() != q {
			p.advance()
		}
		val := p.input[start:p.pos]
		if !p.eof() {
			p.advance()
		}
		return val
	}
	start := p.pos
	for !p.eof() && p.current() != ']' && !isWhitespace(p.current()) {
		p.advance()
	}
	return p.input[start:p.pos]
}

// ParseDeclarations parses a bare declaration list, as found in an inline
// style attribute.
func ParseDeclarations(input string) []Declaration {
	p := NewParser(input)
	return p.parseDeclarations()
}

func (p *Parser) parseDeclarations() []Declaration {
	var decls []Declaration
	for {
		p.skipWhitespaceAndComments()
		if p.eof() {
			return decls
		}
		if p.current() == '}' {
			p.advance()
			return decls
		}
		if p.current() == ';' {
			p.advance()
			continue
		}
		prop := p.parsePropertyName()
		p.skipWhitespaceAndComments()
		if p.eof() || p.current() != ':' {
			p.skipTo(';', '}')
			continue
		}
		p.advance() // ':'
		value, important := p.parseValue()
		if prop != "" && value != "" {
			decls = append(decls, Declaration{
				Property:  Property(strings.ToLower(prop)),
				Value:     Value(value),
				Important: important,
			})
		}
	}
}

// parsePropertyName accepts ordinary property names and custom properties
// with their leading double dash.
func (p *Parser) parsePropertyName() string {
	start := p.pos
	for !p.eof() && (isIdentChar(p.current()) || p.current() == '-') {
		p.advance()
	}
	return p.input[start:p.pos]
}

// parseValue reads until ';' or '}' at paren depth zero, keeping quoted
// strings and function arguments intact, and strips a trailing !important.
func (p *Parser) parseValue() (string, bool) {
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.current()
		if c == '"' || c == '\'' {
			p.skipQuoted(c)
			continue
		}
		if c == '(' {
			depth++
		}
		if c == ')' && depth > 0 {
			depth--
		}
		if depth == 0 && (c == ';' || c == '}') {
			break
		}
		p.advance()
	}
	raw := strings.TrimSpace(p.input[start:p.pos])
	important := false
	if i := strings.LastIndex(strings.ToLower(raw), "!important"); i >= 0 {
		important = true
		raw = strings.TrimSpace(raw[:i])
	}
	return raw, important
}

// -- lexer helpers --

func (p *Parser) eof() bool     { return p.pos >= len(p.input) }
func (p *Parser) current() byte { return p.input[p.pos] }
func (p *Parser) advance()      { p.pos++ }

func (p *Parser) skipWhitespace() bool {
	skipped := false
	for !p.eof() && isWhitespace(p.current()) {
		p.advance()
		skipped = true
	}
	return skipped
}

func (p *Parser) skipComments() {
	for strings.HasPrefix(p.input[p.pos:], "/*") {
		end := strings.Index(p.input[p.pos+2:], "*/")
		if end < 0 {
			p.pos = len(p.input)
			return
		}
		p.pos += 2 + end + 2
	}
}

func (p *Parser) skipWhitespaceAndComments() {
	for {
		before := p.pos
		p.skipWhitespace()
		p.skipComments()
		if p.pos == before {
			return
		}
	}
}

func (p *Parser) skipTo(stops ...byte) {
	for !p.eof() {
		c := p.current()
		for _, s := range stops {
			if c == s {
				return
			}
		}
		if c == '"' || c == '\'' {
			p.skipQuoted(c)
			continue
		}
		p.advance()
	}
}

// skipBlock consumes a balanced {...} block, the opening brace included.
func (p *Parser) skipBlock() {
	depth := 0
	for !p.eof() {
		switch p.current() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case '"', '\'':
			p.skipQuoted(p.current())
			continue
		}
		p.advance()
	}
}

func (p *Parser) skipParens() {
	depth := 0
	for !p.eof() {
		switch p.current() {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) skipQuoted(q byte) {
	p.advance()
	for !p.eof() {
		if p.current() == '\\' {
			p.advance()
			if !p.eof() {
				p.advance()
			}
			continue
		}
		if p.current() == q {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.current()) {
		p.advance()
	}
	return p.input[start:p.pos]
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == '_'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
