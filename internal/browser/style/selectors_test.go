// internal/browser/style/selectors_test.go
package style_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
	"github.com/browsyhq/browsy-core/internal/browser/style"
)

const selectorDoc = `
<body>
  <nav id="menu" class="top primary">
    <ul>
      <li><a id="home" href="/home" class="link active">Home</a></li>
    </ul>
  </nav>
  <div id="content">
    <p id="para" data-kind="intro lead">Text</p>
    <input id="cb" type="checkbox">
  </div>
</body>
`

func matchTarget(t *testing.T, selector, id string) bool {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(selectorDoc))
	require.NoError(t, err)

	target := doc.Root.Find(func(n *dom.Node) bool { return n.Attr("id") == id })
	require.NotNil(t, target, "target %q not in fixture", id)

	sheet := parser.NewParser(selector + " { color: red; }").Parse()
	require.Len(t, sheet.Rules, 1)
	require.NotEmpty(t, sheet.Rules[0].Selectors)

	return style.NewEngine().Matches(sheet.Rules[0].Selectors[0], target)
}

func TestSelectorMatching(t *testing.T) {
	tests := []struct {
		selector string
		id       string
		want     bool
	}{
		{"a", "home", true},
		{"div", "home", false},
		{"*", "para", true},
		{"#home", "home", true},
		{"#other", "home", false},
		{".link", "home", true},
		{".link.active", "home", true},
		{".link.missing", "home", false},
		{"nav a", "home", true},
		{"div a", "home", false},
		{"ul > li > a", "home", true},
		{"nav > a", "home", false},
		{"nav.primary a.link", "home", true},
		{"[data-kind]", "para", true},
		{"[data-kind~=lead]", "para", true},
		{"[data-kind~=tail]", "para", false},
		{"[data-kind^=intro]", "para", true},
		{"[data-kind$=lead]", "para", true},
		{"[data-kind*=ro-le]", "para", false},
		{"input[type=checkbox]", "cb", true},
		{"input[type=text]", "cb", false},
		{"a:hover", "home", true}, // pseudo-classes impose no condition
	}
	for _, tt := range tests {
		t.Run(tt.selector+"/"+tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, matchTarget(t, tt.selector, tt.id))
		})
	}
}

func TestSiblingCombinatorNeverMatches(t *testing.T) {
	doc, err := dom.Parse(strings.NewReader(selectorDoc))
	require.NoError(t, err)
	target := doc.Root.Find(func(n *dom.Node) bool { return n.Attr("id") == "para" })
	require.NotNil(t, target)

	sheet := parser.NewParser("nav + div p { color: red; }").Parse()
	require.Len(t, sheet.Rules, 1)
	sel := sheet.Rules[0].Selectors[0]
	assert.True(t, sel.Unsupported)
}
