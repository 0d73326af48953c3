// internal/spatial/generator_test.go
package spatial_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/layout"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
	"github.com/browsyhq/browsy-core/internal/browser/style"
	"github.com/browsyhq/browsy-core/internal/spatial"
)

// renderEls runs the whole pipeline over the markup and returns the emitted
// element list.
func renderEls(t *testing.T, htmlSrc, baseURL string) []schemas.Element {
	t.Helper()

	doc, err := dom.Parse(strings.NewReader(htmlSrc))
	require.NoError(t, err)

	engine := style.NewEngine()
	engine.SetViewport(1280, 720)
	for _, css := range doc.Styles {
		engine.AddAuthorSheet(parser.NewParser(css).Parse())
	}
	styled := engine.BuildTree(doc.Root, nil)
	require.NotNil(t, styled)

	box := layout.NewEngine(1280, 720).BuildAndLayoutTree(styled)
	bounds := layout.CollectBounds(box)

	return spatial.NewGenerator(1280, 720, baseURL).Generate(styled, bounds)
}

func findByTag(els []schemas.Element, tag string) *schemas.Element {
	for i := range els {
		if els[i].Tag == tag {
			return &els[i]
		}
	}
	return nil
}

func findByText(els []schemas.Element, text string) *schemas.Element {
	for i := range els {
		if els[i].Text == text {
			return &els[i]
		}
	}
	return nil
}

func TestGenerateAssignsSequentialIDs(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <h1>Title</h1>
	  <p>Paragraph</p>
	  <a href="/x">Link</a>
	</body>
	`, "")

	require.Len(t, els, 3)
	for i, el := range els {
		assert.Equal(t, uint32(i+1), el.ID)
	}
	assert.Equal(t, "h1", els[0].Tag)
	assert.Equal(t, "p", els[1].Tag)
	assert.Equal(t, "a", els[2].Tag)
}

func TestGenerateSkipsHeadAndScripts(t *testing.T) {
	els := renderEls(t, `
	<html><head><title>Page</title><meta charset="utf-8"></head>
	<body><script>var a;</script><noscript>enable js</noscript><p>real</p></body></html>
	`, "")

	require.Len(t, els, 1)
	assert.Equal(t, "p", els[0].Tag)
	assert.Equal(t, "real", els[0].Text)
}

func TestGenerateLinkFields(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <a href="/docs/start">Start</a>
	  <a href="#section">Jump</a>
	  <a href="mailto:x@example.com">Mail</a>
	</body>
	`, "https://example.com/a/b")

	start := findByText(els, "Start")
	require.NotNil(t, start)
	assert.Equal(t, "link", start.Role)
	assert.Equal(t, "https://example.com/docs/start", start.Href)

	// Fragment and mail links stay verbatim.
	assert.Equal(t, "#section", findByText(els, "Jump").Href)
	assert.Equal(t, "mailto:x@example.com", findByText(els, "Mail").Href)
}

func TestGenerateInputFields(t *testing.T) {
	els := renderEls(t, `
	<body><form>
	  <label for="em">Email address</label>
	  <input id="em" type="email" name="email" placeholder="you@host" required>
	  <input type="checkbox" name="tos" checked>
	  <input type="submit" value="Sign up">
	</form></body>
	`, "")

	email := findByTag(els, "input")
	require.NotNil(t, email)
	assert.Equal(t, "email", email.InputType)
	assert.Equal(t, "textbox", email.Role)
	assert.Equal(t, "email", email.Name)
	assert.Equal(t, "you@host", email.Ph)
	assert.True(t, email.Required)
	assert.Equal(t, "Email address", email.Label)

	var checkbox, submit *schemas.Element
	for i := range els {
		switch els[i].InputType {
		case "checkbox":
			checkbox = &els[i]
		case "submit":
			submit = &els[i]
		}
	}
	require.NotNil(t, checkbox)
	assert.True(t, checkbox.Checked)
	assert.Equal(t, "checkbox", checkbox.Role)

	require.NotNil(t, submit)
	assert.Equal(t, "button", submit.Role)
	// Submit buttons surface their value as text, not as a form value.
	assert.Equal(t, "Sign up", submit.Text)
	assert.Empty(t, submit.Val)
}

func TestGenerateEnclosingLabel(t *testing.T) {
	els := renderEls(t, `
	<body><label>Remember me <input type="checkbox" name="rm"></label></body>
	`, "")

	cb := findByTag(els, "input")
	require.NotNil(t, cb)
	assert.Equal(t, "Remember me", cb.Label)
}

func TestGenerateTypeDefaultsToText(t *testing.T) {
	els := renderEls(t, `<body><input name="q"></body>`, "")
	in := findByTag(els, "input")
	require.NotNil(t, in)
	assert.Equal(t, "text", in.InputType)
	assert.Equal(t, "textbox", in.Role)
}

func TestGenerateSelectEmitsOptions(t *testing.T) {
	els := renderEls(t, `
	<body><select name="country">
	  <option value="de">Germany</option>
	  <option value="fr" selected>France</option>
	</select></body>
	`, "")

	sel := findByTag(els, "select")
	require.NotNil(t, sel)
	assert.Equal(t, "combobox", sel.Role)

	var opts []schemas.Element
	for _, el := range els {
		if el.Tag == "option" {
			opts = append(opts, el)
		}
	}
	require.Len(t, opts, 2)
	assert.Equal(t, "Germany", opts[0].Text)
	assert.Equal(t, "de", opts[0].Val)
	assert.False(t, opts[0].Selected)
	assert.True(t, opts[1].Selected)
}

func TestGenerateButtonTextFallbacks(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <button aria-label="Close dialog"></button>
	  <button title="Settings"></button>
	  <button><img src="x.png" alt="Search"></button>
	</body>
	`, "")

	assert.NotNil(t, findByText(els, "Close dialog"))
	assert.NotNil(t, findByText(els, "Settings"))
	assert.NotNil(t, findByText(els, "Search"))
}

func TestGenerateHiddenElementsKept(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <button hidden>Ghost</button>
	  <button aria-hidden="true">Faint</button>
	  <div style="display: none"><button>Pruned</button></div>
	  <button>Real</button>
	</body>
	`, "")

	ghost := findByText(els, "Ghost")
	require.NotNil(t, ghost)
	assert.True(t, ghost.Hidden)
	assert.Equal(t, [4]int{0, 0, 0, 0}, ghost.B)

	faint := findByText(els, "Faint")
	require.NotNil(t, faint)
	assert.True(t, faint.Hidden)

	pruned := findByText(els, "Pruned")
	require.NotNil(t, pruned)
	assert.True(t, pruned.Hidden)

	real := findByText(els, "Real")
	require.NotNil(t, real)
	assert.False(t, real.Hidden)
	assert.Greater(t, real.B[2], 0)
}

func TestGenerateVisibilityHiddenKept(t *testing.T) {
	els := renderEls(t, `
	<body><p style="visibility: hidden">Invisible</p></body>
	`, "")

	p := findByText(els, "Invisible")
	require.NotNil(t, p)
	assert.True(t, p.Hidden)
}

func TestGenerateLandmarks(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <nav><a href="/a">A</a></nav>
	  <main><p>content</p></main>
	  <section><p>anon</p></section>
	  <section aria-label="Pricing"><p>named</p></section>
	  <footer><p>foot</p></footer>
	</body>
	`, "")

	roles := make(map[string]int)
	for _, el := range els {
		if el.Role != "" {
			roles[el.Role]++
		}
	}
	assert.Equal(t, 1, roles["navigation"])
	assert.Equal(t, 1, roles["main"])
	assert.Equal(t, 1, roles["contentinfo"])
	// Only the labelled section is a region landmark.
	assert.Equal(t, 1, roles["region"])

	// Landmark children are still walked.
	assert.NotNil(t, findByText(els, "A"))
	assert.NotNil(t, findByText(els, "anon"))
}

func TestGenerateTextCollapsing(t *testing.T) {
	els := renderEls(t, `
	<body><p>Hello <b>bold</b> world</p></body>
	`, "")

	// The paragraph absorbs its inline descendants into one entry.
	require.Len(t, els, 1)
	assert.Equal(t, "Hello bold world", els[0].Text)
}

func TestGenerateNestedLinkInsideParagraph(t *testing.T) {
	els := renderEls(t, `
	<body><p>Read the <a href="/docs">manual</a> first</p></body>
	`, "")

	// The paragraph text includes the link text, and the link is still
	// separately addressable.
	p := findByTag(els, "p")
	require.NotNil(t, p)
	assert.Equal(t, "Read the manual first", p.Text)

	link := findByTag(els, "a")
	require.NotNil(t, link)
	assert.Equal(t, "manual", link.Text)
}

func TestGenerateWrapperWithSoleInteractiveChild(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <li>3 unread <a href="/inbox">Inbox</a></li>
	  <div><button>Only</button></div>
	</body>
	`, "")

	// The wrapper's own text differs from the child's, so both surface.
	assert.NotNil(t, findByText(els, "3 unread"))
	assert.NotNil(t, findByText(els, "Inbox"))

	// A bare wrapper contributes nothing of its own.
	only := findByText(els, "Only")
	require.NotNil(t, only)
	assert.Equal(t, "button", only.Tag)
	assert.Nil(t, findByTag(els, "div"))
}

func TestGenerateImgRequiresAlt(t *testing.T) {
	els := renderEls(t, `
	<body><img src="a.png" alt="Logo" style="width: 24px; height: 24px"><img src="b.png" style="width: 24px; height: 24px"></body>
	`, "")

	require.Len(t, els, 1)
	assert.Equal(t, "img", els[0].Tag)
	assert.Equal(t, "Logo", els[0].Text)
	assert.Equal(t, "img", els[0].Role)
}

func TestGenerateSVGTitle(t *testing.T) {
	els := renderEls(t, `
	<body><svg style="width: 32px; height: 32px"><title>Chart</title><rect/></svg><svg style="width: 32px; height: 32px"><rect/></svg></body>
	`, "")

	require.Len(t, els, 1)
	assert.Equal(t, "Chart", els[0].Text)
	assert.Equal(t, "img", els[0].Role)
}

func TestGenerateAlertClassification(t *testing.T) {
	els := renderEls(t, `
	<body>
	  <div role="alert">Login failed</div>
	  <p class="alert-error">Wrong password</p>
	  <p class="msg_success">Saved</p>
	  <p class="error">bare word ignored</p>
	</body>
	`, "")

	assert.Equal(t, "alert", findByText(els, "Login failed").AlertType)
	assert.Equal(t, "error", findByText(els, "Wrong password").AlertType)
	assert.Equal(t, "success", findByText(els, "Saved").AlertType)
	assert.Empty(t, findByText(els, "bare word ignored").AlertType)
}

func TestGenerateExplicitRoleWins(t *testing.T) {
	els := renderEls(t, `
	<body><div role="button" tabindex="0">Do it</div></body>
	`, "")

	el := findByText(els, "Do it")
	require.NotNil(t, el)
	assert.Equal(t, "button", el.Role)
}

func TestPositionSuffix(t *testing.T) {
	vpW, vpH := 1200.0, 900.0
	tests := []struct {
		name string
		b    [4]int
		want string
	}{
		{"top left", [4]int{0, 0, 100, 100}, "@top-L"},
		{"center", [4]int{550, 400, 100, 100}, "@mid"},
		{"bottom right", [4]int{1100, 700, 100, 100}, "@bot-R"},
		{"below fold", [4]int{0, 950, 100, 100}, "@below"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spatial.PositionSuffix(schemas.Element{B: tt.b}, vpW, vpH)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSizeHint(t *testing.T) {
	assert.Equal(t, "full", spatial.SizeHint(schemas.Element{B: [4]int{0, 0, 1200, 20}}, 1280))
	assert.Equal(t, "wide", spatial.SizeHint(schemas.Element{B: [4]int{0, 0, 700, 20}}, 1280))
	assert.Equal(t, "narrow", spatial.SizeHint(schemas.Element{B: [4]int{0, 0, 60, 20}}, 1280))
	assert.Empty(t, spatial.SizeHint(schemas.Element{B: [4]int{0, 0, 300, 20}}, 1280))
}
