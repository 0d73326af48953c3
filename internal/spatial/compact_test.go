// internal/spatial/compact_test.go
package spatial_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/spatial"
)

func compactSnapshot() *schemas.SpatialDOM {
	d := &schemas.SpatialDOM{
		URL:   "https://example.com/login",
		Title: "Sign in",
		VP:    [2]float64{1280, 720},
		Els: []schemas.Element{
			{ID: 1, Tag: "h1", Role: "heading", Text: "Sign in", B: [4]int{8, 8, 200, 38}},
			{ID: 2, Tag: "input", InputType: "email", Name: "email", Ph: "you@host", Required: true, B: [4]int{8, 60, 173, 21}},
			{ID: 3, Tag: "input", InputType: "password", Name: "pw", B: [4]int{8, 90, 173, 21}},
			{ID: 4, Tag: "input", InputType: "checkbox", Name: "rm", Checked: true, B: [4]int{8, 120, 13, 13}},
			{ID: 5, Tag: "button", Text: "Sign in", B: [4]int{8, 150, 80, 21}},
			{ID: 6, Tag: "a", Text: "Help", Href: "https://example.com/help", B: [4]int{8, 180, 40, 14}},
			{ID: 7, Tag: "button", Text: "Sign in", Hidden: true, B: [4]int{0, 0, 0, 0}},
		},
	}
	d.RebuildIndex()
	return d
}

func TestToCompactHeader(t *testing.T) {
	out := spatial.ToCompact(compactSnapshot())
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)

	assert.Equal(t, "title: Sign in", lines[0])
	assert.Equal(t, "url: https://example.com/login", lines[1])
	assert.Equal(t, "vp: 1280x720", lines[2])
	assert.Equal(t, "els: 7", lines[3])
	assert.Equal(t, "---", lines[4])
}

func TestToCompactElementLines(t *testing.T) {
	out := spatial.ToCompact(compactSnapshot())

	assert.Contains(t, out, `[1:h1 "Sign in"]`)
	// Non-text input types are shown; placeholder doubles as text; required
	// gets the star.
	assert.Contains(t, out, `[2:input:email [email] "you@host" [*]`)
	assert.Contains(t, out, `[3:input:password [pw]`)
	assert.Contains(t, out, `[4:input:checkbox [rm] [v]`)
	assert.Contains(t, out, `->https://example.com/help`)
	// Hidden elements carry the bang.
	assert.Contains(t, out, "[!7:button")
}

func TestToCompactDuplicateDisambiguation(t *testing.T) {
	out := spatial.ToCompact(compactSnapshot())

	// The two "Sign in" buttons share (tag, text) and get position suffixes;
	// the unique heading does not.
	assert.Contains(t, out, `[5:button "Sign in" @top-L]`)
	assert.Contains(t, out, `[!7:button "Sign in" @top-L]`)
	assert.Contains(t, out, `[1:h1 "Sign in"]`)
	assert.NotContains(t, out, `[1:h1 "Sign in" @`)
}

func TestToCompactTextInputOmitsType(t *testing.T) {
	d := &schemas.SpatialDOM{
		VP:  [2]float64{1280, 720},
		Els: []schemas.Element{{ID: 1, Tag: "input", InputType: "text", Name: "q", B: [4]int{0, 0, 173, 21}}},
	}
	out := spatial.ToCompact(d)
	assert.Contains(t, out, "[1:input [q]")
	assert.NotContains(t, out, "input:text")
}

func TestToCompactSizeHintOnlyForControls(t *testing.T) {
	d := &schemas.SpatialDOM{
		VP: [2]float64{1280, 720},
		Els: []schemas.Element{
			{ID: 1, Tag: "input", InputType: "search", Name: "q", B: [4]int{0, 0, 1200, 21}},
			{ID: 2, Tag: "p", Text: "Wide text", B: [4]int{0, 30, 1200, 20}},
		},
	}
	out := spatial.ToCompact(d)
	assert.Contains(t, out, "[1:input:search [q] full]")
	assert.NotContains(t, out, `"Wide text" full`)
}

func TestToCompactValue(t *testing.T) {
	d := &schemas.SpatialDOM{
		VP:  [2]float64{1280, 720},
		Els: []schemas.Element{{ID: 1, Tag: "input", InputType: "text", Val: "bob", B: [4]int{0, 0, 173, 21}}},
	}
	out := spatial.ToCompact(d)
	assert.Contains(t, out, "[=bob]")
}

func TestToCompactDelta(t *testing.T) {
	delta := &schemas.DeltaDOM{
		VP:      [2]float64{1280, 720},
		Removed: []uint32{3, 9},
		Changed: []schemas.Element{
			{ID: 4, Tag: "p", Text: "Welcome back", B: [4]int{8, 8, 300, 20}},
		},
	}
	out := spatial.ToCompactDelta(delta)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-[3,9]", lines[0])
	assert.Equal(t, `[+4:p "Welcome back"]`, lines[1])
}

func TestToCompactDeltaEmpty(t *testing.T) {
	out := spatial.ToCompactDelta(&schemas.DeltaDOM{VP: [2]float64{1280, 720}})
	assert.Empty(t, out)
}
