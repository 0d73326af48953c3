// internal/spatial/overlay_test.go
package spatial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/api/schemas"
	"github.com/browsyhq/browsy-core/internal/spatial"
)

func overlaySnapshot() *schemas.SpatialDOM {
	d := &schemas.SpatialDOM{
		VP: [2]float64{1280, 720},
		Els: []schemas.Element{
			{ID: 1, Tag: "input", InputType: "text", Name: "user", B: [4]int{8, 8, 173, 21}},
			{ID: 2, Tag: "input", InputType: "checkbox", Name: "rm", B: [4]int{8, 40, 13, 13}},
			{ID: 3, Tag: "select", Name: "country", B: [4]int{8, 70, 173, 21}},
			{ID: 4, Tag: "option", Text: "Germany", Val: "de", B: [4]int{8, 70, 173, 21}},
			{ID: 5, Tag: "option", Text: "France", Val: "fr", Selected: true, B: [4]int{8, 70, 173, 21}},
			{ID: 6, Tag: "button", Text: "Go", B: [4]int{8, 100, 60, 21}},
			{ID: 7, Tag: "textarea", Name: "bio", B: [4]int{8, 130, 300, 66}},
		},
	}
	d.RebuildIndex()
	return d
}

func TestOverlaySetText(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()

	require.NoError(t, o.SetText(d, 1, "alice"))
	require.NoError(t, o.SetText(d, 7, "hello"))

	out := o.Apply(d)
	el, err := out.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", el.Val)

	bio, err := out.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "hello", bio.Val)

	// The source snapshot is untouched.
	orig, err := d.Get(1)
	require.NoError(t, err)
	assert.Empty(t, orig.Val)
}

func TestOverlaySetTextRejectsWrongKind(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()

	err := o.SetText(d, 2, "x")
	assert.ErrorIs(t, err, schemas.ErrWrongElementKind)

	err = o.SetText(d, 6, "x")
	assert.ErrorIs(t, err, schemas.ErrWrongElementKind)

	err = o.SetText(d, 99, "x")
	assert.ErrorIs(t, err, schemas.ErrElementNotFound)
}

func TestOverlaySetChecked(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()

	require.NoError(t, o.SetChecked(d, 2, true))
	out := o.Apply(d)
	el, err := out.Get(2)
	require.NoError(t, err)
	assert.True(t, el.Checked)

	// And toggling back off.
	require.NoError(t, o.SetChecked(d, 2, false))
	el, err = o.Apply(d).Get(2)
	require.NoError(t, err)
	assert.False(t, el.Checked)

	assert.ErrorIs(t, o.SetChecked(d, 1, true), schemas.ErrWrongElementKind)
}

func TestOverlaySelect(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()

	require.NoError(t, o.Select(d, 3, "de"))
	out := o.Apply(d)

	sel, err := out.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "de", sel.Val)

	// The selected flag migrates to the matching option.
	de, err := out.Get(4)
	require.NoError(t, err)
	fr, err2 := out.Get(5)
	require.NoError(t, err2)
	assert.True(t, de.Selected)
	assert.False(t, fr.Selected)
}

func TestOverlaySelectByText(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()
	require.NoError(t, o.Select(d, 3, "Germany"))
}

func TestOverlaySelectRejectsUnknownOption(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()

	assert.ErrorIs(t, o.Select(d, 3, "xx"), schemas.ErrInvalidValue)
	assert.ErrorIs(t, o.Select(d, 1, "de"), schemas.ErrWrongElementKind)
}

func TestOverlayReset(t *testing.T) {
	d := overlaySnapshot()
	o := spatial.NewOverlay()

	require.NoError(t, o.SetText(d, 1, "alice"))
	o.Reset()

	el, err := o.Apply(d).Get(1)
	require.NoError(t, err)
	assert.Empty(t, el.Val)
}

func TestOverlayRoleBasedControls(t *testing.T) {
	d := &schemas.SpatialDOM{
		VP: [2]float64{1280, 720},
		Els: []schemas.Element{
			{ID: 1, Tag: "div", Role: "textbox", B: [4]int{8, 8, 200, 21}},
			{ID: 2, Tag: "div", Role: "switch", B: [4]int{8, 40, 40, 21}},
		},
	}
	d.RebuildIndex()
	o := spatial.NewOverlay()

	assert.NoError(t, o.SetText(d, 1, "typed"))
	assert.NoError(t, o.SetChecked(d, 2, true))
}
