// internal/browser/layout/layout_test.go
package layout_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browsyhq/browsy-core/internal/browser/dom"
	"github.com/browsyhq/browsy-core/internal/browser/layout"
	"github.com/browsyhq/browsy-core/internal/browser/parser"
	"github.com/browsyhq/browsy-core/internal/browser/style"
)

// setupLayout runs the full style and layout pipeline over the markup and
// returns the document plus the laid-out box tree.
func setupLayout(t *testing.T, htmlSrc, css string, vpW, vpH float64) (*dom.Document, *layout.LayoutBox) {
	t.Helper()

	doc, err := dom.Parse(strings.NewReader(htmlSrc))
	require.NoError(t, err)

	styleEngine := style.NewEngine()
	styleEngine.SetViewport(vpW, vpH)
	if css != "" {
		styleEngine.AddAuthorSheet(parser.NewParser(css).Parse())
	}
	styled := styleEngine.BuildTree(doc.Root, nil)
	require.NotNil(t, styled)

	root := layout.NewEngine(vpW, vpH).BuildAndLayoutTree(styled)
	require.NotNil(t, root)
	return doc, root
}

func geometry(t *testing.T, doc *dom.Document, root *layout.LayoutBox, id string) layout.Rect {
	t.Helper()
	rect, err := layout.GetElementGeometry(doc, root, `//*[@id='`+id+`']`)
	require.NoError(t, err, "geometry of #%s", id)
	return rect
}

func TestBlockStackingAndMarginCollapsing(t *testing.T) {
	html := `<div id="a"></div><div id="b"></div>`
	css := `
	body { margin: 0; }
	#a { height: 50px; margin-bottom: 30px; }
	#b { height: 40px; margin-top: 20px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	a := geometry(t, doc, root, "a")
	b := geometry(t, doc, root, "b")

	assert.InDelta(t, 0.0, a.Y, 0.1)
	assert.InDelta(t, 50.0, a.Height, 0.1)
	// Adjacent margins collapse to max(30, 20) = 30.
	assert.InDelta(t, 80.0, b.Y, 0.1)
	// Auto widths fill the containing block.
	assert.InDelta(t, 600.0, a.Width, 0.1)
	assert.InDelta(t, 600.0, b.Width, 0.1)
}

func TestBodyMarginDefault(t *testing.T) {
	doc, root := setupLayout(t, `<div id="x" style="height: 10px"></div>`, "", 600, 400)
	x := geometry(t, doc, root, "x")
	assert.InDelta(t, 8.0, x.X, 0.1)
	assert.InDelta(t, 8.0, x.Y, 0.1)
	assert.InDelta(t, 584.0, x.Width, 0.1)
}

func TestPaddingAndBorder(t *testing.T) {
	html := `<div id="box"></div>`
	css := `
	body { margin: 0; }
	#box { width: 200px; padding: 10px; border: 5px solid black; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	box := geometry(t, doc, root, "box")
	// Border box: 200 content + 2x10 padding + 2x5 border.
	assert.InDelta(t, 230.0, box.Width, 0.1)
	assert.InDelta(t, 30.0, box.Height, 0.1)
	assert.InDelta(t, 0.0, box.X, 0.1)
}

func TestBorderBoxSizing(t *testing.T) {
	html := `<div id="box"></div>`
	css := `
	body { margin: 0; }
	#box { width: 200px; height: 100px; padding: 10px; border: 5px solid; box-sizing: border-box; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	box := geometry(t, doc, root, "box")
	assert.InDelta(t, 200.0, box.Width, 0.1)
	assert.InDelta(t, 100.0, box.Height, 0.1)
}

func TestAutoMarginCentering(t *testing.T) {
	html := `<div id="c"></div>`
	css := `
	body { margin: 0; }
	#c { width: 100px; height: 10px; margin: 0 auto; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	c := geometry(t, doc, root, "c")
	assert.InDelta(t, 250.0, c.X, 0.1)
}

func TestPercentageWidth(t *testing.T) {
	html := `<div id="outer"><div id="inner"></div></div>`
	css := `
	body { margin: 0; }
	#outer { width: 400px; }
	#inner { width: 50%; height: 10px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	inner := geometry(t, doc, root, "inner")
	assert.InDelta(t, 200.0, inner.Width, 0.1)
}

func TestInlineTextLineBoxes(t *testing.T) {
	html := `<p id="one">hello</p><p id="wrap">aaaaaaaaaaaaaaaaaaaa</p>`
	css := `
	body { margin: 0; width: 60px; }
	p { margin: 0; font-size: 10px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	one := geometry(t, doc, root, "one")
	wrap := geometry(t, doc, root, "wrap")

	// 10px font, 1.2 line height: one line is 12px tall.
	assert.InDelta(t, 12.0, one.Height, 0.1)
	// 20 chars x 6px = 120px of text in a 60px line: two lines.
	assert.InDelta(t, 24.0, wrap.Height, 0.1)
}

func TestFlexRowJustifyAndAlign(t *testing.T) {
	html := `
	<div id="container">
	  <div id="item1"></div>
	  <div id="item2"></div>
	  <div id="item3"></div>
	</div>
	`
	css := `
	body { margin: 0; }
	#container {
		display: flex;
		width: 500px;
		height: 100px;
		justify-content: space-between;
		align-items: center;
	}
	#item1 { width: 50px; height: 50px; }
	#item2 { width: 50px; height: 100px; }
	#item3 { width: 50px; height: 30px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	g1 := geometry(t, doc, root, "item1")
	g2 := geometry(t, doc, root, "item2")
	g3 := geometry(t, doc, root, "item3")

	// 500 - 150 used = 350 free, split into two 175px gaps.
	assert.InDelta(t, 0.0, g1.X, 0.1)
	assert.InDelta(t, 225.0, g2.X, 0.1)
	assert.InDelta(t, 450.0, g3.X, 0.1)

	// Cross centering against the 100px line.
	assert.InDelta(t, 25.0, g1.Y, 0.1)
	assert.InDelta(t, 0.0, g2.Y, 0.1)
	assert.InDelta(t, 35.0, g3.Y, 0.1)
}

func TestFlexGrow(t *testing.T) {
	html := `<div id="row"><div id="a"></div><div id="b"></div></div>`
	css := `
	body { margin: 0; }
	#row { display: flex; width: 600px; }
	#a { flex: 1; height: 10px; }
	#b { flex: 2; height: 10px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	a := geometry(t, doc, root, "a")
	b := geometry(t, doc, root, "b")
	assert.InDelta(t, 200.0, a.Width, 0.1)
	assert.InDelta(t, 400.0, b.Width, 0.1)
	assert.InDelta(t, 200.0, b.X, 0.1)
}

func TestFlexShrink(t *testing.T) {
	html := `<div id="row"><div id="a"></div><div id="b"></div></div>`
	css := `
	body { margin: 0; }
	#row { display: flex; width: 300px; }
	#a { width: 200px; height: 10px; }
	#b { width: 200px; height: 10px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	// 400px of items in a 300px row shrink equally (same base, same factor).
	a := geometry(t, doc, root, "a")
	b := geometry(t, doc, root, "b")
	assert.InDelta(t, 150.0, a.Width, 0.1)
	assert.InDelta(t, 150.0, b.Width, 0.1)
	assert.InDelta(t, 150.0, b.X, 0.1)
}

func TestFlexColumn(t *testing.T) {
	html := `<div id="col"><div id="a"></div><div id="b"></div></div>`
	css := `
	body { margin: 0; }
	#col { display: flex; flex-direction: column; width: 200px; }
	#a { height: 40px; }
	#b { height: 60px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	a := geometry(t, doc, root, "a")
	b := geometry(t, doc, root, "b")
	assert.InDelta(t, 0.0, a.Y, 0.1)
	assert.InDelta(t, 40.0, b.Y, 0.1)
	// Column items stretch to the container width by default.
	assert.InDelta(t, 200.0, a.Width, 0.1)
}

func TestGridTemplateColumns(t *testing.T) {
	html := `
	<div id="grid">
	  <div id="c1"></div>
	  <div id="c2"></div>
	  <div id="c3"></div>
	</div>
	`
	css := `
	body { margin: 0; }
	#grid { display: grid; grid-template-columns: 100px 1fr 2fr; width: 640px; }
	#c1, #c2, #c3 { height: 20px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	c1 := geometry(t, doc, root, "c1")
	c2 := geometry(t, doc, root, "c2")
	c3 := geometry(t, doc, root, "c3")

	// 640 - 100 fixed = 540 free; 1fr = 180, 2fr = 360.
	assert.InDelta(t, 100.0, c1.Width, 0.1)
	assert.InDelta(t, 180.0, c2.Width, 0.1)
	assert.InDelta(t, 360.0, c3.Width, 0.1)
	assert.InDelta(t, 0.0, c1.X, 0.1)
	assert.InDelta(t, 100.0, c2.X, 0.1)
	assert.InDelta(t, 280.0, c3.X, 0.1)
}

func TestGridAutoPlacementWraps(t *testing.T) {
	html := `
	<div id="grid">
	  <div id="c1"></div><div id="c2"></div><div id="c3"></div>
	</div>
	`
	css := `
	body { margin: 0; }
	#grid { display: grid; grid-template-columns: repeat(2, 100px); width: 200px; }
	#c1, #c2, #c3 { height: 30px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	c1 := geometry(t, doc, root, "c1")
	c3 := geometry(t, doc, root, "c3")

	assert.InDelta(t, 0.0, c1.Y, 0.1)
	// Third item wraps to the second row below the 30px first row.
	assert.InDelta(t, 30.0, c3.Y, 0.1)
	assert.InDelta(t, 0.0, c3.X, 0.1)
}

func TestAbsolutePositioning(t *testing.T) {
	html := `<div id="rel"><div id="abs"></div></div>`
	css := `
	body { margin: 0; }
	#rel { position: relative; width: 300px; height: 200px; margin-left: 50px; }
	#abs { position: absolute; top: 20px; left: 30px; width: 40px; height: 40px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	abs := geometry(t, doc, root, "abs")
	// Offsets resolve against the positioned ancestor's content box.
	assert.InDelta(t, 80.0, abs.X, 0.1)
	assert.InDelta(t, 20.0, abs.Y, 0.1)
	assert.InDelta(t, 40.0, abs.Width, 0.1)
	assert.InDelta(t, 40.0, abs.Height, 0.1)
}

func TestFixedPositioning(t *testing.T) {
	html := `<div id="filler" style="height: 900px"></div><div id="f"></div>`
	css := `
	body { margin: 0; }
	#f { position: fixed; top: 10px; right: 10px; width: 100px; height: 20px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	f := geometry(t, doc, root, "f")
	assert.InDelta(t, 490.0, f.X, 0.1)
	assert.InDelta(t, 10.0, f.Y, 0.1)
}

func TestAbsoluteRightBottomAnchoring(t *testing.T) {
	html := `<div id="rel"><div id="rb"></div><div id="stretch"></div></div>`
	css := `
	body { margin: 0; }
	#rel { position: relative; width: 400px; height: 300px; }
	#rb { position: absolute; right: 20px; bottom: 10px; width: 100px; height: 50px; padding: 5px; }
	#stretch { position: absolute; top: 0; left: 30px; right: 50px; height: 10px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	rb := geometry(t, doc, root, "rb")
	// The border box spans 100 + 2*5 padding; its right edge sits 20px in
	// from the 400px containing block: 400 - 20 - 110 = 270.
	assert.InDelta(t, 270.0, rb.X, 0.1)
	// Bottom anchoring: 300 - 10 - 50 - 2*5 = 230.
	assert.InDelta(t, 230.0, rb.Y, 0.1)
	assert.InDelta(t, 110.0, rb.Width, 0.1)
	assert.InDelta(t, 60.0, rb.Height, 0.1)

	stretch := geometry(t, doc, root, "stretch")
	// left + right with auto width stretches to 400 - 30 - 50 = 320.
	assert.InDelta(t, 30.0, stretch.X, 0.1)
	assert.InDelta(t, 0.0, stretch.Y, 0.1)
	assert.InDelta(t, 320.0, stretch.Width, 0.1)
	assert.InDelta(t, 10.0, stretch.Height, 0.1)
}

func TestRelativeOffsetShiftsWithoutAffectingFlow(t *testing.T) {
	html := `<div id="a"></div><div id="b"></div>`
	css := `
	body { margin: 0; }
	#a { height: 50px; position: relative; top: 10px; left: 20px; }
	#b { height: 50px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	a := geometry(t, doc, root, "a")
	b := geometry(t, doc, root, "b")
	assert.InDelta(t, 20.0, a.X, 0.1)
	assert.InDelta(t, 10.0, a.Y, 0.1)
	// The sibling flows as if the offset never happened.
	assert.InDelta(t, 50.0, b.Y, 0.1)
}

func TestDisplayNoneHasNoBox(t *testing.T) {
	html := `<div id="gone" style="display: none"><span id="child"></span></div>`
	doc, root := setupLayout(t, html, "", 600, 400)

	_, err := layout.GetElementGeometry(doc, root, `//*[@id='gone']`)
	assert.Error(t, err)
	_, err = layout.GetElementGeometry(doc, root, `//*[@id='child']`)
	assert.Error(t, err)
}

func TestHiddenAttributeHasNoBox(t *testing.T) {
	doc, root := setupLayout(t, `<ul id="menu" hidden><li><a id="lnk" href="/a">A</a></li></ul>`, "", 600, 400)

	_, err := layout.GetElementGeometry(doc, root, `//*[@id='lnk']`)
	assert.Error(t, err)
}

func TestTableRowColumns(t *testing.T) {
	html := `
	<table id="t"><tr>
	  <td id="cell1">a</td><td id="cell2">b</td>
	</tr></table>
	`
	css := `
	body { margin: 0; }
	table { width: 400px; }
	td { height: 20px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	c1 := geometry(t, doc, root, "cell1")
	c2 := geometry(t, doc, root, "cell2")
	assert.InDelta(t, 200.0, c1.Width, 0.1)
	assert.InDelta(t, 0.0, c1.X, 0.1)
	assert.InDelta(t, 200.0, c2.X, 0.1)
}

func TestMinMaxWidthClamping(t *testing.T) {
	html := `<div id="capped"></div><div id="floored"></div>`
	css := `
	body { margin: 0; }
	#capped { width: 500px; max-width: 300px; height: 10px; }
	#floored { width: 50px; min-width: 120px; height: 10px; }
	`
	doc, root := setupLayout(t, html, css, 600, 400)

	assert.InDelta(t, 300.0, geometry(t, doc, root, "capped").Width, 0.1)
	assert.InDelta(t, 120.0, geometry(t, doc, root, "floored").Width, 0.1)
}

func TestCollectBounds(t *testing.T) {
	doc, root := setupLayout(t, `<div id="x" style="width: 100px; height: 40px"></div>`, `body { margin: 0; }`, 600, 400)

	bounds := layout.CollectBounds(root)
	require.NotEmpty(t, bounds)

	rect := geometry(t, doc, root, "x")
	found := false
	for sn, r := range bounds {
		if sn.Node != nil && sn.Node.Attr("id") == "x" {
			found = true
			assert.Equal(t, rect, r)
		}
	}
	assert.True(t, found)
}
