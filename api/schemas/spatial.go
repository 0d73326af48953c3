package schemas

import (
	"fmt"
	"sort"
	"strings"
)

// -- Spatial DOM Schemas --

// Element is a single addressable entry in the Spatial DOM. IDs are assigned
// in depth-first emission order starting at 1 and are not stable across
// parses; agents must treat them as handles into one snapshot only.
type Element struct {
	ID   uint32 `json:"id"`
	Tag  string `json:"tag"`
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`
	// Ph is the placeholder attribute of form controls.
	Ph        string `json:"ph,omitempty"`
	Href      string `json:"href,omitempty"`
	Val       string `json:"val,omitempty"`
	Name      string `json:"name,omitempty"`
	Label     string `json:"label,omitempty"`
	InputType string `json:"type,omitempty"`
	// Hidden is recorded only when true. Hidden elements keep their entry
	// even with zero-size bounds.
	Hidden    bool   `json:"hidden,omitempty"`
	Checked   bool   `json:"checked,omitempty"`
	Disabled  bool   `json:"disabled,omitempty"`
	Expanded  bool   `json:"expanded,omitempty"`
	Selected  bool   `json:"selected,omitempty"`
	Required  bool   `json:"required,omitempty"`
	AlertType string `json:"alert_type,omitempty"`
	// B is the bounding box [x, y, w, h] in document-origin pixels.
	B [4]int `json:"b"`
}

// SpatialDOM is the flat, ID-addressed projection of a rendered page.
type SpatialDOM struct {
	URL    string     `json:"url"`
	Title  string     `json:"title"`
	VP     [2]float64 `json:"vp"`
	Scroll [2]float64 `json:"scroll"`
	Els    []Element  `json:"els"`
	// PageType is omitted from output when it is PageOther.
	PageType         PageType          `json:"page_type,omitempty"`
	SuggestedActions []SuggestedAction `json:"suggested_actions,omitempty"`
	Captcha          *Captcha          `json:"captcha,omitempty"`

	idIndex map[uint32]int
}

// DeltaDOM is the difference between two Spatial DOM snapshots. Changed holds
// the elements of the new snapshot with no content-identity match in the old
// one; Removed holds the old IDs whose identity disappeared.
type DeltaDOM struct {
	Changed []Element  `json:"changed"`
	Removed []uint32   `json:"removed"`
	VP      [2]float64 `json:"vp"`
}

// RebuildIndex recomputes the id → position index. Every operation that
// mutates Els must call it (or maintain the index itself).
func (d *SpatialDOM) RebuildIndex() {
	d.idIndex = make(map[uint32]int, len(d.Els))
	for i := range d.Els {
		d.idIndex[d.Els[i].ID] = i
	}
}

// Get returns the element with the given ID.
func (d *SpatialDOM) Get(id uint32) (*Element, error) {
	if d.idIndex == nil {
		d.RebuildIndex()
	}
	i, ok := d.idIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrElementNotFound, id)
	}
	return &d.Els[i], nil
}

// ActionByName returns the suggested action whose variant carries the given
// discriminator name. Callers dispatching a requested recipe get
// ErrActionNotApplicable when the page offers no such recipe.
func (d *SpatialDOM) ActionByName(name string) (SuggestedAction, error) {
	for _, a := range d.SuggestedActions {
		if a.Action != nil && a.Action.ActionName() == name {
			return a, nil
		}
	}
	return SuggestedAction{}, fmt.Errorf("%w: %s", ErrActionNotApplicable, name)
}

// Visible returns the elements not marked hidden.
func (d *SpatialDOM) Visible() []Element {
	out := make([]Element, 0, len(d.Els))
	for _, el := range d.Els {
		if !el.Hidden {
			out = append(out, el)
		}
	}
	return out
}

// AboveFold returns the elements whose top edge lies within the viewport.
func (d *SpatialDOM) AboveFold() []Element {
	out := make([]Element, 0, len(d.Els))
	for _, el := range d.Els {
		if float64(el.B[1]) < d.VP[1] {
			out = append(out, el)
		}
	}
	return out
}

// BelowFold returns the elements whose top edge is past the viewport height.
func (d *SpatialDOM) BelowFold() []Element {
	out := make([]Element, 0, len(d.Els))
	for _, el := range d.Els {
		if float64(el.B[1]) >= d.VP[1] {
			out = append(out, el)
		}
	}
	return out
}

// FilterAboveFold drops every below-fold element in place and reindexes.
func (d *SpatialDOM) FilterAboveFold() {
	kept := d.Els[:0]
	for _, el := range d.Els {
		if float64(el.B[1]) < d.VP[1] {
			kept = append(kept, el)
		}
	}
	d.Els = kept
	d.RebuildIndex()
}

// Alerts returns the elements that carry an alert classification.
func (d *SpatialDOM) Alerts() []Element {
	var out []Element
	for _, el := range d.Els {
		if el.AlertType != "" {
			out = append(out, el)
		}
	}
	return out
}

// Table is a reconstructed data table: header texts plus row cell texts.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// tableRowTolerance is the y-distance within which cells share a row.
const tableRowTolerance = 5

// Tables reconstructs tabular data from the emitted th/td cells by
// clustering their y coordinates and sorting each row left to right.
func (d *SpatialDOM) Tables() []Table {
	type cell struct {
		x, y   int
		text   string
		header bool
	}
	var cells []cell
	for _, el := range d.Els {
		if el.Tag != "th" && el.Tag != "td" {
			continue
		}
		cells = append(cells, cell{x: el.B[0], y: el.B[1], text: el.Text, header: el.Tag == "th"})
	}
	if len(cells) == 0 {
		return nil
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].y < cells[j].y })

	var rows [][]cell
	for _, c := range cells {
		if n := len(rows); n > 0 && c.y-rows[n-1][0].y <= tableRowTolerance {
			rows[n-1] = append(rows[n-1], c)
			continue
		}
		rows = append(rows, []cell{c})
	}

	t := Table{}
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
		texts := make([]string, len(row))
		allHeader := true
		for i, c := range row {
			texts[i] = c.text
			allHeader = allHeader && c.header
		}
		if allHeader && t.Headers == nil && t.Rows == nil {
			t.Headers = texts
			continue
		}
		t.Rows = append(t.Rows, texts)
	}
	if t.Headers == nil && t.Rows == nil {
		return nil
	}
	return []Table{t}
}

// codeProximity is the vertical window below a keyword element within which
// a bare digit sequence still counts as a verification code.
const codeProximity = 100

var codeKeywords = []string{
	"verification code", "security code", "your code", "otp", "passcode", "one-time",
}

// FindCodes extracts 4-8 digit verification codes from element texts. A digit
// run qualifies when its own text carries a code keyword, or when it sits
// within codeProximity pixels below a keyword-bearing element. Four-digit
// runs in 1900-2099 are rejected as year-likes.
func (d *SpatialDOM) FindCodes() []string {
	keywordYs := make([]int, 0, 4)
	for _, el := range d.Els {
		lower := strings.ToLower(el.Text)
		for _, kw := range codeKeywords {
			if strings.Contains(lower, kw) {
				keywordYs = append(keywordYs, el.B[1])
				break
			}
		}
	}

	var codes []string
	seen := make(map[string]bool)
	for _, el := range d.Els {
		if el.Text == "" {
			continue
		}
		near := false
		lower := strings.ToLower(el.Text)
		for _, kw := range codeKeywords {
			if strings.Contains(lower, kw) {
				near = true
				break
			}
		}
		if !near {
			for _, y := range keywordYs {
				if el.B[1] >= y && el.B[1]-y <= codeProximity {
					near = true
					break
				}
			}
		}
		if !near {
			continue
		}
		for _, run := range digitRuns(el.Text) {
			if len(run) == 4 && run >= "1900" && run <= "2099" {
				continue
			}
			if !seen[run] {
				seen[run] = true
				codes = append(codes, run)
			}
		}
	}
	return codes
}

// digitRuns returns the maximal ASCII digit runs of length 4..8 in s. Runs
// longer than 8 digits are discarded outright (order numbers, phone numbers).
func digitRuns(s string) []string {
	var runs []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if n := end - start; n >= 4 && n <= 8 {
			runs = append(runs, s[start:end])
		}
		start = -1
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return runs
}
