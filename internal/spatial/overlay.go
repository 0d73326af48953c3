package spatial

import (
	"fmt"

	"github.com/browsyhq/browsy-core/api/schemas"
)

// overlayKind discriminates the state an overlay entry carries.
type overlayKind int

const (
	overlayText overlayKind = iota
	overlayChecked
	overlaySelected
)

type overlayEntry struct {
	kind    overlayKind
	text    string
	checked bool
	value   string
}

// Overlay is the per-session form state applied on top of a Spatial DOM at
// read time. It never mutates the underlying snapshot. Not safe for
// concurrent use; sessions synchronize externally.
type Overlay struct {
	entries map[uint32]overlayEntry
}

func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[uint32]overlayEntry)}
}

// SetText records a typed value for a text-bearing control.
func (o *Overlay) SetText(d *schemas.SpatialDOM, id uint32, text string) error {
	el, err := d.Get(id)
	if err != nil {
		return err
	}
	if !acceptsText(el) {
		return fmt.Errorf("%w: id %d (%s) cannot hold text", schemas.ErrWrongElementKind, id, el.Tag)
	}
	o.entries[id] = overlayEntry{kind: overlayText, text: text}
	return nil
}

// SetChecked records a checkbox or radio toggle.
func (o *Overlay) SetChecked(d *schemas.SpatialDOM, id uint32, checked bool) error {
	el, err := d.Get(id)
	if err != nil {
		return err
	}
	if !acceptsChecked(el) {
		return fmt.Errorf("%w: id %d (%s) is not checkable", schemas.ErrWrongElementKind, id, el.Tag)
	}
	o.entries[id] = overlayEntry{kind: overlayChecked, checked: checked}
	return nil
}

// Select records a chosen option value on a select. The value must match one
// of the select's options by val or text.
func (o *Overlay) Select(d *schemas.SpatialDOM, id uint32, value string) error {
	el, err := d.Get(id)
	if err != nil {
		return err
	}
	if el.Tag != "select" {
		return fmt.Errorf("%w: id %d (%s) is not a select", schemas.ErrWrongElementKind, id, el.Tag)
	}
	if !selectHasOption(d, id, value) {
		return fmt.Errorf("%w: select %d has no option %q", schemas.ErrInvalidValue, id, value)
	}
	o.entries[id] = overlayEntry{kind: overlaySelected, value: value}
	return nil
}

// Reset discards all recorded state, as after a fresh parse.
func (o *Overlay) Reset() {
	o.entries = make(map[uint32]overlayEntry)
}

// Apply returns a copy of the snapshot with the overlay folded into val,
// checked and selected. The input is left untouched.
func (o *Overlay) Apply(d *schemas.SpatialDOM) *schemas.SpatialDOM {
	out := *d
	out.Els = make([]schemas.Element, len(d.Els))
	copy(out.Els, d.Els)
	for i := range out.Els {
		entry, ok := o.entries[out.Els[i].ID]
		if !ok {
			continue
		}
		switch entry.kind {
		case overlayText:
			out.Els[i].Val = entry.text
		case overlayChecked:
			out.Els[i].Checked = entry.checked
		case overlaySelected:
			out.Els[i].Val = entry.value
			markSelectedOption(&out, out.Els[i].ID, entry.value)
		}
	}
	out.RebuildIndex()
	return &out
}

func acceptsText(el *schemas.Element) bool {
	switch el.Tag {
	case "textarea":
		return true
	case "input":
		switch el.InputType {
		case "checkbox", "radio", "submit", "button", "image", "reset":
			return false
		}
		return true
	}
	return el.Role == "textbox" || el.Role == "searchbox"
}

func acceptsChecked(el *schemas.Element) bool {
	if el.Tag == "input" && (el.InputType == "checkbox" || el.InputType == "radio") {
		return true
	}
	return el.Role == "checkbox" || el.Role == "radio" || el.Role == "switch"
}

// selectHasOption scans the options following the select in emission order.
// Options belong to the nearest preceding select.
func selectHasOption(d *schemas.SpatialDOM, selectID uint32, value string) bool {
	inSelect := false
	for _, el := range d.Els {
		if el.ID == selectID {
			inSelect = true
			continue
		}
		if !inSelect {
			continue
		}
		if el.Tag != "option" {
			break
		}
		if el.Val == value || el.Text == value {
			return true
		}
	}
	return false
}

// markSelectedOption moves the selected flag to the matching option of the
// given select within the copied element list.
func markSelectedOption(d *schemas.SpatialDOM, selectID uint32, value string) {
	inSelect := false
	for i := range d.Els {
		el := &d.Els[i]
		if el.ID == selectID {
			inSelect = true
			continue
		}
		if !inSelect {
			continue
		}
		if el.Tag != "option" {
			break
		}
		el.Selected = el.Val == value || el.Text == value
	}
}
