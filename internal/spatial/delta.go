package spatial

import "github.com/browsyhq/browsy-core/api/schemas"

// identity is the content tuple that matches elements across parses. IDs are
// positional and never participate.
type identity struct {
	tag, text, ph, href, inputType string
	b                              [4]int
}

func identityOf(el schemas.Element) identity {
	return identity{
		tag:       el.Tag,
		text:      el.Text,
		ph:        el.Ph,
		href:      el.Href,
		inputType: el.InputType,
		b:         el.B,
	}
}

// Diff compares two snapshots by content identity. Changed holds the next
// snapshot's elements without a match in prev; Removed holds prev IDs whose
// identity is gone. Duplicate identities are matched by multiplicity.
func Diff(prev, next *schemas.SpatialDOM) *schemas.DeltaDOM {
	delta := &schemas.DeltaDOM{VP: next.VP}

	prevCounts := make(map[identity]int, len(prev.Els))
	for _, el := range prev.Els {
		prevCounts[identityOf(el)]++
	}

	nextCounts := make(map[identity]int, len(next.Els))
	for _, el := range next.Els {
		id := identityOf(el)
		nextCounts[id]++
		if nextCounts[id] > prevCounts[id] {
			delta.Changed = append(delta.Changed, el)
		}
	}

	seen := make(map[identity]int, len(prev.Els))
	for _, el := range prev.Els {
		id := identityOf(el)
		seen[id]++
		if seen[id] > nextCounts[id] {
			delta.Removed = append(delta.Removed, el.ID)
		}
	}
	return delta
}
