package style

import "strings"

// EvaluateMedia evaluates a media query condition as a boolean conjunction
// of its "and"-separated atoms against the viewport. Unknown atoms evaluate
// true so unrecognized conditions degrade to applying the rules.
func EvaluateMedia(cond string, vpW, vpH float64) bool {
	cond = strings.ToLower(strings.TrimSpace(cond))
	if cond == "" {
		return true
	}
	for _, atom := range strings.Split(cond, " and ") {
		if !evaluateMediaAtom(strings.TrimSpace(atom), vpW, vpH) {
			return false
		}
	}
	return true
}

func evaluateMediaAtom(atom string, vpW, vpH float64) bool {
	switch atom {
	case "screen", "all", "only screen", "":
		return true
	case "print":
		return false
	}
	atom = strings.TrimPrefix(atom, "(")
	atom = strings.TrimSuffix(atom, ")")
	name, value, found := strings.Cut(atom, ":")
	if !found {
		return true
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)

	if name == "orientation" {
		switch value {
		case "landscape":
			return vpW >= vpH
		case "portrait":
			return vpH > vpW
		}
		return true
	}

	px := ParseLengthWithUnits(value, BaseFontSize, BaseFontSize, 0, vpW, vpH)
	switch name {
	case "min-width":
		return vpW >= px
	case "max-width":
		return vpW <= px
	case "min-height":
		return vpH >= px
	case "max-height":
		return vpH <= px
	case "width":
		return vpW == px
	case "height":
		return vpH == px
	}
	return true
}
