package schemas

import "errors"

// Semantic errors surfaced by operations over a Spatial DOM. The pipeline
// itself never fails; these cover callers addressing elements by ID.
var (
	// ErrElementNotFound: a referenced element ID does not exist.
	ErrElementNotFound = errors.New("element not found")
	// ErrWrongElementKind: the target cannot hold the requested state,
	// e.g. typing into a non-input.
	ErrWrongElementKind = errors.New("wrong element kind")
	// ErrActionNotApplicable: a compound action was invoked but the
	// required recipe is absent from the current Spatial DOM.
	ErrActionNotApplicable = errors.New("action not applicable")
	// ErrInvalidValue: a select overlay references an option value the
	// select does not offer.
	ErrInvalidValue = errors.New("invalid value")
)
