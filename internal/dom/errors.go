package dom

import "errors"

var (
	// ErrNoMatch is returned when a selector matches no node in the document.
	ErrNoMatch = errors.New("selector matched no node")

	// ErrEmptySelector is returned when an empty selector string is compiled.
	ErrEmptySelector = errors.New("empty selector")
)
