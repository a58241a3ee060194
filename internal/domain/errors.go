package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is the root of every structural export failure.
var ErrMalformedInput = errors.New("malformed health export")

// MalformedInputError pinpoints the element that could not be converted.
type MalformedInputError struct {
	Element   string
	Attribute string
	Line      int
	Err       error
}

// NewMalformedInput builds a MalformedInputError for the given element and attribute.
func NewMalformedInput(element, attribute string, line int, err error) *MalformedInputError {
	return &MalformedInputError{Element: element, Attribute: attribute, Line: line, Err: err}
}

func (e *MalformedInputError) Error() string {
	msg := ErrMalformedInput.Error()
	if e.Element != "" {
		msg = fmt.Sprintf("%s: <%s>", msg, e.Element)
		if e.Line > 0 {
			msg = fmt.Sprintf("%s at line %d", msg, e.Line)
		}
	}
	if e.Attribute != "" {
		msg = fmt.Sprintf("%s attribute %q", msg, e.Attribute)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both ErrMalformedInput and the underlying cause to errors.Is.
func (e *MalformedInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Err}
}
