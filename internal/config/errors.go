package config

import "fmt"

// ErrorKind classifies configuration failures.
type ErrorKind string

const (
	KindMissingSection ErrorKind = "missing_section"
	KindParse          ErrorKind = "parse_error"
	KindInvalid        ErrorKind = "invalid"
)

// Error is returned by Load and Parse.
type Error struct {
	Kind    ErrorKind
	Section string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindMissingSection:
		return fmt.Sprintf("config: missing required section %q", e.Section)
	case e.Err != nil:
		return fmt.Sprintf("config: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("config: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
