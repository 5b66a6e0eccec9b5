package tools

import (
	"errors"
	"fmt"

	"github.com/arnavshah/storeplan-api/pkg/tabular"
)

// Error kinds. Match them with errors.Is.
var (
	ErrMissingInput = errors.New("missing input")
	ErrReadFailure  = errors.New("read failure")
	ErrParseFailure = errors.New("parse failure")
)

// Error is the single terminal failure of a tool run
type Error struct {
	Tool Tool
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func missingInput(tool Tool, msg string) error {
	return &Error{Tool: tool, Kind: ErrMissingInput, Err: errors.New(msg)}
}

func parseFailure(tool Tool, format string, args ...any) error {
	return &Error{Tool: tool, Kind: ErrParseFailure, Err: fmt.Errorf(format, args...)}
}

// classify maps reader errors onto tool error kinds
func classify(tool Tool, err error) error {
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	switch {
	case errors.Is(err, tabular.ErrParse):
		return &Error{Tool: tool, Kind: ErrParseFailure, Err: err}
	default:
		return &Error{Tool: tool, Kind: ErrReadFailure, Err: err}
	}
}

// KindOf names the kind of a tool error for metrics and responses
func KindOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrParseFailure):
		return "parse_failure"
	case errors.Is(err, ErrReadFailure):
		return "read_failure"
	default:
		return "internal"
	}
}
