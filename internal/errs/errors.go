// Package errs classifies the failures a conversion run can surface.
//
// Every failure is fatal for the dataset being converted; the kind only tells
// callers (and users) whether the conversion rules, the input data, the
// emitted output or the configuration is at fault.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	// KindSchema marks a malformed table or column definition. It indicates a
	// defect in the conversion rules, not in the data.
	KindSchema Kind = "schema"
	// KindDataShape marks source records that do not have the shape the
	// conversion rules expect.
	KindDataShape Kind = "data_shape"
	// KindValidation marks emitted tables that violate their own schema.
	KindValidation Kind = "validation"
	KindConfig     Kind = "config"
	KindIO         Kind = "io"
)

// Error wraps an underlying error with operation context and a kind.
type Error struct {
	Op   string
	Kind Kind
	Path string // optional: file or table the error relates to
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// E builds an *Error.
func E(op string, kind Kind, path string, err error) *Error {
	return &Error{Op: op, Kind: kind, Path: path, Err: err}
}

// Errorf builds an *Error whose cause is formatted from format and args.
func Errorf(op string, kind Kind, path, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
