package apierr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind buckets every rejection the engine can produce. Handlers map kinds to
// HTTP statuses; services never touch status codes directly.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindStructural        Kind = "structural_violation"
	KindReferential       Kind = "referential_violation"
	KindDependencyBlocked Kind = "dependency_blocked"
	KindConflict          Kind = "concurrency_conflict"
)

type Error struct {
	Kind Kind
	Code string
	IDs  []uuid.UUID
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// WithIDs attaches the offending identifiers so callers can name exactly
// which rows caused the rejection.
func (e *Error) WithIDs(ids ...uuid.UUID) *Error {
	e.IDs = append(e.IDs, ids...)
	return e
}

func Validation(code string, err error) *Error {
	return New(KindValidation, code, err)
}

func Structural(code string, err error) *Error {
	return New(KindStructural, code, err)
}

func Referential(code string, err error) *Error {
	return New(KindReferential, code, err)
}

func DependencyBlocked(code string, err error) *Error {
	return New(KindDependencyBlocked, code, err)
}

func Conflict(code string, err error) *Error {
	return New(KindConflict, code, err)
}

// As unwraps err into an *Error when the chain contains one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
