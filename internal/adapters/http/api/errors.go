package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrServe            = errors.New("serve failed")
	ErrBadRequest       = errors.New("bad request")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrInternal         = errors.New("internal error")
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// kindError carries an operation name, a sentinel kind and an optional cause.
// It renders as "op: kind: cause" and matches both kind and cause with errors.Is.
type kindError struct {
	op    string
	kind  error
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.cause)
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &kindError{op: op, kind: kind}
}

// WrapKind classifies cause as kind, raised by op. A nil cause yields NewKind.
func WrapKind(op string, kind, cause error) error {
	return &kindError{op: op, kind: kind, cause: cause}
}

// Wrap annotates err with op without changing its kind. Nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// message returns the human part of err: the cause when one was given,
// otherwise the kind.
func message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		if ke.cause != nil {
			return ke.cause.Error()
		}
		return ke.kind.Error()
	}
	return err.Error()
}
