package catalog

import (
	"errors"
	"fmt"

	"github.com/erazemk/zbirka/internal/attrs"
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + " required"
	}
	return e.Field + ": " + e.Reason
}

// NotFoundError reports a referenced row that does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr classifies an error coming out of the store package. Attribute
// encoding failures become validation errors, already classified errors pass
// through, everything else is a StoreError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var codecErr *attrs.CodecError
	if errors.As(err, &codecErr) {
		return &ValidationError{Field: "attributes", Reason: codecErr.Err.Error()}
	}

	var ve *ValidationError
	var nf *NotFoundError
	var se *StoreError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
