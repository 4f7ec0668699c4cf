package pipeline

import (
	"fmt"
)

// Kind classifies pipeline failures
type Kind int

const (
	KindConfiguration Kind = iota + 1 // bad parameters, detected before any I/O
	KindStorage                       // reading or writing artifacts failed
	KindMissingDataset                // train-model ran before save-datasets
	KindTraining                      // degenerate dataset or no convergence
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindStorage:
		return "StorageError"
	case KindMissingDataset:
		return "MissingDatasetError"
	case KindTraining:
		return "TrainingError"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by every pipeline operation
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Sentinels to match with errors.Is
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrStorage        = &Error{Kind: KindStorage}
	ErrMissingDataset = &Error{Kind: KindMissingDataset}
	ErrTraining       = &Error{Kind: KindTraining}
)

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}
