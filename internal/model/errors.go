package model

import (
	"errors"
	"fmt"
)

// ErrNoteNotFound is returned by stores when no note has the requested id.
// The service layer turns it into an absent result rather than a failure.
var ErrNoteNotFound = errors.New("note not found")

var (
	ErrConnectionFailed  = errors.New("failed to connect")
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrConfigInvalid     = errors.New("invalid config options")
	ErrEditorFailed      = errors.New("editor failed")

	ErrAddFailed    = errors.New("failed to add note")
	ErrRemoveFailed = errors.New("failed to remove note")
	ErrSearchFailed = errors.New("failed to search notes")
)

// Op names a contract operation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpSearch Op = "search"
)

// OperationError reports that the service rejected or could not complete
// an operation. It matches the per-operation sentinel via errors.Is.
type OperationError struct {
	Op  Op
	Err error
}

// NewOperationError wraps err as a failure of op.
func NewOperationError(op Op, err error) *OperationError {
	return &OperationError{Op: op, Err: err}
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAddFailed) and friends work.
func (e *OperationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *OperationError) sentinel() error {
	switch e.Op {
	case OpAdd:
		return ErrAddFailed
	case OpRemove:
		return ErrRemoveFailed
	default:
		return ErrSearchFailed
	}
}
