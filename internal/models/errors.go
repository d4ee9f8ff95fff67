package models

import (
	"errors"
	"fmt"
)

// Error kinds shared across the pipeline. Callers match them with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrStorageUnavailable = errors.New("vector store unavailable")
	ErrQuery              = errors.New("vector store query failed")
	ErrLLMInputTooLarge   = errors.New("prompt exceeds model input limit")
	ErrLLMInternal        = errors.New("model invocation failed")
)

// ValidationError is a caller mistake with a human-readable message.
type ValidationError struct {
	Msg string
}

// NewValidationError returns a *ValidationError with msg.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

// Is reports ErrValidation as a match so callers need not know the concrete type.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageUnavailable wraps a failed heartbeat or store setup.
func StorageUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// QueryError wraps a backend failure during retrieval.
func QueryError(err error) error {
	return fmt.Errorf("%w: %w", ErrQuery, err)
}

// StageError records which pipeline stage failed. Its message is the cause's
// message so API callers see the underlying reason unchanged.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// AtStage wraps err with the stage name, or returns nil when err is nil.
func AtStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
