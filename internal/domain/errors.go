package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound marks a lookup that matched no rows.
var ErrNotFound = errors.New("not found")

// PipelineError is the single error shape surfaced to callers. Internal
// failure detail stays in Details and the logs; Message is safe to show.
type PipelineError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for the failure taxonomy.
const (
	ErrInvalidInput = "INVALID_INPUT"
	ErrGeneration   = "GENERATION_ERROR"
	ErrStore        = "STORE_ERROR"
	ErrPipeline     = "PIPELINE_ERROR"
)

// NewPipelineError creates a PipelineError with a timestamp.
func NewPipelineError(code, message, details string) *PipelineError {
	return &PipelineError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}
