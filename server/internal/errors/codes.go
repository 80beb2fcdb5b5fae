package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures surfaced by the pitch pipeline and the
// HTTP layer.
type ErrorCode string

const (
	// ErrCodeAgentExecutionFailed indicates an agent run failed.
	ErrCodeAgentExecutionFailed ErrorCode = "AGENT_EXECUTION_FAILED"
	// ErrCodeLLMUnavailable indicates the LLM service is not configured or reachable.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeTranscriptionFailed indicates audio transcription failed.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
)

// PipelineError is a structured error carrying a stable code so handlers
// can map failures to log fields without string matching.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// AgentExecutionFailed creates an agent execution failed error.
func AgentExecutionFailed(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeAgentExecutionFailed, Message: msg, Cause: cause}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeLLMUnavailable, Message: msg}
}

// TranscriptionFailed creates a transcription failure error.
func TranscriptionFailed(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeTranscriptionFailed, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *PipelineError {
	return &PipelineError{Code: code, Message: msg, Cause: cause}
}

// IsCode reports whether any error in the chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error in the chain,
// falling back to defaultCode for plain errors.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return defaultCode
}
