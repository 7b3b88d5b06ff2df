// Package aaverr defines the error taxonomy shared across AAv3's core
// components, so the Orchestrator can classify a failure without string
// matching on error text.
package aaverr

import (
	"errors"
	"fmt"
)

// ErrorKind names one of the error categories from the error handling
// design (LLM transport problems, malformed agent output, filesystem
// failures, ...). It is a value, not a Go error type, so it can be
// compared, logged, and serialized into verdict.json directly.
type ErrorKind string

const (
	KindLLMTimeout           ErrorKind = "llm_timeout"
	KindLLMTransport         ErrorKind = "llm_transport"
	KindLLMAuth              ErrorKind = "llm_auth"
	KindMalformedAgentOutput ErrorKind = "malformed_agent_output"
	KindFilesystemError      ErrorKind = "filesystem_error"
	KindSubprocessFailure    ErrorKind = "subprocess_failure"
	KindConfigError          ErrorKind = "config_error"
	KindCancelled            ErrorKind = "cancelled"
)

// Error is a typed error carrying the phase it occurred in, alongside the
// underlying cause. Orchestrator failure handling dispatches on Kind via
// errors.As, not on message content.
type Error struct {
	Kind    ErrorKind
	Phase   string // e.g. "PLAN", "TEST round 2"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Phase, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Phase, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a typed Error.
func New(kind ErrorKind, phase, message string, cause error) *Error {
	return &Error{Kind: kind, Phase: phase, Message: message, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf extracts the ErrorKind from err, if any. ok is false when err is
// nil or not an *Error.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}
