package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Transports map kinds to status codes.
type Kind int

const (
	// KindInternal is an unexpected failure; details are never shown to callers.
	KindInternal Kind = iota
	// KindBadInput is a malformed request value.
	KindBadInput
	// KindNotFound means no question matched.
	KindNotFound
	// KindJudgingUnavailable means the oracle could not produce a verdict.
	KindJudgingUnavailable
	// KindGenerationFailed means the oracle could not produce an answer.
	KindGenerationFailed
)

func (k Kind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindNotFound:
		return "not_found"
	case KindJudgingUnavailable:
		return "judging_unavailable"
	case KindGenerationFailed:
		return "generation_failed"
	default:
		return "internal"
	}
}

// Caller-facing messages.
const (
	MsgInvalidValue       = "Invalid value format"
	MsgJudgingUnavailable = "Not able to determine if answer is correct or not"
	MsgGenerationFailed   = "Failed to generate answer"
	MsgInternal           = "Internal server error"
)

// Error is the failure type returned by every Service operation. Message is
// safe to show to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindInternal when err is not a
// service Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err. Non-service errors
// yield MsgInternal.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Kind != KindInternal {
		return se.Message
	}
	return MsgInternal
}

func notFoundForPair(round, value string, err error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("No question found for round '%s' and value '%s'", round, value),
		Err:     err,
	}
}

func notFoundForID(id int64, err error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("No question found for ID %d", id),
		Err:     err,
	}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}
