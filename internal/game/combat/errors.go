package combat

import (
	"errors"
	"fmt"
)

// Code classifies a combat failure.
type Code string

const (
	CodeInvalidAction         Code = "INVALID_ACTION"
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"
	CodeCombatTimeout         Code = "COMBAT_TIMEOUT"
)

// Error is the typed error returned by every Engine operation.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches errors carrying the same code and message, so sentinels such as
// ErrAlreadyInCombat work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// ErrAlreadyInCombat is returned when a participant is already mapped to an
// active session.
var ErrAlreadyInCombat = &Error{Code: CodeInvalidAction, Message: "Character is already in combat"}

func invalidAction(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidAction, Message: fmt.Sprintf(format, args...)}
}

func insufficientResources(format string, args ...any) *Error {
	return &Error{Code: CodeInsufficientResources, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code carried by err, or "" when err is not a combat Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
