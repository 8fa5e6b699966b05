package domain

import (
	"context"
	"errors"
)

// Status is the state of the console session.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusFailed         Status = "failed"
)

// ErrorKind classifies why a sign-in attempt failed.
type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindAccountNotFound ErrorKind = "account_not_found"
	ErrorKindWrongPassword   ErrorKind = "wrong_password"
	ErrorKindAccountDisabled ErrorKind = "account_disabled"
	ErrorKindTimeout         ErrorKind = "timeout"
	ErrorKindUnavailable     ErrorKind = "unavailable"
)

// Verification errors reported by credential verifiers.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrAccountDisabled = errors.New("account disabled")
	ErrVerifyTimeout   = errors.New("credential verification timed out")
)

// KindOf maps a verifier error onto an ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrAccountNotFound):
		return ErrorKindAccountNotFound
	case errors.Is(err, ErrWrongPassword):
		return ErrorKindWrongPassword
	case errors.Is(err, ErrAccountDisabled):
		return ErrorKindAccountDisabled
	case errors.Is(err, ErrVerifyTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	default:
		return ErrorKindUnavailable
	}
}

// Message returns the text shown on the login form for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrorKindNone:
		return ""
	case ErrorKindAccountNotFound:
		return "No account found with that email address"
	case ErrorKindWrongPassword:
		return "Incorrect password"
	case ErrorKindAccountDisabled:
		return "This account has been deactivated"
	case ErrorKindTimeout:
		return "Sign-in timed out, please try again"
	default:
		return "Sign-in is temporarily unavailable"
	}
}
