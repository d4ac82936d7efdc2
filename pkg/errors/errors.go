// ================== pkg/errors/errors.go =================
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so the HTTP layer can pick a status code
// without knowing which collaborator produced it.
type Kind string

const (
	KindValidation Kind = "validation"
	KindUpload     Kind = "upload"
	KindStore      Kind = "store"
	KindRelay      Kind = "relay"
	KindAuth       Kind = "auth"
	KindAnchor     Kind = "anchor"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
)

// AuthReason is the generic category shown to a reviewer when sign-in fails.
// The provider's own message is only ever logged.
type AuthReason string

const (
	InvalidCredentials AuthReason = "invalid_credentials"
	NetworkUnavailable AuthReason = "network_unavailable"
	Unknown            AuthReason = "unknown"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// Error is the typed error returned by every service in the module.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Reason  AuthReason
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: message, Err: ErrValidation}
}

func Upload(message string, err error) *Error {
	return &Error{Kind: KindUpload, Code: "UPLOAD_FAILED", Message: message, Err: err}
}

func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Code: "DATABASE_ERROR", Message: message, Err: err}
}

func Relay(message string, err error) *Error {
	return &Error{Kind: KindRelay, Code: "RELAY_ERROR", Message: message, Err: err}
}

func Anchor(message string, err error) *Error {
	return &Error{Kind: KindAnchor, Code: "ANCHOR_FAILED", Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: message, Err: ErrNotFound}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Auth builds an authentication failure. err keeps the provider detail for logs.
func Auth(reason AuthReason, err error) *Error {
	msg := "Sign-in failed"
	switch reason {
	case InvalidCredentials:
		msg = "Invalid email or password"
	case NetworkUnavailable:
		msg = "Identity provider is unreachable, try again"
	}
	return &Error{Kind: KindAuth, Code: "AUTH_" + strings.ToUpper(string(reason)), Message: msg, Reason: reason, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// As is errors.As, re-exported so callers importing this package as
// "errors" do not also need the standard library one.
func As(err error, target any) bool {
	return errors.As(err, target)
}
