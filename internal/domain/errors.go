package domain

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the error categories callers may branch on.
// Dispatch happens on the kind, never on message text.
type ErrorKind string

const (
	// KindKeyFormat marks malformed or wrong-length key material on
	// import. A local data error, not retryable.
	KindKeyFormat ErrorKind = "KEY_FORMAT"
	// KindDecryption marks an authentication failure on unwrap or on
	// message decrypt. Ciphertext may legitimately be undecryptable, so
	// callers surface this as a sentinel, never as a crash.
	KindDecryption ErrorKind = "DECRYPTION"
	// KindKeyUnavailable marks an operation attempted before identity or
	// thread-key resolution completed. Callers await readiness.
	KindKeyUnavailable ErrorKind = "KEY_UNAVAILABLE"
	// KindKeyPolicy marks a capability violation, such as exporting a
	// non-extractable private key.
	KindKeyPolicy ErrorKind = "KEY_POLICY"
	// KindDirectory marks a directory-collaborator failure that could
	// not be absorbed by a fallback step.
	KindDirectory ErrorKind = "DIRECTORY"
)

// Error is the taxonomy error carried across the orchestrator boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a taxonomy error without a cause.
func NewError(kind ErrorKind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds a taxonomy error around a lower-level cause.
func WrapError(kind ErrorKind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Constructors

func KeyFormatError(message string) error {
	return NewError(KindKeyFormat, message)
}

func KeyFormatErrorf(format string, args ...any) error {
	return NewError(KindKeyFormat, fmt.Sprintf(format, args...))
}

func DecryptionError(message string) error {
	return NewError(KindDecryption, message)
}

func KeyUnavailableError(message string) error {
	return NewError(KindKeyUnavailable, message)
}

func KeyPolicyError(message string) error {
	return NewError(KindKeyPolicy, message)
}

func DirectoryError(message string, cause error) error {
	return WrapError(KindDirectory, message, cause)
}
