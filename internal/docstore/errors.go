package docstore

import (
	"errors"
	"fmt"
)

// AuthErrorKind distinguishes provider failure modes that need
// different user guidance.
type AuthErrorKind string

const (
	// AuthCancelled: the user abandoned the sign-in attempt.
	AuthCancelled AuthErrorKind = "cancelled"
	// AuthBlocked: the provider's interaction surface was blocked
	// before the user could respond (the popup-blocked case).
	AuthBlocked AuthErrorKind = "blocked"
	// AuthUnauthorizedDomain: the provider rejected the calling origin.
	AuthUnauthorizedDomain AuthErrorKind = "unauthorized-domain"
	// AuthProvider: any other provider-side rejection.
	AuthProvider AuthErrorKind = "provider"
)

// AuthError is a blocking, user-visible authentication failure.
// Guidance is the provider-specific message shown to the user.
type AuthError struct {
	Kind     AuthErrorKind
	Guidance string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %s: %v", e.Kind, e.Guidance, e.Err)
	}
	return fmt.Sprintf("auth %s: %s", e.Kind, e.Guidance)
}

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError(kind AuthErrorKind, guidance string, err error) *AuthError {
	return &AuthError{Kind: kind, Guidance: guidance, Err: err}
}

// AuthKind extracts the kind from an error chain.
func AuthKind(err error) (AuthErrorKind, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// Guidance returns the user-facing message carried by an AuthError in
// the chain, or an empty string.
func Guidance(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Guidance
	}
	return ""
}

// StorageError is a transport failure talking to the document store.
// On load the engine degrades to empty state; on save it only logs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is a document-store transport
// failure anywhere in its chain.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
