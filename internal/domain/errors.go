package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by services. pkg/rest/response owns the single
// mapping from these onto HTTP statuses.
var (
	// ErrNotFound covers both "does not exist" and "belongs to another
	// user"; the two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken signals a duplicate registration (email matching is
	// case-insensitive).
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrInvalidCredentials is returned uniformly for an unknown email and
	// for a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers a bad signature, malformed claims, expiry and
	// tokens whose subject no longer resolves to a user.
	ErrInvalidToken = errors.New("could not validate credentials")

	// ErrForbidden means the caller is authenticated but not authorized for
	// the target resource.
	ErrForbidden = errors.New("access denied")
)

// ValidationError reports malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Set(field, message string) *ValidationError {
	e.Fields[field] = message
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}
