package pagbank

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrChargeDeclined is returned when the PSP declines the charge
	ErrChargeDeclined = errors.New("charge declined")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API token is invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API token")

	// ErrEncryptionNotReady is returned when the encryptor key failed to load
	ErrEncryptionNotReady = errors.New("encryption key not loaded")
)

// FieldError is a single field-level validation failure reported by the PSP
// or by local card validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field-level failures. It halts checkout before
// any order is created.
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "card validation failed: " + strings.Join(msgs, "; ")
}
