// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Transports use the kind to pick a protocol error code;
// errors coming back from the Neon API are never wrapped in this type.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// CredentialMissing indicates no API key could be resolved.
	CredentialMissing Kind = "credential_missing"
	// InvalidArguments indicates a call whose arguments could not be bound.
	InvalidArguments Kind = "invalid_arguments"
	// UnknownOperation indicates a call naming no registered operation.
	UnknownOperation Kind = "unknown_operation"
	// UnauthorizedCaller indicates a transport request without the shared secret.
	UnauthorizedCaller Kind = "unauthorized_caller"
	// ConfigInvalid indicates an unreadable or inconsistent config file.
	ConfigInvalid Kind = "config_invalid"
	// TransportFailed indicates a listener or remote transport failure.
	TransportFailed Kind = "transport_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "".
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }
