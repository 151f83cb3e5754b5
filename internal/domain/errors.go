package domain

import (
	"errors"
	"fmt"
)

// ErrEmbeddingUnsupported indicates an embedding request for a backend that
// does not implement embeddings. Fatal; never retried via fallback.
var ErrEmbeddingUnsupported = errors.New("embedding is unsupported for provider")

// ErrEmptyRequest indicates a request carrying neither a prompt nor messages.
// Raised during message assembly, before any backend call is attempted.
var ErrEmptyRequest = errors.New("request requires a prompt or at least one message")

// ConfigurationError indicates that a requested backend has no configuration.
// Fatal; the router never attempts fallback for it.
type ConfigurationError struct {
	Backend Backend
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Backend == "" {
		return "no provider configured: " + e.Reason
	}
	return fmt.Sprintf("provider %s is not configured: %s", e.Backend, e.Reason)
}

// TransportError indicates a network or HTTP-level failure calling a backend.
// Retried via fallback.
type TransportError struct {
	Backend Backend
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %s: transport failure: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError indicates a malformed or unexpected backend payload.
// Retried via fallback; the router treats it the same as a transport failure.
type ProtocolError struct {
	Backend Backend
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("provider %s: unexpected response: %v", e.Backend, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ProcessError indicates a spawn failure or non-zero exit of the local model
// runner. Retried via fallback; temp files are cleaned before it surfaces.
type ProcessError struct {
	Backend Backend
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("provider %s: runner failed: %v", e.Backend, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
