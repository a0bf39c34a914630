package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolfoundation/model"
)

// Common errors for backend operations.
var (
	ErrBackendNotFound = errors.New("backend not found")
	ErrBackendExists   = errors.New("backend already registered")
	ErrBackendDisabled = errors.New("backend disabled")
	ErrToolNotFound    = errors.New("tool not found in backend")
	ErrInvalidToolID   = errors.New("invalid tool ID format")
	ErrInvalidArgs     = errors.New("invalid tool arguments")
)

// Backend is a named source of tools.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Execute and Start must honor cancellation/deadlines.
// - Errors: use ErrToolNotFound/ErrBackendDisabled/ErrInvalidArgs where applicable.
type Backend interface {
	// Kind returns the backend type, e.g. "playground".
	Kind() string

	// Name returns the instance name; it is also the tool namespace.
	Name() string

	// Enabled reports whether the backend accepts calls.
	Enabled() bool

	// ListTools returns all tools available from this backend.
	ListTools(ctx context.Context) ([]model.Tool, error)

	// Execute invokes a tool and returns its result.
	Execute(ctx context.Context, tool string, args map[string]any) (any, error)

	// Start connects the backend.
	Start(ctx context.Context) error

	// Stop releases the backend's connection.
	Stop() error
}

// StreamingBackend supports streaming results.
//
// Contract:
// - If ExecuteStream returns nil error, the channel must be non-nil and is
// closed after the last item. A failure after streaming began is delivered
// as a final error item.
type StreamingBackend interface {
	Backend

	ExecuteStream(ctx context.Context, tool string, args map[string]any) (<-chan any, error)
}

// ParseToolID splits a tool ID into backend and tool name.
func ParseToolID(id string) (backendName, tool string, err error) {
	backendName, tool, err = model.ParseToolID(id)
	if err != nil || backendName == "" || tool == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidToolID, id)
	}
	return backendName, tool, nil
}

// FormatToolID builds a tool ID from backend and tool name.
func FormatToolID(backendName, tool string) string {
	if backendName == "" {
		return tool
	}
	return backendName + ":" + tool
}
