package transport

import (
	"context"
	"errors"
)

// Errors for transport operations.
var (
	// ErrNotReady is returned when sending on a channel that is not open yet.
	ErrNotReady = errors.New("channel not ready")

	// ErrClosed is returned once the channel has been closed.
	ErrClosed = errors.New("channel closed")

	// ErrAlreadyOpen is returned by Open on an adapter that is open or opening.
	ErrAlreadyOpen = errors.New("channel already open")

	// ErrDialFailed wraps errors from the Dialer.
	ErrDialFailed = errors.New("dial failed")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Conn is a bidirectional channel that carries whole messages.
//
// Contract:
// - Concurrency: Send may be called concurrently with Receive. Receive is
//   called from a single goroutine.
// - Context: Send and Receive must return when ctx is done.
// - Close unblocks pending Send and Receive calls.
type Conn interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens a Conn to a remote address.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, url string) (Conn, error)

// Dial calls f(ctx, url).
func (f DialerFunc) Dial(ctx context.Context, url string) (Conn, error) {
	return f(ctx, url)
}

// Logger is the interface for logging.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
