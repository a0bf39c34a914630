package correlate

import (
	"errors"
	"fmt"
)

// Errors for correlation engine operations.
var (
	// ErrClosed is returned by Send after the engine has been abandoned.
	ErrClosed = errors.New("correlation engine closed")

	// ErrConnectionClosed resolves operations that were pending when the
	// connection went away.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrProtocol indicates an inbound message that violates the protocol.
	ErrProtocol = errors.New("protocol error")

	// ErrUnknownID is returned by Dispatch for a response whose ID is not
	// pending, either never issued or already retired.
	ErrUnknownID = fmt.Errorf("%w: unknown correlation id", ErrProtocol)

	// ErrIDCollision is returned when the generator keeps producing IDs
	// that are already pending.
	ErrIDCollision = errors.New("correlation id collision")

	// ErrHandlerPanic resolves an operation whose handler panicked while
	// processing its terminal response.
	ErrHandlerPanic = errors.New("response handler panicked")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrRemote matches every RemoteError.
	ErrRemote = errors.New("remote error")
)

// RemoteError is a terminal error response reported by the remote service.
type RemoteError struct {
	// ID is the correlation ID of the rejected request.
	ID string

	// Message is the text sent by the remote service.
	Message string
}

// Error returns the remote message.
func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote error"
	}
	return "remote error: " + e.Message
}

// Is reports whether target is ErrRemote.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
