package playground

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/playground/correlate"
	"github.com/jonwraymond/playground/transport"
)

// Errors returned by Manager operations.
var (
	// ErrInvalidRequest indicates caller input rejected before sending.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidName is returned for empty or malformed playground names.
	ErrInvalidName = fmt.Errorf("%w: invalid playground name", ErrInvalidRequest)

	// ErrInvalidEnv is returned for environments the service does not support.
	ErrInvalidEnv = fmt.Errorf("%w: unsupported environment", ErrInvalidRequest)

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotReady is returned when an operation is issued before Connect.
	ErrNotReady = transport.ErrNotReady

	// ErrClosed is returned after Close.
	ErrClosed = transport.ErrClosed

	// ErrConnectionClosed resolves operations cut off by a closed connection.
	ErrConnectionClosed = correlate.ErrConnectionClosed

	// ErrRemote matches errors reported by the service.
	ErrRemote = correlate.ErrRemote
)
