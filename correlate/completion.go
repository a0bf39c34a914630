package correlate

import (
	"context"

	"github.com/jonwraymond/playground/protocol"
)

// Completion resolves when its operation has been retired from the pending
// table.
type Completion struct {
	op *operation
}

// ID returns the correlation ID assigned to the operation.
func (c *Completion) ID() string {
	return c.op.id
}

// Operation returns the request kind.
func (c *Completion) Operation() protocol.Operation {
	return c.op.op
}

// Done returns a channel that is closed once the operation is retired.
func (c *Completion) Done() <-chan struct{} {
	return c.op.done
}

// Err returns nil until Done is closed. Afterwards it returns nil for a
// TypeOK outcome, a *RemoteError for TypeError, or an error wrapping
// ErrConnectionClosed or ErrHandlerPanic.
func (c *Completion) Err() error {
	select {
	case <-c.op.done:
		return c.op.err
	default:
		return nil
	}
}

// Wait blocks until the operation is retired or ctx is done. Giving up on
// ctx does not cancel the remote operation; it stays pending until its
// terminal response arrives or the engine is abandoned.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.op.done:
		return c.op.err
	}
}
