package correlate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/playground/protocol"
)

// DefaultMaxIDAttempts bounds how many IDs Send draws before giving up on
// finding one that is not already pending.
const DefaultMaxIDAttempts = 8

// Handler receives every response routed to one operation, in arrival order.
// It is called zero or more times with TypeData and then exactly once with
// TypeOK or TypeError.
type Handler func(resp protocol.Response)

// Sender transmits one request envelope.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Send must fail fast rather than queue when the channel is not
//   usable.
type Sender interface {
	Send(ctx context.Context, req protocol.Request) error
}

// Config configures an Engine.
type Config struct {
	// Sender transmits requests.
	// Required.
	Sender Sender

	// IDs generates correlation IDs.
	// Default: Base36Generator{}
	IDs IDGenerator

	// MaxIDAttempts bounds regeneration on ID collision.
	// Default: DefaultMaxIDAttempts
	MaxIDAttempts int

	// Logger is an optional logger for engine events.
	Logger Logger
}

// Engine routes inbound responses to the operations that requested them.
type Engine struct {
	sender        Sender
	ids           IDGenerator
	maxIDAttempts int
	logger        Logger

	mu      sync.Mutex
	pending map[string]*operation
	closed  bool

	// dispatchMu serializes handler invocation between Dispatch and Abandon.
	dispatchMu sync.Mutex
}

type operation struct {
	id      string
	op      protocol.Operation
	target  string
	handler Handler

	once sync.Once
	done chan struct{}
	err  error
}

func (o *operation) finish(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}

// New creates an Engine with the given configuration.
func New(cfg Config) (*Engine, error) {
	if cfg.Sender == nil {
		return nil, fmt.Errorf("%w: missing required fields: Sender", ErrConfiguration)
	}

	ids := cfg.IDs
	if ids == nil {
		ids = Base36Generator{}
	}
	attempts := cfg.MaxIDAttempts
	if attempts <= 0 {
		attempts = DefaultMaxIDAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger()
	}

	return &Engine{
		sender:        cfg.Sender,
		ids:           ids,
		maxIDAttempts: attempts,
		logger:        logger,
		pending:       make(map[string]*operation),
	}, nil
}

// Send registers handler under a fresh correlation ID and transmits msg.
//
// The handler is registered before the request leaves, so a response that
// races ahead of Send's return is still routed. If transmission fails the
// registration is dropped, the handler is never called, and the error is
// returned unchanged. If Abandon retired the operation while it was being
// transmitted, the handler has already seen its terminal response, so Send
// returns the resolved Completion instead of the transmission error.
func (e *Engine) Send(ctx context.Context, msg protocol.Message, handler Handler) (*Completion, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", protocol.ErrMalformed)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	id, err := e.allocateLocked()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	op := &operation{
		id:      id,
		op:      msg.Operation(),
		target:  msg.Target(),
		handler: handler,
		done:    make(chan struct{}),
	}
	e.pending[id] = op
	e.mu.Unlock()

	if err := e.sender.Send(ctx, protocol.Request{ID: id, Message: msg}); err != nil {
		if !e.remove(op) {
			e.logger.Debug("request abandoned during send", "id", id, "op", op.op, "error", err)
			return &Completion{op: op}, nil
		}
		e.logger.Debug("request not sent", "id", id, "op", op.op, "error", err)
		return nil, err
	}

	e.logger.Debug("request sent", "id", id, "op", op.op, "target", op.target)
	return &Completion{op: op}, nil
}

// allocateLocked draws IDs until one is not pending. e.mu must be held.
func (e *Engine) allocateLocked() (string, error) {
	for i := 0; i < e.maxIDAttempts; i++ {
		id := e.ids.Generate()
		if _, taken := e.pending[id]; !taken && id != "" {
			return id, nil
		}
		e.logger.Warn("correlation id collision", "id", id, "attempt", i+1)
	}
	return "", fmt.Errorf("%w: no free id after %d attempts", ErrIDCollision, e.maxIDAttempts)
}

// Dispatch routes one inbound response. It must be called from a single
// goroutine in arrival order.
//
// A response whose ID is not pending is logged and dropped; the returned
// error wraps ErrUnknownID. A terminal response retires its operation after
// the handler returns, even if the handler panics.
func (e *Engine) Dispatch(resp protocol.Response) error {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	e.mu.Lock()
	op, ok := e.pending[resp.ID]
	e.mu.Unlock()

	if !ok {
		e.logger.Warn("discarding response for unknown id", "id", resp.ID, "type", resp.Type)
		return fmt.Errorf("%w: %s", ErrUnknownID, resp.ID)
	}
	if !resp.Type.Valid() {
		e.logger.Warn("discarding response with invalid type", "id", resp.ID, "type", resp.Type)
		return fmt.Errorf("%w: invalid response type %q for id %s", ErrProtocol, resp.Type, resp.ID)
	}

	recovered := e.invoke(op, resp)
	if !resp.Type.Terminal() {
		return nil
	}

	e.remove(op)

	var outcome error
	switch {
	case recovered != nil:
		outcome = fmt.Errorf("%w: %v", ErrHandlerPanic, recovered)
	case resp.Type == protocol.TypeError:
		outcome = &RemoteError{ID: op.id, Message: resp.Data}
	}
	op.finish(outcome)

	e.logger.Debug("operation retired", "id", op.id, "op", op.op, "type", resp.Type)
	return nil
}

// invoke calls the operation's handler and returns any recovered panic.
func (e *Engine) invoke(op *operation, resp protocol.Response) (recovered any) {
	if op.handler == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			recovered = r
			e.logger.Error("response handler panicked", "id", op.id, "op", op.op, "panic", r)
		}
	}()
	op.handler(resp)
	return nil
}

// remove deletes op from the pending table and reports whether it was still
// there.
func (e *Engine) remove(op *operation) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.pending[op.id]; ok && cur == op {
		delete(e.pending, op.id)
		return true
	}
	return false
}

// Abandon retires every pending operation and refuses further sends.
//
// Each pending handler receives one synthetic TypeError response describing
// reason, and each Completion resolves with an error wrapping
// ErrConnectionClosed. Abandon is idempotent. It must not be called from
// inside a Handler.
func (e *Engine) Abandon(reason error) {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	e.mu.Lock()
	e.closed = true
	ops := e.pending
	e.pending = make(map[string]*operation)
	e.mu.Unlock()

	if len(ops) == 0 {
		return
	}

	err := closeError(reason)
	for _, op := range ops {
		e.invoke(op, protocol.Error(op.id, err.Error()))
		op.finish(err)
	}
	e.logger.Info("abandoned pending operations", "count", len(ops), "reason", err)
}

func closeError(reason error) error {
	switch {
	case reason == nil:
		return ErrConnectionClosed
	case errors.Is(reason, ErrConnectionClosed):
		return reason
	default:
		return fmt.Errorf("%w: %w", ErrConnectionClosed, reason)
	}
}

// Closed reports whether Abandon has been called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Pending returns the number of operations awaiting a terminal response.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// IsPending reports whether id is awaiting a terminal response.
func (e *Engine) IsPending(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pending[id]
	return ok
}
