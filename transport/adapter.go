package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonwraymond/playground/protocol"
)

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	// Dialer opens the underlying channel.
	// Required.
	Dialer Dialer

	// URL is the remote address handed to Dialer.
	// Required.
	URL string

	// Codec encodes requests and decodes responses.
	// Default: protocol.JSONCodec{}
	Codec protocol.Codec

	// OnMessage receives every decoded inbound response, one at a time, in
	// arrival order, on the read loop goroutine.
	// Required.
	OnMessage func(protocol.Response)

	// OnClose is called once when the channel closes, after the read loop has
	// stopped. The error wraps ErrClosed.
	OnClose func(err error)

	// Logger is an optional logger for channel events.
	Logger Logger
}

// Validate checks that all required fields are set.
func (c *AdapterConfig) Validate() error {
	var missing []string
	if c.Dialer == nil {
		missing = append(missing, "Dialer")
	}
	if c.URL == "" {
		missing = append(missing, "URL")
	}
	if c.OnMessage == nil {
		missing = append(missing, "OnMessage")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

type state int

const (
	stateIdle state = iota
	stateDialing
	stateOpen
	stateClosed
)

// Adapter owns the lifecycle of one duplex channel.
type Adapter struct {
	dialer    Dialer
	url       string
	codec     protocol.Codec
	onMessage func(protocol.Response)
	onClose   func(error)
	logger    Logger

	mu       sync.Mutex
	state    state
	conn     Conn
	cancel   context.CancelFunc
	ready    chan struct{}
	closed   chan struct{}
	loopDone chan struct{}

	sendMu    sync.Mutex
	closeOnce sync.Once
}

// NewAdapter creates an Adapter. The channel is not opened until Open.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec := cfg.Codec
	if codec == nil {
		codec = protocol.JSONCodec{}
	}
	var logger Logger = nopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	return &Adapter{
		dialer:    cfg.Dialer,
		url:       cfg.URL,
		codec:     codec,
		onMessage: cfg.OnMessage,
		onClose:   cfg.OnClose,
		logger:    logger,
		ready:     make(chan struct{}),
		closed:    make(chan struct{}),
	}, nil
}

// Open dials the channel and starts the read loop. It returns once the
// channel is ready for Send.
func (a *Adapter) Open(ctx context.Context) error {
	a.mu.Lock()
	switch a.state {
	case stateClosed:
		a.mu.Unlock()
		return ErrClosed
	case stateDialing, stateOpen:
		a.mu.Unlock()
		return ErrAlreadyOpen
	}
	a.state = stateDialing
	a.mu.Unlock()

	conn, err := a.dialer.Dial(ctx, a.url)
	if err != nil {
		a.mu.Lock()
		if a.state == stateDialing {
			a.state = stateIdle
		}
		a.mu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrDialFailed, a.url, err)
	}

	a.mu.Lock()
	if a.state == stateClosed {
		a.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	a.conn = conn
	a.cancel = cancel
	a.state = stateOpen
	a.loopDone = make(chan struct{})
	close(a.ready)
	go a.readLoop(loopCtx, conn, a.loopDone)
	a.mu.Unlock()

	a.logger.Info("channel open", "url", a.url)
	return nil
}

// Ready reports whether the channel is open.
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateOpen
}

// WaitReady blocks until the channel is open, the adapter is closed, or ctx is
// done.
func (a *Adapter) WaitReady(ctx context.Context) error {
	select {
	case <-a.ready:
		if !a.Ready() {
			return ErrClosed
		}
		return nil
	case <-a.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send encodes req and transmits it. It never queues: it fails with
// ErrNotReady before Open and ErrClosed after Close.
func (a *Adapter) Send(ctx context.Context, req protocol.Request) error {
	a.mu.Lock()
	st, conn := a.state, a.conn
	a.mu.Unlock()

	switch st {
	case stateOpen:
	case stateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}

	data, err := a.codec.EncodeRequest(req)
	if err != nil {
		return err
	}

	a.sendMu.Lock()
	defer a.sendMu.Unlock()
	if err := conn.Send(ctx, data); err != nil {
		return fmt.Errorf("send %s: %w", req.ID, err)
	}
	return nil
}

// Close closes the channel, waits for the read loop to stop and then calls
// OnClose. It must not be called from OnMessage.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.state == stateClosed {
		a.mu.Unlock()
		return nil
	}
	a.state = stateClosed
	close(a.closed)
	conn, cancel, loopDone := a.conn, a.cancel, a.loopDone
	a.mu.Unlock()

	var err error
	if conn != nil {
		cancel()
		err = conn.Close()
		<-loopDone
	}
	a.notifyClose(ErrClosed)
	a.logger.Info("channel closed", "url", a.url)
	return err
}

// Done returns a channel that is closed once the adapter is closed.
func (a *Adapter) Done() <-chan struct{} {
	return a.closed
}

func (a *Adapter) readLoop(ctx context.Context, conn Conn, done chan struct{}) {
	defer close(done)

	for {
		data, err := conn.Receive(ctx)
		if err != nil {
			a.lost(conn, err)
			return
		}

		resp, err := a.codec.DecodeResponse(data)
		if err != nil {
			a.logger.Warn("discarding undecodable message", "error", err, "bytes", len(data))
			continue
		}
		a.onMessage(resp)
	}
}

// lost handles the read side failing. If Close is already in progress it
// owns the shutdown.
func (a *Adapter) lost(conn Conn, cause error) {
	a.mu.Lock()
	if a.state == stateClosed {
		a.mu.Unlock()
		return
	}
	a.state = stateClosed
	close(a.closed)
	cancel := a.cancel
	a.mu.Unlock()

	cancel()
	_ = conn.Close()
	a.logger.Warn("channel lost", "url", a.url, "error", cause)
	a.notifyClose(fmt.Errorf("%w: %w", ErrClosed, cause))
}

func (a *Adapter) notifyClose(err error) {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose(err)
		}
	})
}
