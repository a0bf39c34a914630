package playground

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/playground/correlate"
	"github.com/jonwraymond/playground/protocol"
	"github.com/jonwraymond/playground/transport"
)

// Handler receives the responses for one operation in arrival order: zero or
// more protocol.TypeData, then one protocol.TypeOK or protocol.TypeError.
// Handlers run on the connection's delivery goroutine and must not block or
// call Close.
type Handler = correlate.Handler

// Manager manages playgrounds over one connection.
type Manager struct {
	url         string
	dialTimeout time.Duration
	logger      Logger

	adapter *transport.Adapter
	engine  *correlate.Engine
}

// New creates a Manager. No connection is made until Connect.
func New(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	m := &Manager{
		url:         cfg.URL,
		dialTimeout: cfg.DialTimeout,
		logger:      cfg.Logger,
	}

	adapter, err := transport.NewAdapter(transport.AdapterConfig{
		Dialer:    cfg.Dialer,
		URL:       cfg.URL,
		OnMessage: m.deliver,
		OnClose:   m.abandon,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	engine, err := correlate.New(correlate.Config{
		Sender: adapter,
		IDs:    cfg.IDs,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	m.adapter = adapter
	m.engine = engine
	return m, nil
}

func (m *Manager) deliver(resp protocol.Response) {
	// unknown IDs are logged by the engine and dropped
	_ = m.engine.Dispatch(resp)
}

func (m *Manager) abandon(err error) {
	m.engine.Abandon(err)
}

// Connect opens the connection and returns once it is ready for operations.
// If ctx has no deadline, Config.DialTimeout applies.
func (m *Manager) Connect(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.dialTimeout)
		defer cancel()
	}
	if err := m.adapter.Open(ctx); err != nil {
		return err
	}
	m.logger.Info("connected to playground service", "url", m.url)
	return nil
}

// WaitReady blocks until another goroutine's Connect has succeeded, the
// manager is closed, or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	return m.adapter.WaitReady(ctx)
}

// Ready reports whether the connection is open.
func (m *Manager) Ready() bool {
	return m.adapter.Ready()
}

// Pending returns the number of operations awaiting a terminal response.
func (m *Manager) Pending() int {
	return m.engine.Pending()
}

// Create creates a playground for env.
//
// Every operation sends name as returned by NormalizeName: surrounding space
// is trimmed and the rest is converted to Unicode NFC, so " demo" creates the
// playground "demo". Names that still contain space, control characters or
// path separators are rejected with ErrInvalidName before anything is sent.
func (m *Manager) Create(ctx context.Context, name string, env protocol.Env, handler Handler) error {
	return m.do(ctx, protocol.CreateMessage{Name: name, Env: env}, handler)
}

// Update replaces a playground's source and dependencies (name to version).
// A nil dependencies map is sent as empty.
func (m *Manager) Update(ctx context.Context, name, content string, dependencies map[string]string, handler Handler) error {
	return m.do(ctx, protocol.UpdateMessage{Name: name, Content: content, Dependencies: dependencies}, handler)
}

// Run runs a playground. Program output reaches handler as TypeData
// responses.
func (m *Manager) Run(ctx context.Context, name string, handler Handler) error {
	return m.do(ctx, protocol.RunMessage{Name: name}, handler)
}

// Remove deletes a playground.
func (m *Manager) Remove(ctx context.Context, name string, handler Handler) error {
	return m.do(ctx, protocol.RemoveMessage{Name: name}, handler)
}

// RunOutput runs a playground and collects its output chunks.
func (m *Manager) RunOutput(ctx context.Context, name string) ([]string, error) {
	var (
		mu  sync.Mutex
		out []string
	)
	err := m.Run(ctx, name, func(resp protocol.Response) {
		if resp.Type == protocol.TypeData {
			mu.Lock()
			out = append(out, resp.Data)
			mu.Unlock()
		}
	})
	mu.Lock()
	defer mu.Unlock()
	return out, err
}

// Submit validates and sends msg without waiting for it to finish. The
// target name is rewritten by NormalizeName, as described on Create. The
// returned Completion resolves after the terminal response.
func (m *Manager) Submit(ctx context.Context, msg protocol.Message, handler Handler) (*correlate.Completion, error) {
	msg, err := validate(msg)
	if err != nil {
		return nil, err
	}
	if !m.adapter.Ready() {
		select {
		case <-m.adapter.Done():
			return nil, ErrClosed
		default:
			return nil, ErrNotReady
		}
	}
	c, err := m.engine.Send(ctx, msg, handler)
	if errors.Is(err, correlate.ErrClosed) {
		return nil, ErrClosed
	}
	return c, err
}

func (m *Manager) do(ctx context.Context, msg protocol.Message, handler Handler) error {
	c, err := m.Submit(ctx, msg, handler)
	if err != nil {
		return err
	}
	return c.Wait(ctx)
}

// Close closes the connection. Operations still pending resolve with an
// error wrapping ErrConnectionClosed.
func (m *Manager) Close() error {
	return m.adapter.Close()
}

// validate normalizes the target name and checks operation-specific fields.
func validate(msg protocol.Message) (protocol.Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", ErrInvalidRequest)
	}
	name, err := NormalizeName(msg.Target())
	if err != nil {
		return nil, err
	}

	switch m := msg.(type) {
	case protocol.CreateMessage:
		if !m.Env.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, m.Env)
		}
		m.Name = name
		return m, nil
	case protocol.UpdateMessage:
		for dep, version := range m.Dependencies {
			if dep == "" || version == "" {
				return nil, fmt.Errorf("%w: dependency %q has empty name or version", ErrInvalidRequest, dep)
			}
		}
		m.Name = name
		return m, nil
	case protocol.RunMessage:
		m.Name = name
		return m, nil
	case protocol.RemoveMessage:
		m.Name = name
		return m, nil
	}
	return nil, fmt.Errorf("%w: unsupported operation %q", ErrInvalidRequest, msg.Operation())
}
