package playground

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/toolfoundation/model"

	"github.com/jonwraymond/playground/backend"
	pg "github.com/jonwraymond/playground/playground"
	"github.com/jonwraymond/playground/protocol"
)

// Kind is the backend kind reported by Backend.Kind.
const Kind = "playground"

// DefaultName is the backend name, and tool namespace, when Config.Name is
// empty.
const DefaultName = "playground"

// Config configures a Backend.
type Config struct {
	// Name is the backend instance name.
	// Default: DefaultName
	Name string

	// Manager performs the operations. Required.
	Manager *pg.Manager
}

// Result is the outcome of a completed tool call.
type Result struct {
	Tool   string   `json:"tool"`
	Name   string   `json:"name"`
	Output []string `json:"output,omitempty"`
}

// Backend serves playground tools from a Manager.
type Backend struct {
	name string
	mgr  *pg.Manager

	mu      sync.RWMutex
	enabled bool
}

// New creates a Backend.
func New(cfg Config) (*Backend, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("%w: missing required fields: Manager", pg.ErrConfiguration)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	return &Backend{name: cfg.Name, mgr: cfg.Manager, enabled: true}, nil
}

// Kind returns the backend kind.
func (b *Backend) Kind() string { return Kind }

// Name returns the backend instance name.
func (b *Backend) Name() string { return b.name }

// Enabled returns whether the backend is enabled.
func (b *Backend) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// SetEnabled enables or disables the backend.
func (b *Backend) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// ListTools returns the playground tools.
func (b *Backend) ListTools(_ context.Context) ([]model.Tool, error) {
	tools := toolDefs()
	for i := range tools {
		tools[i].Namespace = b.name
	}
	return tools, nil
}

// Start connects the manager unless it is already connected.
func (b *Backend) Start(ctx context.Context) error {
	if b.mgr.Ready() {
		return nil
	}
	return b.mgr.Connect(ctx)
}

// Stop closes the manager's connection.
func (b *Backend) Stop() error {
	return b.mgr.Close()
}

// Execute runs tool to completion and returns a Result.
func (b *Backend) Execute(ctx context.Context, tool string, args map[string]any) (any, error) {
	if !b.Enabled() {
		return nil, backend.ErrBackendDisabled
	}
	switch tool {
	case ToolCreate, ToolUpdate, ToolRun, ToolRemove:
	default:
		return nil, fmt.Errorf("%w: %s", backend.ErrToolNotFound, tool)
	}

	name, err := nameArg(args)
	if err != nil {
		return nil, err
	}
	result := Result{Tool: tool, Name: name}

	switch tool {
	case ToolCreate:
		env, err := envArg(args)
		if err != nil {
			return nil, err
		}
		if err := b.mgr.Create(ctx, name, env, nil); err != nil {
			return nil, err
		}
	case ToolUpdate:
		source, err := stringArg(args, "source", true)
		if err != nil {
			return nil, err
		}
		deps, err := dependenciesArg(args)
		if err != nil {
			return nil, err
		}
		if err := b.mgr.Update(ctx, name, source, deps, nil); err != nil {
			return nil, err
		}
	case ToolRun:
		out, err := b.mgr.RunOutput(ctx, name)
		if err != nil {
			return nil, err
		}
		result.Output = out
	case ToolRemove:
		if err := b.mgr.Remove(ctx, name, nil); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ExecuteStream runs tool and streams its output. For playground_run each
// output chunk is sent as a string as soon as it arrives; other tools yield
// nothing before the final item. The final item is a Result on success or
// the error. If ctx ends first the channel is closed without a final item.
func (b *Backend) ExecuteStream(ctx context.Context, tool string, args map[string]any) (<-chan any, error) {
	if tool != ToolRun {
		result, err := b.Execute(ctx, tool, args)
		if err != nil {
			return nil, err
		}
		out := make(chan any, 1)
		out <- result
		close(out)
		return out, nil
	}

	if !b.Enabled() {
		return nil, backend.ErrBackendDisabled
	}
	name, err := nameArg(args)
	if err != nil {
		return nil, err
	}

	q := newQueue()
	c, err := b.mgr.Submit(ctx, protocol.RunMessage{Name: name}, func(resp protocol.Response) {
		if resp.Type == protocol.TypeData {
			q.push(resp.Data)
		}
	})
	if err != nil {
		return nil, err
	}

	out := make(chan any)
	go func() {
		defer close(out)
		for {
			finished := false
			select {
			case <-q.ready:
			case <-c.Done():
				finished = true
			case <-ctx.Done():
				return
			}
			for _, chunk := range q.drain() {
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if !finished {
				continue
			}
			var final any = Result{Tool: tool, Name: name}
			if err := c.Err(); err != nil {
				final = err
			}
			select {
			case out <- final:
			case <-ctx.Done():
			}
			return
		}
	}()
	return out, nil
}

// queue buffers output chunks between the delivery goroutine, which must not
// block, and the stream consumer.
type queue struct {
	mu    sync.Mutex
	items []any
	ready chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

func (q *queue) push(v any) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *queue) drain() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func nameArg(args map[string]any) (string, error) {
	raw, err := stringArg(args, "name", true)
	if err != nil {
		return "", err
	}
	name, err := pg.NormalizeName(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", backend.ErrInvalidArgs, err)
	}
	return name, nil
}

func envArg(args map[string]any) (protocol.Env, error) {
	raw, err := stringArg(args, "env", true)
	if err != nil {
		return "", err
	}
	env, err := protocol.ParseEnv(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", backend.ErrInvalidArgs, err)
	}
	return env, nil
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: %q is required", backend.ErrInvalidArgs, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", backend.ErrInvalidArgs, key, v)
	}
	return s, nil
}

func dependenciesArg(args map[string]any) (map[string]string, error) {
	switch v := args["dependencies"].(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]any:
		deps := make(map[string]string, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s, ok := v[k].(string)
			if !ok {
				return nil, fmt.Errorf("%w: version of dependency %q must be a string, got %T",
					backend.ErrInvalidArgs, k, v[k])
			}
			deps[k] = s
		}
		return deps, nil
	default:
		return nil, fmt.Errorf("%w: \"dependencies\" must be an object, got %T", backend.ErrInvalidArgs, v)
	}
}

var (
	_ backend.Backend          = (*Backend)(nil)
	_ backend.StreamingBackend = (*Backend)(nil)
	_ backend.Documented       = (*Backend)(nil)
)
