package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
)

// Documented is implemented by backends that ship documentation for their
// tools, keyed by tool name.
type Documented interface {
	ToolDocs() map[string]tooldoc.DocEntry
}

// Catalog indexes the tools of registered backends and routes calls to them
// by tool ID.
type Catalog struct {
	mu       sync.RWMutex
	backends map[string]Backend
	index    index.Index
	docs     *tooldoc.InMemoryStore
}

// NewCatalog creates an empty catalog backed by an in-memory index.
func NewCatalog() *Catalog {
	idx := index.NewInMemoryIndex()
	return &Catalog{
		backends: make(map[string]Backend),
		index:    idx,
		docs:     tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: idx}),
	}
}

// Register adds b and indexes its tools under b.Name().
func (c *Catalog) Register(ctx context.Context, b Backend) error {
	if b == nil {
		return fmt.Errorf("backend is nil")
	}
	name := b.Name()
	if name == "" {
		return fmt.Errorf("backend name is required")
	}

	tools, err := b.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("list tools of %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.backends[name]; exists {
		return fmt.Errorf("%w: %s", ErrBackendExists, name)
	}
	for _, tool := range tools {
		tool.Namespace = name
		if err := c.index.RegisterTool(tool, model.NewLocalBackend(name)); err != nil {
			return fmt.Errorf("index tool %s: %w", FormatToolID(name, tool.Name), err)
		}
	}
	if d, ok := b.(Documented); ok {
		for tool, entry := range d.ToolDocs() {
			if err := c.docs.RegisterDoc(FormatToolID(name, tool), entry); err != nil {
				return fmt.Errorf("document tool %s: %w", FormatToolID(name, tool), err)
			}
		}
	}
	c.backends[name] = b
	return nil
}

// Backend returns the backend registered under name.
func (c *Catalog) Backend(name string) (Backend, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.backends[name]
	return b, ok
}

// Names returns backend names sorted for deterministic output.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.backends))
	for name := range c.backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tools returns the tools of all enabled backends ordered by tool ID.
func (c *Catalog) Tools(ctx context.Context) ([]model.Tool, error) {
	var all []model.Tool
	for _, name := range c.Names() {
		b, ok := c.Backend(name)
		if !ok || !b.Enabled() {
			continue
		}
		tools, err := b.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		for i := range tools {
			tools[i].Namespace = name
		}
		all = append(all, tools...)
	}
	sort.Slice(all, func(i, j int) bool {
		return FormatToolID(all[i].Namespace, all[i].Name) < FormatToolID(all[j].Namespace, all[j].Name)
	})
	return all, nil
}

// Tool returns the indexed definition of id.
func (c *Catalog) Tool(id string) (model.Tool, error) {
	tool, _, err := c.index.GetTool(id)
	if err != nil {
		return model.Tool{}, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	return tool, nil
}

// Describe returns the documentation of id at the given detail level.
func (c *Catalog) Describe(id string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	return c.docs.DescribeTool(id, level)
}

// Examples returns up to maxExamples documented invocations of id.
func (c *Catalog) Examples(id string, maxExamples int) ([]tooldoc.ToolExample, error) {
	return c.docs.ListExamples(id, maxExamples)
}

// Search returns indexed tools matching query, best match first.
func (c *Catalog) Search(query string, limit int) ([]index.Summary, error) {
	return c.index.Search(query, limit)
}

// Execute invokes the tool identified by toolID.
func (c *Catalog) Execute(ctx context.Context, toolID string, args map[string]any) (any, error) {
	b, tool, err := c.resolve(toolID)
	if err != nil {
		return nil, err
	}
	return b.Execute(ctx, tool, args)
}

// ExecuteStream invokes toolID and streams its results. Backends without
// streaming support yield their single result (or error) as one item.
func (c *Catalog) ExecuteStream(ctx context.Context, toolID string, args map[string]any) (<-chan any, error) {
	b, tool, err := c.resolve(toolID)
	if err != nil {
		return nil, err
	}
	if sb, ok := b.(StreamingBackend); ok {
		return sb.ExecuteStream(ctx, tool, args)
	}

	out := make(chan any, 1)
	go func() {
		defer close(out)
		result, err := b.Execute(ctx, tool, args)
		if err != nil {
			out <- err
			return
		}
		out <- result
	}()
	return out, nil
}

func (c *Catalog) resolve(toolID string) (Backend, string, error) {
	name, tool, err := ParseToolID(toolID)
	if err != nil {
		return nil, "", err
	}
	b, ok := c.Backend(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	if !b.Enabled() {
		return nil, "", fmt.Errorf("%w: %s", ErrBackendDisabled, name)
	}
	return b, tool, nil
}

// StartAll starts every enabled backend.
func (c *Catalog) StartAll(ctx context.Context) error {
	for _, name := range c.Names() {
		b, _ := c.Backend(name)
		if !b.Enabled() {
			continue
		}
		if err := b.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", name, err)
		}
	}
	return nil
}

// StopAll stops every backend and returns the joined errors.
func (c *Catalog) StopAll() error {
	var errs []error
	for _, name := range c.Names() {
		b, _ := c.Backend(name)
		if err := b.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
