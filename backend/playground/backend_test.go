package playground

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/tooldiscovery/tooldoc"

	"github.com/jonwraymond/playground/backend"
	"github.com/jonwraymond/playground/internal/fakeremote"
	pg "github.com/jonwraymond/playground/playground"
	"github.com/jonwraymond/playground/protocol"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newBackend(t *testing.T, responder fakeremote.Responder) (*Backend, *fakeremote.Server) {
	t.Helper()
	srv := fakeremote.New(responder)
	t.Cleanup(func() { _ = srv.Close() })

	mgr, err := pg.New(pg.Config{URL: srv.URL(), Dialer: srv.Dialer()})
	require.NoError(t, err)

	b, err := New(Config{Manager: mgr})
	require.NoError(t, err)
	require.NoError(t, b.Start(testContext(t)))
	t.Cleanup(func() { _ = b.Stop() })
	return b, srv
}

func collect(t *testing.T, ch <-chan any) []any {
	t.Helper()
	var items []any
	for item := range ch {
		items = append(items, item)
	}
	return items
}

func TestNewRequiresManager(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, pg.ErrConfiguration)
}

func TestListTools(t *testing.T) {
	b, _ := newBackend(t, nil)

	tools, err := b.ListTools(context.Background())
	require.NoError(t, err)

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.Equal(t, DefaultName, tool.Namespace)
		assert.NotNil(t, tool.InputSchema)
		assert.Contains(t, tool.Tags, "playground")
	}
	assert.Equal(t, []string{ToolCreate, ToolUpdate, ToolRun, ToolRemove}, names)
	assert.Equal(t, Kind, b.Kind())
}

func TestExecuteLifecycle(t *testing.T) {
	b, _ := newBackend(t, nil)
	ctx := testContext(t)

	got, err := b.Execute(ctx, ToolCreate, map[string]any{"name": "demo", "env": "elixir"})
	require.NoError(t, err)
	assert.Equal(t, Result{Tool: ToolCreate, Name: "demo"}, got)

	_, err = b.Execute(ctx, ToolUpdate, map[string]any{
		"name":         "demo",
		"source":       "IO.puts 1\nIO.puts 2\n",
		"dependencies": map[string]any{"jason": "~> 1.4"},
	})
	require.NoError(t, err)

	got, err = b.Execute(ctx, ToolRun, map[string]any{"name": "demo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"===> Fetching jason ~> 1.4", "IO.puts 1", "IO.puts 2"}, got.(Result).Output)

	_, err = b.Execute(ctx, ToolRemove, map[string]any{"name": "demo"})
	require.NoError(t, err)

	_, err = b.Execute(ctx, ToolRemove, map[string]any{"name": "demo"})
	assert.ErrorIs(t, err, pg.ErrRemote)
}

func TestExecuteArgumentErrors(t *testing.T) {
	b, srv := newBackend(t, nil)
	ctx := testContext(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want error
	}{
		{"unknown tool", "playground_explode", nil, backend.ErrToolNotFound},
		{"missing name", ToolRun, map[string]any{}, backend.ErrInvalidArgs},
		{"name not string", ToolRun, map[string]any{"name": 7}, backend.ErrInvalidArgs},
		{"bad name", ToolRun, map[string]any{"name": "a/b"}, pg.ErrInvalidName},
		{"bad env", ToolCreate, map[string]any{"name": "x", "env": "cobol"}, backend.ErrInvalidArgs},
		{"missing source", ToolUpdate, map[string]any{"name": "x"}, backend.ErrInvalidArgs},
		{"bad deps", ToolUpdate, map[string]any{"name": "x", "source": "", "dependencies": []any{"a"}}, backend.ErrInvalidArgs},
		{"bad dep version", ToolUpdate, map[string]any{"name": "x", "source": "", "dependencies": map[string]any{"a": 1}}, backend.ErrInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Execute(ctx, tt.tool, tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, srv.Requests())
}

func TestExecuteDisabled(t *testing.T) {
	b, _ := newBackend(t, nil)
	b.SetEnabled(false)
	assert.False(t, b.Enabled())

	_, err := b.Execute(context.Background(), ToolRun, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, backend.ErrBackendDisabled)
	_, err = b.ExecuteStream(context.Background(), ToolRun, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, backend.ErrBackendDisabled)
}

func TestExecuteStreamRun(t *testing.T) {
	b, _ := newBackend(t, nil)
	ctx := testContext(t)

	_, err := b.Execute(ctx, ToolCreate, map[string]any{"name": "demo", "env": "erlang"})
	require.NoError(t, err)
	_, err = b.Execute(ctx, ToolUpdate, map[string]any{"name": "demo", "source": "a\nb\nc"})
	require.NoError(t, err)

	ch, err := b.ExecuteStream(ctx, ToolRun, map[string]any{"name": "demo"})
	require.NoError(t, err)
	items := collect(t, ch)

	require.Len(t, items, 4)
	assert.Equal(t, []any{"a", "b", "c"}, items[:3])
	assert.Equal(t, Result{Tool: ToolRun, Name: "demo"}, items[3])
}

func TestExecuteStreamRemoteError(t *testing.T) {
	b, _ := newBackend(t, nil)

	ch, err := b.ExecuteStream(testContext(t), ToolRun, map[string]any{"name": "ghost"})
	require.NoError(t, err)
	items := collect(t, ch)

	require.Len(t, items, 1)
	err, ok := items[0].(error)
	require.True(t, ok, "final item should be an error, got %T", items[0])
	assert.ErrorIs(t, err, pg.ErrRemote)
}

func TestExecuteStreamDeliversChunksBeforeTerminal(t *testing.T) {
	// Answer nothing automatically; push responses by hand.
	b, srv := newBackend(t, func(protocol.Request) []protocol.Response { return nil })
	ctx := testContext(t)

	ch, err := b.ExecuteStream(ctx, ToolRun, map[string]any{"name": "slow"})
	require.NoError(t, err)

	var req protocol.Request
	select {
	case req = <-srv.Received():
	case <-ctx.Done():
		t.Fatal("request not received")
	}

	require.NoError(t, srv.Push(ctx, protocol.Data(req.ID, "first")))
	select {
	case item := <-ch:
		assert.Equal(t, "first", item)
	case <-ctx.Done():
		t.Fatal("chunk not streamed before terminal response")
	}

	require.NoError(t, srv.Push(ctx, protocol.OK(req.ID)))
	assert.Equal(t, []any{Result{Tool: ToolRun, Name: "slow"}}, collect(t, ch))
}

func TestExecuteStreamConnectionClosed(t *testing.T) {
	b, srv := newBackend(t, func(protocol.Request) []protocol.Response { return nil })
	ctx := testContext(t)

	ch, err := b.ExecuteStream(ctx, ToolRun, map[string]any{"name": "slow"})
	require.NoError(t, err)
	<-srv.Received()

	require.NoError(t, b.Stop())
	items := collect(t, ch)
	require.Len(t, items, 1)
	assert.True(t, errors.Is(items[0].(error), pg.ErrConnectionClosed))
}

func TestExecuteStreamNonRun(t *testing.T) {
	b, _ := newBackend(t, nil)

	ch, err := b.ExecuteStream(testContext(t), ToolCreate, map[string]any{"name": "x", "env": "elixir"})
	require.NoError(t, err)
	assert.Equal(t, []any{Result{Tool: ToolCreate, Name: "x"}}, collect(t, ch))
}

func TestCatalogIntegration(t *testing.T) {
	b, _ := newBackend(t, nil)
	ctx := testContext(t)

	cat := backend.NewCatalog()
	require.NoError(t, cat.Register(ctx, b))

	hits, err := cat.Search("remove", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "playground:playground_remove", hits[0].ID)

	_, err = cat.Execute(ctx, "playground:playground_create", map[string]any{"name": "cat", "env": "elixir"})
	require.NoError(t, err)

	ch, err := cat.ExecuteStream(ctx, "playground:playground_run", map[string]any{"name": "cat"})
	require.NoError(t, err)
	assert.Equal(t, []any{Result{Tool: ToolRun, Name: "cat"}}, collect(t, ch))
}

func TestToolDocsDescribe(t *testing.T) {
	b, _ := newBackend(t, nil)

	names := map[string]bool{}
	tools, _ := b.ListTools(context.Background())
	for _, tool := range tools {
		names[tool.Name] = true
	}
	for name, doc := range b.ToolDocs() {
		assert.True(t, names[name], "doc for unknown tool %s", name)
		assert.NotEmpty(t, doc.Summary)
	}

	cat := backend.NewCatalog()
	require.NoError(t, cat.Register(context.Background(), b))

	doc, err := cat.Describe("playground:playground_run", tooldoc.DetailFull)
	require.NoError(t, err)
	assert.Equal(t, "Runs the playground and returns its output lines", doc.Summary)

	examples, err := cat.Examples("playground:playground_update", 5)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "demo", examples[0].Args["name"])
}
