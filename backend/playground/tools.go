package playground

import (
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/playground/protocol"
)

// Tool names.
const (
	ToolCreate = "playground_create"
	ToolUpdate = "playground_update"
	ToolRun    = "playground_run"
	ToolRemove = "playground_remove"
)

var nameProperty = map[string]any{
	"type":        "string",
	"description": "Playground name",
}

func envNames() []any {
	out := make([]any, 0, len(protocol.Envs))
	for _, e := range protocol.Envs {
		out = append(out, string(e))
	}
	return out
}

func toolDefs() []model.Tool {
	return []model.Tool{
		{
			Tool: mcp.Tool{
				Name:        ToolCreate,
				Title:       "Create playground",
				Description: "Create a named playground sandbox for a language environment",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": nameProperty,
						"env": map[string]any{
							"type":        "string",
							"enum":        envNames(),
							"description": "Language environment",
						},
					},
					"required": []any{"name", "env"},
				},
			},
			Tags: model.NormalizeTags([]string{"playground", "create", "sandbox"}),
		},
		{
			Tool: mcp.Tool{
				Name:        ToolUpdate,
				Title:       "Update playground",
				Description: "Replace the source code and dependency versions of a playground",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": nameProperty,
						"source": map[string]any{
							"type":        "string",
							"description": "Complete program source",
						},
						"dependencies": map[string]any{
							"type":                 "object",
							"additionalProperties": map[string]any{"type": "string"},
							"description":          "Dependency name to version",
						},
					},
					"required": []any{"name", "source"},
				},
			},
			Tags: model.NormalizeTags([]string{"playground", "update", "source"}),
		},
		{
			Tool: mcp.Tool{
				Name:        ToolRun,
				Title:       "Run playground",
				Description: "Run a playground and stream its program output",
				InputSchema: map[string]any{
					"type":       "object",
					"properties": map[string]any{"name": nameProperty},
					"required":   []any{"name"},
				},
				Annotations: &mcp.ToolAnnotations{OpenWorldHint: boolPtr(true)},
			},
			Tags: model.NormalizeTags([]string{"playground", "run", "output", "stream"}),
		},
		{
			Tool: mcp.Tool{
				Name:        ToolRemove,
				Title:       "Remove playground",
				Description: "Delete a playground sandbox",
				InputSchema: map[string]any{
					"type":       "object",
					"properties": map[string]any{"name": nameProperty},
					"required":   []any{"name"},
				},
				Annotations: &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)},
			},
			Tags: model.NormalizeTags([]string{"playground", "remove", "delete"}),
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// ToolDocs returns documentation for each tool, keyed by tool name.
func (b *Backend) ToolDocs() map[string]tooldoc.DocEntry {
	return map[string]tooldoc.DocEntry{
		ToolCreate: {
			Summary: "Creates an empty playground bound to an environment",
			Notes:   "Fails if a playground with the same name already exists.",
			Examples: []tooldoc.ToolExample{
				{Title: "Elixir playground", Args: map[string]any{"name": "demo", "env": "elixir"}},
			},
		},
		ToolUpdate: {
			Summary: "Replaces the playground's source and dependencies",
			Notes:   "The whole source is replaced; omitted dependencies are dropped.",
			Examples: []tooldoc.ToolExample{
				{
					Title: "Source with one dependency",
					Args: map[string]any{
						"name":         "demo",
						"source":       "IO.puts Jason.encode!(%{ok: true})",
						"dependencies": map[string]any{"jason": "~> 1.4"},
					},
				},
			},
		},
		ToolRun: {
			Summary: "Runs the playground and returns its output lines",
			Notes:   "Dependency fetch progress is part of the output. Streaming callers receive lines as they are produced.",
			Examples: []tooldoc.ToolExample{
				{Title: "Run", Args: map[string]any{"name": "demo"}, ResultHint: "output lines"},
			},
		},
		ToolRemove: {
			Summary: "Deletes the playground",
			Examples: []tooldoc.ToolExample{
				{Title: "Remove", Args: map[string]any{"name": "demo"}},
			},
		},
	}
}
