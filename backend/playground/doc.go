// Package playground adapts a playground Manager into a backend.Backend.
//
// It exposes four tools:
//
//   - playground_create: create a named playground for an environment
//   - playground_update: replace its source and dependencies
//   - playground_run: run it; ExecuteStream yields output as it arrives
//   - playground_remove: delete it
//
// Tool arguments are plain JSON-compatible maps, as an MCP client would send
// them.
package playground
