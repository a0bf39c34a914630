// Package backend exposes playground operations as MCP-shaped tools.
//
// A Backend is a named source of tools. The Catalog registers the tools of
// one or more backends in a tooldiscovery index so they can be searched, and
// routes execution by tool ID ("namespace:name"):
//
//	cat := backend.NewCatalog()
//	_ = cat.Register(ctx, pg) // pg is a *playground.Backend
//	hits, _ := cat.Search("run", 5)
//	out, _ := cat.Execute(ctx, hits[0].ID, map[string]any{"name": "demo"})
package backend
