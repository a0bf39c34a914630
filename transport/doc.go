// Package transport owns the duplex channel underneath a playground
// connection.
//
// A [Conn] moves whole messages in both directions. An [Adapter] dials a Conn
// through a [Dialer], reports readiness, encodes outbound requests, and runs
// the single read loop that decodes inbound responses and hands them to its
// OnMessage callback in arrival order.
//
// The Adapter never queues: [Adapter.Send] fails with [ErrNotReady] until
// [Adapter.Open] has succeeded, and with [ErrClosed] once the channel is gone.
// When the channel closes, for whatever reason, OnClose is called exactly
// once after the read loop has stopped.
//
// Concrete channels live in subpackages: transport/websocket for the remote
// service and transport/mem for in-process pipes.
package transport
