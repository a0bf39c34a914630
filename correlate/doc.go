// Package correlate multiplexes concurrent requests over a single duplex
// channel that has no request/response pairing of its own.
//
// An [Engine] owns a pending table keyed by correlation ID. [Engine.Send]
// allocates an ID, registers the caller's [Handler] and hands the request to
// a [Sender]. The connection's read loop feeds every inbound response to
// [Engine.Dispatch], one at a time, which routes it to the registered handler.
//
// # Lifecycle
//
// A pending operation receives zero or more [protocol.TypeData] responses
// followed by exactly one terminal response ([protocol.TypeOK] or
// [protocol.TypeError]). The terminal response retires the ID; anything that
// arrives for it afterwards is discarded and reported as [ErrUnknownID].
//
// Every Send returns a [Completion] that resolves once the operation has been
// retired from the table. [Engine.Abandon] retires everything at once with
// [ErrConnectionClosed], so no waiter is left hanging when the connection goes
// away.
//
// # Handlers
//
// Handlers run synchronously on the dispatch goroutine. A handler that blocks
// stalls delivery for every other operation on the connection.
package correlate
