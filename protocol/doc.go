// Package protocol defines the wire envelopes exchanged with a remote
// playground service.
//
// Every message is a single JSON object. Requests carry a client-generated
// correlation ID and exactly one operation:
//
//	{"id":"k3v9x0a1b2c4","message":{"create":{"name":"demo","env":"erlang"}}}
//	{"id":"k3v9x0a1b2c5","message":{"run":"demo"}}
//
// Responses echo the ID and carry one of three classifications:
//
//	{"id":"k3v9x0a1b2c5","type":"data","data":"hello"}
//	{"id":"k3v9x0a1b2c5","type":"ok"}
//
// [TypeOK] and [TypeError] are terminal: no further responses follow for the
// same ID. [TypeData] is a streamed chunk and may repeat.
//
// The [Codec] interface abstracts encoding; [JSONCodec] is the only codec the
// remote service speaks.
package protocol
