// Package websocket carries playground envelopes as WebSocket text frames,
// which is what the remote playground service speaks.
package websocket

import (
	"context"
	"fmt"
	"io"

	"github.com/coder/websocket"

	"github.com/jonwraymond/playground/transport"
)

// DefaultReadLimit bounds a single inbound message. Program output arrives
// as one frame per chunk, so frames stay small.
const DefaultReadLimit = 1 << 20

// Dialer opens WebSocket connections.
type Dialer struct {
	// Options are passed to websocket.Dial. Optional.
	Options *websocket.DialOptions

	// ReadLimit bounds inbound message size.
	// Default: DefaultReadLimit
	ReadLimit int64
}

var _ transport.Dialer = Dialer{}

// Dial connects to url (ws:// or wss://).
func (d Dialer) Dial(ctx context.Context, url string) (transport.Conn, error) {
	c, resp, err := websocket.Dial(ctx, url, d.Options)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	limit := d.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	c.SetReadLimit(limit)
	return NewConn(c), nil
}

// Conn adapts a *websocket.Conn to transport.Conn.
type Conn struct {
	c *websocket.Conn
}

var _ transport.Conn = (*Conn)(nil)

// NewConn wraps an established connection. Servers use it with
// websocket.Accept.
func NewConn(c *websocket.Conn) *Conn {
	return &Conn{c: c}
}

// Send writes data as one text frame.
func (c *Conn) Send(ctx context.Context, data []byte) error {
	return c.c.Write(ctx, websocket.MessageText, data)
}

// Receive reads the next message. A normal closure from the peer is
// reported as io.EOF.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := c.c.Read(ctx)
	if err != nil {
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

// Close performs the closing handshake.
func (c *Conn) Close() error {
	return c.c.Close(websocket.StatusNormalClosure, "")
}
