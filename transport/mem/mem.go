// Package mem provides an in-process transport built on net.Pipe. It stands
// in for a network channel in tests and embedded setups.
package mem

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/jonwraymond/playground/transport"
)

// MaxFrameSize bounds a single message.
const MaxFrameSize = 1 << 24

var (
	// ErrFrameTooLarge is returned for messages above MaxFrameSize.
	ErrFrameTooLarge = errors.New("mem: frame too large")

	// ErrListenerClosed is returned by Accept and Dial after Close.
	ErrListenerClosed = errors.New("mem: listener closed")
)

// Conn is one end of an in-process pipe. Frames are length-prefixed
// (u32 little endian) on the underlying net.Conn.
type Conn struct {
	c  net.Conn
	br *bufio.Reader

	wmu sync.Mutex
	rmu sync.Mutex
}

var _ transport.Conn = (*Conn)(nil)

// Pipe returns two connected ends.
func Pipe() (*Conn, *Conn) {
	c1, c2 := net.Pipe()
	return newConn(c1), newConn(c2)
}

func newConn(c net.Conn) *Conn {
	return &Conn{c: c, br: bufio.NewReader(c)}
}

// Send writes one frame.
func (c *Conn) Send(ctx context.Context, data []byte) error {
	if len(data) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	_ = c.c.SetWriteDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() { _ = c.c.SetWriteDeadline(time.Now()) })
	defer stop()

	frame := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(data)))
	copy(frame[4:], data)
	if _, err := c.c.Write(frame); err != nil {
		return ctxErr(ctx, err)
	}
	return nil
}

// Receive reads one frame.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.rmu.Lock()
	defer c.rmu.Unlock()

	_ = c.c.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() { _ = c.c.SetReadDeadline(time.Now()) })
	defer stop()

	var lenbuf [4]byte
	if _, err := io.ReadFull(c.br, lenbuf[:]); err != nil {
		return nil, ctxErr(ctx, err)
	}
	n := binary.LittleEndian.Uint32(lenbuf[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.br, buf); err != nil {
		return nil, ctxErr(ctx, err)
	}
	return buf, nil
}

// Close closes both directions; the peer sees io.EOF.
func (c *Conn) Close() error {
	return c.c.Close()
}

func ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Listener hands the server end of each dialed pipe to Accept. It implements
// transport.Dialer, so it can be plugged directly into an adapter.
type Listener struct {
	conns chan *Conn
	done  chan struct{}
	once  sync.Once
}

var _ transport.Dialer = (*Listener)(nil)

// Listen creates a Listener.
func Listen() *Listener {
	return &Listener{
		conns: make(chan *Conn),
		done:  make(chan struct{}),
	}
}

// Dial creates a pipe, waits for Accept to take the server end, and returns
// the client end. The url is ignored.
func (l *Listener) Dial(ctx context.Context, _ string) (transport.Conn, error) {
	client, server := Pipe()
	select {
	case l.conns <- server:
		return client, nil
	case <-l.done:
	case <-ctx.Done():
		_ = client.Close()
		_ = server.Close()
		return nil, ctx.Err()
	}
	_ = client.Close()
	_ = server.Close()
	return nil, ErrListenerClosed
}

// Accept returns the server end of the next dialed pipe.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, ErrListenerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the listener and unblocks Accept and Dial.
func (l *Listener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}
