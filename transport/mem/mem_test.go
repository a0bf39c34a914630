package mem

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	ctx := context.Background()
	go func() {
		_ = a.Send(ctx, []byte("hello"))
		_ = a.Send(ctx, []byte(""))
		_ = a.Send(ctx, []byte("world"))
	}()

	for _, want := range []string{"hello", "", "world"} {
		got, err := b.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestPipeCloseUnblocksPeer(t *testing.T) {
	a, b := Pipe()

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Receive(context.Background())
		errCh <- err
	}()

	require.NoError(t, a.Close())
	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe), "err = %v", err)
	case <-time.After(time.Second):
		t.Fatal("Receive did not return after peer Close")
	}
}

func TestReceiveHonorsContext(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSendRejectsOversizedFrame(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	err := a.Send(context.Background(), make([]byte, MaxFrameSize+1))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestListenerDialAccept(t *testing.T) {
	l := Listen()
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	accepted := make(chan *Conn, 1)
	go func() {
		c, err := l.Accept(ctx)
		if err == nil {
			accepted <- c
		}
	}()

	client, err := l.Dial(ctx, "mem://playground")
	require.NoError(t, err)
	server := <-accepted

	go func() { _ = client.Send(ctx, []byte("ping")) }()
	got, err := server.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(got))
}

func TestListenerClosed(t *testing.T) {
	l := Listen()
	require.NoError(t, l.Close())

	_, err := l.Dial(context.Background(), "")
	assert.ErrorIs(t, err, ErrListenerClosed)

	_, err = l.Accept(context.Background())
	assert.ErrorIs(t, err, ErrListenerClosed)
}
