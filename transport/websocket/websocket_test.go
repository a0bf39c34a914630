package websocket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer replies to every text frame with the same payload and then
// closes normally when it reads "bye".
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(c)
		ctx := r.Context()
		for {
			data, err := conn.Receive(ctx)
			if err != nil {
				return
			}
			if string(data) == "bye" {
				_ = conn.Close()
				return
			}
			if err := conn.Send(ctx, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialerRoundTrip(t *testing.T) {
	srv := echoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dialer{}.Dial(ctx, wsURL(srv))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(ctx, []byte(`{"id":"a","type":"ok"}`)))
	got, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"a","type":"ok"}`, string(got))
}

func TestReceiveNormalClosureIsEOF(t *testing.T) {
	srv := echoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dialer{}.Dial(ctx, wsURL(srv))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(ctx, []byte("bye")))
	_, err = conn.Receive(ctx)
	assert.True(t, errors.Is(err, io.EOF), "err = %v", err)
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dialer{}.Dial(ctx, wsURL(srv))
	assert.Error(t, err)
}
