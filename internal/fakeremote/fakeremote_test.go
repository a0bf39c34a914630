package fakeremote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/playground/protocol"
)

func TestSimulator(t *testing.T) {
	sim := NewSimulator()
	req := func(id string, msg protocol.Message) protocol.Request {
		return protocol.Request{ID: id, Message: msg}
	}

	assert.Equal(t, []protocol.Response{protocol.OK("1")},
		sim.Respond(req("1", protocol.CreateMessage{Name: "p", Env: protocol.EnvElixir})))
	assert.True(t, sim.Exists("p"))
	assert.Equal(t, protocol.TypeError,
		sim.Respond(req("2", protocol.CreateMessage{Name: "p", Env: protocol.EnvElixir}))[0].Type)

	sim.Respond(req("3", protocol.UpdateMessage{
		Name:         "p",
		Content:      "a\n\nb",
		Dependencies: map[string]string{"z": "1", "a": "2"},
	}))
	assert.Equal(t, []protocol.Response{
		protocol.Data("4", "===> Fetching a 2"),
		protocol.Data("4", "===> Fetching z 1"),
		protocol.Data("4", "a"),
		protocol.Data("4", "b"),
		protocol.OK("4"),
	}, sim.Respond(req("4", protocol.RunMessage{Name: "p"})))

	assert.Equal(t, []protocol.Response{protocol.OK("5")}, sim.Respond(req("5", protocol.RemoveMessage{Name: "p"})))
	assert.False(t, sim.Exists("p"))
	assert.Equal(t, []protocol.Response{protocol.Error("6", "no such playground: p")},
		sim.Respond(req("6", protocol.RunMessage{Name: "p"})))
}

func TestServerRecordsAndAnswers(t *testing.T) {
	srv := New(nil)
	t.Cleanup(func() { _ = srv.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := srv.Dialer().Dial(ctx, srv.URL())
	require.NoError(t, err)
	defer conn.Close()

	var codec protocol.JSONCodec
	data, err := codec.EncodeRequest(protocol.Request{ID: "r1", Message: protocol.RunMessage{Name: "ghost"}})
	require.NoError(t, err)
	require.NoError(t, conn.Send(ctx, data))

	select {
	case got := <-srv.Received():
		assert.Equal(t, "r1", got.ID)
	case <-ctx.Done():
		t.Fatal("request not recorded")
	}

	raw, err := conn.Receive(ctx)
	require.NoError(t, err)
	resp, err := codec.DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, protocol.Error("r1", "no such playground: ghost"), resp)
	assert.Len(t, srv.Requests(), 1)
}
