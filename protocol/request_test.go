package protocol

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWireFormat(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name string
		req  Request
	}{
		{"create", Request{ID: "abc123def456", Message: CreateMessage{Name: "demo", Env: EnvErlang}}},
		{"update", Request{ID: "abc123def457", Message: UpdateMessage{
			Name:    "demo",
			Content: `main(_Args) -> io:format("WoW!~n").`,
			Dependencies: map[string]string{
				"jsx":    "3.1.0",
				"cowboy": "2.10.0",
			},
		}}},
		{"update_no_deps", Request{ID: "abc123def458", Message: UpdateMessage{Name: "demo"}}},
		{"run", Request{ID: "abc123def459", Message: RunMessage{Name: "demo"}}},
		{"remove", Request{ID: "abc123def460", Message: RemoveMessage{Name: "demo"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := JSONCodec{}.EncodeRequest(tt.req)
			require.NoError(t, err)
			g.Assert(t, tt.name, data)
		})
	}
}

func TestRequestWithoutMessage(t *testing.T) {
	_, err := JSONCodec{}.EncodeRequest(Request{ID: "x"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRequest(t *testing.T) {
	codec := JSONCodec{}

	req, err := codec.DecodeRequest([]byte(`{"id":"a1","message":{"create":{"name":"demo","env":"elixir"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "a1", req.ID)
	assert.Equal(t, CreateMessage{Name: "demo", Env: EnvElixir}, req.Message)

	req, err = codec.DecodeRequest([]byte(`{"id":"a2","message":{"run":"demo"}}`))
	require.NoError(t, err)
	assert.Equal(t, RunMessage{Name: "demo"}, req.Message)
	assert.Equal(t, OpRun, req.Message.Operation())

	req, err = codec.DecodeRequest([]byte(`{"id":"a3","message":{"remove":"demo"}}`))
	require.NoError(t, err)
	assert.Equal(t, RemoveMessage{Name: "demo"}, req.Message)

	req, err = codec.DecodeRequest([]byte(`{"id":"a4","message":{"update":{"name":"demo","content":"x","dependencies":{"a":"1"}}}}`))
	require.NoError(t, err)
	assert.Equal(t, UpdateMessage{Name: "demo", Content: "x", Dependencies: map[string]string{"a": "1"}}, req.Message)
	assert.Equal(t, "demo", req.Message.Target())
}

func TestDecodeRequestRejectsBadShapes(t *testing.T) {
	inputs := []string{
		`{"id":"a","message":{}}`,
		`{"id":"a","message":{"run":"x","remove":"y"}}`,
		`{"id":"a","message":{"explode":"x"}}`,
		`{"id":"a","message":{"run":{"name":"x"}}}`,
		`not json`,
	}
	for _, in := range inputs {
		_, err := JSONCodec{}.DecodeRequest([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "input %s", in)
	}
}

func TestParseEnv(t *testing.T) {
	env, err := ParseEnv("erlang")
	require.NoError(t, err)
	assert.Equal(t, EnvErlang, env)

	_, err = ParseEnv("cobol")
	assert.ErrorIs(t, err, ErrMalformed)
}
