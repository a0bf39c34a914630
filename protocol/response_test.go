package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Response
	}{
		{"ok", `{"id":"a","type":"ok"}`, OK("a")},
		{"error", `{"id":"a","type":"error","data":"no such playground"}`, Error("a", "no such playground")},
		{"data", `{"id":"a","type":"data","data":"line1"}`, Data("a", "line1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSONCodec{}.DecodeResponse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeResponseRejectsUnknownType(t *testing.T) {
	inputs := []string{
		`{"id":"a","type":"maybe"}`,
		`{"id":"a","type":0}`,
		`{"id":"a"}`,
		`{"type":"ok"}`,
		`[]`,
	}
	for _, in := range inputs {
		_, err := JSONCodec{}.DecodeResponse([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "input %s", in)
	}
}

func TestTypeTerminal(t *testing.T) {
	assert.True(t, TypeOK.Terminal())
	assert.True(t, TypeError.Terminal())
	assert.False(t, TypeData.Terminal())
}

func TestEncodeResponseOmitsEmptyData(t *testing.T) {
	data, err := JSONCodec{}.EncodeResponse(OK("a"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","type":"ok"}`, string(data))
}
