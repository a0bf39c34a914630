package playground

import (
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"demo", "demo", false},
		{"erlang.example", "erlang.example", false},
		{"  padded\t", "padded", false},
		{"cafe\u0301", "caf\u00e9", false},
		{"", "", true},
		{"   ", "", true},
		{"two words", "", true},
		{"a/b", "", true},
		{`a\b`, "", true},
		{"bell\a", "", true},
		{strings.Repeat("x", MaxNameLength+1), "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
