package correlate

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBase36Generator(t *testing.T) {
	g := Base36Generator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		if len(id) != DefaultIDLength {
			t.Fatalf("len(%q) = %d, want %d", id, len(id), DefaultIDLength)
		}
		for _, r := range id {
			if !strings.ContainsRune(base36Alphabet, r) {
				t.Fatalf("id %q contains %q outside [0-9a-z]", id, r)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestBase36GeneratorLength(t *testing.T) {
	if id := (Base36Generator{Length: 20}).Generate(); len(id) != 20 {
		t.Errorf("len = %d, want 20", len(id))
	}
}

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.Generate()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("Version() = %d, want 7", parsed.Version())
	}
}

func TestFixedGeneratorExhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	if got := g.Generate(); got != "only" {
		t.Errorf("Generate() = %q, want %q", got, "only")
	}
	defer func() {
		if recover() == nil {
			t.Error("Generate() did not panic when exhausted")
		}
	}()
	g.Generate()
}
