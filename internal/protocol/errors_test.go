package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		CodeFraming,
		CodeDecode,
		CodeUnknownVariant,
		CodeCardinality,
		CodeTimeout,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") || IsKnownCode("") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestError_IsAndWithin(t *testing.T) {
	err := Within("ships[2]", Decodef("health", "missing field"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if errors.Is(err, ErrFraming) {
		t.Fatalf("decode error must not match ErrFraming")
	}
	if got := err.Error(); got != "E_DECODE ships[2].health: missing field" {
		t.Fatalf("message: %q", got)
	}

	wrapped := fmt.Errorf("round 7: %w", err)
	if CodeOf(wrapped) != CodeDecode {
		t.Fatalf("CodeOf through wrap: %q", CodeOf(wrapped))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatalf("CodeOf foreign error should be empty")
	}

	plain := errors.New("io")
	if Within("x", plain) != plain {
		t.Fatalf("Within must pass foreign errors through")
	}
}
