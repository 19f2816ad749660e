package conversation

import "testing"

// ============================================================================
// Conversation Key Derivation Tests
// ============================================================================

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey("192.168.1.10", "curl/8.0")
	b := DeriveKey("192.168.1.10", "curl/8.0")
	if a != b {
		t.Errorf("Same provenance yielded different keys: %q vs %q", a, b)
	}
}

func TestDeriveKey_Length(t *testing.T) {
	key := DeriveKey("10.0.0.1", "test-agent")
	if len(key) != KeyLength {
		t.Errorf("Expected key length %d, got %d (%q)", KeyLength, len(key), key)
	}

	for _, c := range key {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("Key %q contains non-hex character %q", key, c)
		}
	}
}

func TestDeriveKey_DistinctInputs(t *testing.T) {
	base := DeriveKey("10.0.0.1", "agent")

	if DeriveKey("10.0.0.2", "agent") == base {
		t.Error("Different source address yielded the same key")
	}
	if DeriveKey("10.0.0.1", "other-agent") == base {
		t.Error("Different client signature yielded the same key")
	}
}

func TestDeriveKey_SeparatorPreventsCollision(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide
	if DeriveKey("ab", "c") == DeriveKey("a", "bc") {
		t.Error("Ambiguous concatenation produced a collision")
	}
}
