package demo

import "testing"

func TestFNVHashConcatenationSentinel(t *testing.T) {
	// hash("a"+"b") must differ from hash of "a" and "b" pushed separately,
	// since a 0xFF sentinel is mixed in after each pushed part.
	combined := FNVHash("ab")
	separate := FNVHash("a", "b")
	if combined == separate {
		t.Errorf("FNVHash(\"ab\") should differ from FNVHash(\"a\",\"b\"), both got %#x", combined)
	}
}

func TestFNVHashDeterministic(t *testing.T) {
	if FNVHash("m_iHealth") != FNVHash("m_iHealth") {
		t.Error("FNVHash must be deterministic for identical input")
	}
	if FNVHash("m_iHealth") == FNVHash("m_iAmmo") {
		t.Error("different names should (overwhelmingly likely) hash differently")
	}
}
