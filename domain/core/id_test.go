package core

import (
	"testing"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("NewID returned empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestParseStudyID(t *testing.T) {
	if _, err := ParseStudyID(""); err == nil {
		t.Error("expected error for empty study ID")
	}
	if _, err := ParseStudyID("   "); err == nil {
		t.Error("expected error for whitespace study ID")
	}
	id, err := ParseStudyID("PDS2023-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "PDS2023-001" {
		t.Errorf("expected PDS2023-001, got %s", id)
	}
}

func TestNewEndpointKey(t *testing.T) {
	key := NewEndpointKey("ALT", "F")
	if key.String() != "ALT|F" {
		t.Errorf("expected ALT|F, got %s", key)
	}
}

func TestComputeStudyFingerprint_Deterministic(t *testing.T) {
	a := ComputeStudyFingerprint("S1", []float64{2, 20, 200}, []string{"ALT|F", "AST|M"})
	b := ComputeStudyFingerprint("S1", []float64{2, 20, 200}, []string{"AST|M", "ALT|F"})
	if !Hash(a).Equals(Hash(b)) {
		t.Error("fingerprint must be independent of endpoint key order")
	}

	c := ComputeStudyFingerprint("S1", []float64{2, 20, 500}, []string{"ALT|F", "AST|M"})
	if Hash(a).Equals(Hash(c)) {
		t.Error("fingerprint must change when dose list changes")
	}
}
