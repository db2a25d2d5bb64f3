package ids

import (
	"strings"
	"testing"
)

func TestCreateULID(t *testing.T) {
	a := CreateULID()
	b := CreateULID()

	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26-character ULIDs, got %q and %q", a, b)
	}
	if a == b {
		t.Fatal("expected distinct ULIDs")
	}
	if a > b {
		t.Errorf("expected monotonic ordering, got %q then %q", a, b)
	}
}

func TestCreateContainerSuffix(t *testing.T) {
	s := CreateContainerSuffix()
	if len(s) != 26 {
		t.Fatalf("expected 26-character suffix, got %q", s)
	}
	if s != strings.ToLower(s) {
		t.Errorf("expected lowercase suffix, got %q", s)
	}
}
