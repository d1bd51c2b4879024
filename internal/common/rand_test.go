package common

import (
	"regexp"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	n := 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 2*n {
		t.Fatalf("expected length %d, got %d", 2*n, len(s))
	}
	if !regexp.MustCompile(`^[0-9a-f]+$`).MatchString(s) {
		t.Fatalf("expected lowercase hex, got %q", s)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string, got %q", s)
	}
}

func TestGenerateRandByteArray(t *testing.T) {
	size := 32
	a := GenerateRandByteArray(size)
	b := GenerateRandByteArray(size)
	if len(a) != size || len(b) != size {
		t.Fatalf("expected %d bytes, got %d and %d", size, len(a), len(b))
	}
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", size)
	}
}
