package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestPairKey_Symmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	if PairKey(a, b) != PairKey(b, a) {
		t.Errorf("PairKey(a,b) = %q, PairKey(b,a) = %q; want equal", PairKey(a, b), PairKey(b, a))
	}
}

func TestPairKey_DistinctPairs(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	if PairKey(a, b) == PairKey(a, c) {
		t.Error("different pairs must produce different keys")
	}
}

func TestPairKey_Deterministic(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	want := a.String() + ":" + b.String()
	if got := PairKey(b, a); got != want {
		t.Errorf("PairKey = %q, want %q", got, want)
	}
}
