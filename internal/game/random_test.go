package game

import "testing"

func TestSeededRNGDeterministic(t *testing.T) {
	rngA := seededRNG(12345)
	rngB := seededRNG(12345)

	for i := 0; i < 20; i++ {
		gotA := rngA.IntN(100000)
		gotB := rngB.IntN(100000)
		if gotA != gotB {
			t.Fatalf("expected deterministic sequence, mismatch at %d: %d != %d", i, gotA, gotB)
		}
	}
}

func TestSeedWordChangesWithSalt(t *testing.T) {
	a := seedWord(99, "a")
	b := seedWord(99, "b")
	if a == b {
		t.Fatalf("expected different seed words for different salts")
	}
}

func TestUniformStaysInRange(t *testing.T) {
	rng := seededRNG(7)
	for i := 0; i < 500; i++ {
		v := uniform(rng, 10, 30)
		if v < 10 || v >= 30 {
			t.Fatalf("expected value in [10,30), got %.3f", v)
		}
	}
}

func TestPickStringEmptyPool(t *testing.T) {
	if _, ok := pickString(seededRNG(1), nil); ok {
		t.Fatalf("expected empty pool to report no pick")
	}
}

func TestStreamRNGIndependentPerStream(t *testing.T) {
	a1, a2 := streamRNG(5, "angel"), streamRNG(5, "angel")
	night := streamRNG(5, "night")
	same := true
	for i := 0; i < 20; i++ {
		x, y, z := a1.Uint64(), a2.Uint64(), night.Uint64()
		if x != y {
			t.Fatalf("expected identical streams for one name, mismatch at %d", i)
		}
		if x != z {
			same = false
		}
	}
	if same {
		t.Fatalf("expected different streams for different names")
	}
}

func TestPickStringFromPool(t *testing.T) {
	pool := []string{"a", "b", "c"}
	got, ok := pickString(seededRNG(3), pool)
	if !ok {
		t.Fatalf("expected a pick")
	}
	if got != "a" && got != "b" && got != "c" {
		t.Fatalf("expected a pool member, got %q", got)
	}
}
