package estimator

import "testing"

// #region lcg-tests
func TestLCGWorkedExample(t *testing.T) {
	// base = 2, inverse 15, a = 1, c = 2 -> (7 + 2) mod 28
	if got := (LCG{}).Estimate([]int{3, 5, 7}); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestLCGShortHistory(t *testing.T) {
	for _, h := range [][]int{nil, {4}, {10, 12}} {
		if got := (LCG{}).Estimate(h); got != FallbackLCG {
			t.Fatalf("history %v: expected fallback %d, got %d", h, FallbackLCG, got)
		}
	}
}

func TestLCGDegenerateBase(t *testing.T) {
	// x2 == x1 -> (x3 + 11) mod 28
	if got := (LCG{}).Estimate([]int{1, 1, 5}); got != 16 {
		t.Fatalf("expected 16, got %d", got)
	}
	if got := (LCG{}).Estimate([]int{20, 20, 27}); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestLCGUsesLastThree(t *testing.T) {
	if got := (LCG{}).Estimate([]int{26, 0, 14, 3, 5, 7}); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestModInverse(t *testing.T) {
	for a := 1; a < 29; a++ {
		inv, ok := modInverse(a, 29)
		if !ok {
			t.Fatalf("expected inverse for %d mod 29", a)
		}
		if (a*inv)%29 != 1 {
			t.Fatalf("bad inverse %d for %d", inv, a)
		}
	}
	if _, ok := modInverse(0, 29); ok {
		t.Fatal("0 has no inverse")
	}
	if _, ok := modInverse(4, 28); ok {
		t.Fatal("4 has no inverse mod 28")
	}
}

func TestModFloored(t *testing.T) {
	if mod(-1, 28) != 27 {
		t.Fatalf("expected 27, got %d", mod(-1, 28))
	}
	if mod(-29, 29) != 0 {
		t.Fatalf("expected 0, got %d", mod(-29, 29))
	}
}

// #endregion lcg-tests

// #region vmd-tests
func TestResidualShortHistory(t *testing.T) {
	if got := (Residual{}).Estimate([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}); got != FallbackVMD {
		t.Fatalf("expected fallback %d, got %d", FallbackVMD, got)
	}
}

func TestResidualFlatSeries(t *testing.T) {
	h := []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}
	if got := (Residual{}).Estimate(h); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestResidualRising(t *testing.T) {
	// trend 4.5, residual 4.5 -> 4.5 - 3.15 = 1.35
	h := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	if got := (Residual{}).Estimate(h); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestResidualNegativeWraps(t *testing.T) {
	// trend 2.7, residual 24.3 -> -14.31 rounds to -14 -> 14 mod 28
	h := []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 27}
	if got := (Residual{}).Estimate(h); got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
}

func TestResidualAboveRangeWraps(t *testing.T) {
	// trend 24.3, residual -24.3 -> 41.31 -> 41 mod 28
	h := []int{27, 27, 27, 27, 27, 27, 27, 27, 27, 0}
	if got := (Residual{}).Estimate(h); got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
}

// #endregion vmd-tests

// #region lagrange-tests
func TestLagrangeShortHistory(t *testing.T) {
	if got := (Lagrange{}).Estimate([]int{1, 2, 3, 4}); got != FallbackLagrange {
		t.Fatalf("expected fallback %d, got %d", FallbackLagrange, got)
	}
}

func TestLagrangeLinear(t *testing.T) {
	if got := (Lagrange{}).Estimate([]int{1, 2, 3, 4, 5}); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

func TestLagrangeAlternating(t *testing.T) {
	// -27 - 162 = -189, abs 189 mod 28 = 21
	if got := (Lagrange{}).Estimate([]int{0, 27, 0, 27, 0}); got != 21 {
		t.Fatalf("expected 21, got %d", got)
	}
}

// #endregion lagrange-tests

// #region set-tests
func TestDefaultSetOrder(t *testing.T) {
	names := DefaultSet().Names()
	want := []string{NameLCG, NameLagrange, NameVMD}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestEstimatorsDeterministicAndInRange(t *testing.T) {
	// Deterministic pseudo-random walk over the full sum range.
	seq := make([]int, 200)
	x := 7
	for i := range seq {
		x = (x*17 + 11) % 28
		seq[i] = x
	}

	set := DefaultSet()
	for n := 0; n <= len(seq); n++ {
		h := seq[:n]
		first := set.Run(h)
		second := set.Run(h)
		for name, v := range first {
			if v < 0 || v > 27 {
				t.Fatalf("%s out of range with %d points: %d", name, n, v)
			}
			if second[name] != v {
				t.Fatalf("%s not deterministic with %d points", name, n)
			}
		}
	}
}

func TestEstimatesClone(t *testing.T) {
	e := Estimates{NameLCG: 3}
	c := e.Clone()
	c[NameLCG] = 9
	if e[NameLCG] != 3 {
		t.Fatal("clone shares storage with original")
	}
	if Estimates(nil).Clone() != nil {
		t.Fatal("expected nil clone of nil estimates")
	}
}

// #endregion set-tests
