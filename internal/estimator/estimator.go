package estimator

import "math"

// Fallback values returned while history is too short.
const (
	FallbackLCG      = 13
	FallbackVMD      = 14
	FallbackLagrange = 13
)

const (
	recurrenceModulus = 29
	outputModulus     = 28

	minLCGHistory      = 3
	minVMDHistory      = 10
	minLagrangeHistory = 5

	vmdWindow       = 10
	vmdDamping      = 0.7
	lagrangeSamples = 4
	lcgDegenerate   = 11
)

// #region lcg
// LCG treats the last three sums as outputs of x' = a*x + c (mod 29),
// solves for a and c, and projects one step ahead.
type LCG struct{}

func (LCG) Name() string { return NameLCG }

func (LCG) Estimate(history []int) int {
	if len(history) < minLCGHistory {
		return FallbackLCG
	}
	n := len(history)
	x1, x2, x3 := history[n-3], history[n-2], history[n-1]

	base := mod(x2-x1, recurrenceModulus)
	if base == 0 {
		return mod(x3+lcgDegenerate, outputModulus)
	}
	inv, ok := modInverse(base, recurrenceModulus)
	if !ok {
		return mod(27-x3, outputModulus)
	}
	a := mod((x3-x2)*inv, recurrenceModulus)
	c := mod(x3-a*x2, recurrenceModulus)
	return mod(a*x3+c, outputModulus)
}

// #endregion lcg

// #region vmd
// Residual pulls the last value back toward the mean of the trailing window.
type Residual struct{}

func (Residual) Name() string { return NameVMD }

func (Residual) Estimate(history []int) int {
	if len(history) < minVMDHistory {
		return FallbackVMD
	}
	window := history[len(history)-vmdWindow:]
	var sum float64
	for _, v := range window {
		sum += float64(v)
	}
	trend := sum / float64(len(window))
	res := float64(history[len(history)-1]) - trend
	return mod(int(math.RoundToEven(trend-vmdDamping*res)), outputModulus)
}

// #endregion vmd

// #region lagrange
// Lagrange fits the interpolating polynomial through the last four sums at
// x = 0..3 and evaluates it at x = 4.
type Lagrange struct{}

func (Lagrange) Name() string { return NameLagrange }

func (Lagrange) Estimate(history []int) int {
	if len(history) < minLagrangeHistory {
		return FallbackLagrange
	}
	y := history[len(history)-lagrangeSamples:]
	xNew := len(y)

	var result float64
	for i := range y {
		term := float64(y[i])
		for j := range y {
			if i == j {
				continue
			}
			term = term * float64(xNew-j) / float64(i-j)
		}
		result += term
	}
	return mod(int(math.Abs(result)), outputModulus)
}

// #endregion lagrange

// #region arithmetic
// mod is the floored modulo: the result is always in [0, m).
func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// modInverse returns x with a*x ≡ 1 (mod m). ok is false when gcd(a, m) != 1.
func modInverse(a, m int) (int, bool) {
	oldR, r := mod(a, m), m
	oldS, s := 1, 0
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, false
	}
	return mod(oldS, m), true
}

// #endregion arithmetic
