package estimator

// #region names
// Estimator names as they appear in weights and persisted snapshots.
const (
	NameLCG      = "lcg"
	NameLagrange = "lagrange"
	NameVMD      = "vmd"
)

// #endregion names

// #region estimator
// Estimator predicts the next sum from an oldest-first history of sums.
// Implementations are pure: the same history always yields the same value in [0, 27].
type Estimator interface {
	Name() string
	Estimate(history []int) int
}

// Estimates maps estimator name to its predicted sum.
type Estimates map[string]int

// Clone returns an independent copy.
func (e Estimates) Clone() Estimates {
	if e == nil {
		return nil
	}
	out := make(Estimates, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// #endregion estimator

// #region set
// Set is an ordered collection of estimators. Order matters: it is the scan
// order used when picking an alternate category.
type Set []Estimator

// DefaultSet returns lcg, lagrange, vmd in that order.
func DefaultSet() Set {
	return Set{LCG{}, Lagrange{}, Residual{}}
}

// Names returns the estimator names in set order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = e.Name()
	}
	return names
}

// Run evaluates every estimator on history.
func (s Set) Run(history []int) Estimates {
	out := make(Estimates, len(s))
	for _, e := range s {
		out[e.Name()] = e.Estimate(history)
	}
	return out
}

// #endregion set
