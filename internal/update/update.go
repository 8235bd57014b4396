package update

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
)

// #region update-function
// Update is a pure function that scores each estimator's raw prediction
// against the actual sum: a hit earns Reward, a miss decays by DecayFactor,
// and every scored weight then lands in [MinWeight, MaxWeight] even when it
// started outside that range. Weights of estimators absent from estimates are
// carried over unchanged. old is never modified.
func Update(old state.Weights, estimates estimator.Estimates, actual int, config UpdateConfig) UpdateResult {
	next := old.Clone()
	if next == nil {
		next = state.Weights{}
	}

	names := make([]string, 0, len(estimates))
	for name := range estimates {
		names = append(names, name)
	}
	sort.Strings(names)

	var hits, misses []string
	var sumSq float64
	for _, name := range names {
		w, ok := next[name]
		if !ok {
			w = config.DefaultWeight
		}
		prev := w

		if estimates[name] == actual {
			w += config.Reward
			hits = append(hits, name)
		} else {
			w *= config.DecayFactor
			misses = append(misses, name)
		}
		w = math.Min(math.Max(w, config.MinWeight), config.MaxWeight)
		next[name] = w

		d := w - prev
		sumSq += d * d
	}
	deltaNorm := math.Sqrt(sumSq)

	decision := Decision{Action: "no_op", Reason: "weights unchanged"}
	if deltaNorm > 0 {
		decision = Decision{
			Action: "commit",
			Reason: fmt.Sprintf("hits: %v, misses: %v, delta norm: %.6f", hits, misses, deltaNorm),
		}
	}

	return UpdateResult{
		Weights:  next,
		Decision: decision,
		Metrics: Metrics{
			Hits:      hits,
			Misses:    misses,
			DeltaNorm: deltaNorm,
		},
	}
}

// #endregion update-function
