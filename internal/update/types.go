package update

import "github.com/danielpatrickdp/adaptive-ensemble/internal/state"

// #region decision
// Decision records what the update function decided.
type Decision struct {
	Action string // "commit" | "no_op"
	Reason string
}

// #endregion decision

// #region metrics
// Metrics captures telemetry from one weight update.
type Metrics struct {
	Hits      []string // estimators whose raw value matched the actual sum
	Misses    []string
	DeltaNorm float64 // L2 norm of the weight change
}

// #endregion metrics

// #region update-config
// UpdateConfig holds the reward/decay parameters.
type UpdateConfig struct {
	Reward        float64 // added on an exact hit
	DecayFactor   float64 // multiplied in on a miss
	MinWeight     float64
	MaxWeight     float64
	DefaultWeight float64 // starting weight for estimators not yet in the map
}

// DefaultUpdateConfig returns the stock reward/decay rule.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		Reward:        0.3,
		DecayFactor:   0.9,
		MinWeight:     0.5,
		MaxWeight:     5.0,
		DefaultWeight: 1.0,
	}
}

// #endregion update-config

// #region update-result
// UpdateResult bundles everything returned by Update().
type UpdateResult struct {
	Weights  state.Weights
	Decision Decision
	Metrics  Metrics
}

// #endregion update-result
