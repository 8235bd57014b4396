package ensemble

import (
	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
)

// Buckets is the number of distinct sums the vote runs over.
const Buckets = draw.MaxSum + 1

// #region config
// Config holds the vote parameters.
type Config struct {
	VolatilityThreshold int     // |last - previous| above this triggers the mirror bonus
	VolatilityBonus     float64 // added to bucket 27 - last
	DefaultWeight       float64 // weight for estimators missing from the weight map
}

// DefaultConfig returns the stock vote parameters.
func DefaultConfig() Config {
	return Config{
		VolatilityThreshold: 9,
		VolatilityBonus:     0.5,
		DefaultWeight:       1.0,
	}
}

// #endregion config

// #region prediction
// Prediction is the ranked recommendation for the next draw.
type Prediction struct {
	Sums       [2]int              // highest score first
	Categories [2]draw.Category    // second label diversified when possible
	Estimates  estimator.Estimates // raw per-estimator values
}

// #endregion prediction

// #region combiner
// Combiner turns estimator outputs and weights into a Prediction.
type Combiner struct {
	set    estimator.Set
	config Config
}

// NewCombiner creates a combiner over the given estimator set.
func NewCombiner(set estimator.Set, config Config) *Combiner {
	return &Combiner{set: set, config: config}
}

// Set returns the estimator set in scan order.
func (c *Combiner) Set() estimator.Set {
	return c.set
}

// Predict runs every estimator on history and combines their votes.
func (c *Combiner) Predict(history []int, weights state.Weights) Prediction {
	est := c.set.Run(history)
	scores := c.Scores(history, est, weights)
	sums := TopTwo(scores)
	return Prediction{
		Sums:       sums,
		Categories: c.Categories(sums, est),
		Estimates:  est,
	}
}

// #endregion combiner

// #region scores
// Scores builds the weighted vote accumulator, including the volatility bonus.
func (c *Combiner) Scores(history []int, est estimator.Estimates, weights state.Weights) [Buckets]float64 {
	var scores [Buckets]float64
	for _, e := range c.set {
		v, ok := est[e.Name()]
		if !ok {
			continue
		}
		w, ok := weights[e.Name()]
		if !ok {
			w = c.config.DefaultWeight
		}
		scores[bucket(v)] += w
	}

	if n := len(history); n >= 2 {
		last, prev := history[n-1], history[n-2]
		if abs(last-prev) > c.config.VolatilityThreshold {
			if idx := draw.MaxSum - last; idx >= 0 && idx < Buckets {
				scores[idx] += c.config.VolatilityBonus
			}
		}
	}
	return scores
}

// TopTwo returns the indices of the two highest scores, best first.
// Equal scores rank the lower index first, so the result is reproducible
// and the two indices are always distinct.
func TopTwo(scores [Buckets]float64) [2]int {
	best, second := -1, -1
	for i, s := range scores {
		switch {
		case best < 0 || s > scores[best]:
			second = best
			best = i
		case second < 0 || s > scores[second]:
			second = i
		}
	}
	return [2]int{best, second}
}

// #endregion scores

// #region categories
// Categories labels both sums. When the labels collide, the second is replaced
// by the first differing category among the raw estimates in set order; if none
// differs the duplicate stays.
func (c *Combiner) Categories(sums [2]int, est estimator.Estimates) [2]draw.Category {
	cats := [2]draw.Category{draw.Classify(sums[0]), draw.Classify(sums[1])}
	if cats[0] != cats[1] {
		return cats
	}
	for _, e := range c.set {
		v, ok := est[e.Name()]
		if !ok {
			continue
		}
		if alt := draw.Classify(v); alt != cats[0] {
			cats[1] = alt
			break
		}
	}
	return cats
}

// #endregion categories

// #region helpers
func bucket(v int) int {
	r := v % Buckets
	if r < 0 {
		r += Buckets
	}
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// #endregion helpers
