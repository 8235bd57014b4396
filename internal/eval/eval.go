package eval

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
)

// #region eval-harness
// EvalHarness runs lightweight post-cycle validation on the engine snapshot.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks the snapshot invariants and reports hit rates.
// Hit rates are informational and never fail the run.
func (h *EvalHarness) Run(s state.EngineState) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	// 1. Hit rates
	sumRate, catRate := HitRates(s)
	metrics = append(metrics,
		EvalMetric{Name: "sum_hit_rate", Value: sumRate, Pass: true},
		EvalMetric{Name: "cat_hit_rate", Value: catRate, Pass: true},
	)

	// 2. Weight bounds
	names := make([]string, 0, len(s.Weights))
	for name := range s.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w := s.Weights[name]
		pass := w >= h.config.MinWeight && w <= h.config.MaxWeight
		metrics = append(metrics, EvalMetric{Name: "weight_" + name, Value: w, Pass: pass})
		if !pass {
			failReasons = append(failReasons, fmt.Sprintf("weight %s=%.4f outside [%.2f, %.2f]", name, w, h.config.MinWeight, h.config.MaxWeight))
		}
	}

	// 3. Trend window
	trendPass := len(s.Trend) <= h.config.TrendWindow
	metrics = append(metrics, EvalMetric{Name: "trend_window", Value: float64(len(s.Trend)), Pass: trendPass})
	if !trendPass {
		failReasons = append(failReasons, fmt.Sprintf("trend holds %d values, max %d", len(s.Trend), h.config.TrendWindow))
	}

	// 4. Prediction shape and range
	predPass := len(s.Predictions) == 0 || len(s.Predictions) == 2
	for _, p := range s.Predictions {
		if !draw.InRange(p) {
			predPass = false
		}
	}
	metrics = append(metrics, EvalMetric{Name: "prediction_range", Value: float64(len(s.Predictions)), Pass: predPass})
	if !predPass {
		failReasons = append(failReasons, fmt.Sprintf("predictions %v malformed", s.Predictions))
	}

	// 5. Counters
	countPass := s.SumHits <= s.Total && s.CatHits <= s.Total && s.SumHits >= 0 && s.CatHits >= 0
	metrics = append(metrics, EvalMetric{Name: "hit_counters", Value: float64(s.Total), Pass: countPass})
	if !countPass {
		failReasons = append(failReasons, fmt.Sprintf("hit counters %d/%d exceed total %d", s.SumHits, s.CatHits, s.Total))
	}

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region hit-rates
// HitRates returns the sum and category hit percentages, rounded to one decimal.
// A zero total is treated as one so a fresh engine reports 0%.
func HitRates(s state.EngineState) (sumRate, catRate float64) {
	total := s.Total
	if total <= 0 {
		total = 1
	}
	return percent(s.SumHits, total), percent(s.CatHits, total)
}

func percent(hits, total int) float64 {
	return math.Round(float64(hits)/float64(total)*1000) / 10
}

// #endregion hit-rates
