package eval

// #region eval-config
// EvalConfig holds the bounds the engine snapshot must respect.
type EvalConfig struct {
	MinWeight   float64
	MaxWeight   float64
	TrendWindow int
}

// DefaultEvalConfig returns bounds matching the stock update rule.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinWeight:   0.5,
		MaxWeight:   5.0,
		TrendWindow: 30,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-cycle validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// Metric looks up a metric by name.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result
