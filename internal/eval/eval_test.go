package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
)

func TestEvalDefaultPasses(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := h.Run(state.Default())
	if !r.Passed {
		t.Fatalf("expected default state to pass: %s", r.Reason)
	}
	m, ok := r.Metric("sum_hit_rate")
	if !ok || m.Value != 0 {
		t.Fatalf("expected 0%% sum hit rate, got %+v", m)
	}
}

func TestEvalWeightOutOfBounds(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	s := state.Default()
	s.Weights["lcg"] = 6.0
	r := h.Run(s)
	if r.Passed {
		t.Fatal("expected failure for weight above max")
	}
	if !strings.Contains(r.Reason, "weight lcg") {
		t.Fatalf("unexpected reason %q", r.Reason)
	}
	if m, _ := r.Metric("weight_lcg"); m.Pass {
		t.Fatal("expected weight_lcg metric to fail")
	}
}

func TestEvalMultipleFailures(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	s := state.Default()
	s.Trend = make([]int, 31)
	s.Predictions = []int{3}
	r := h.Run(s)
	if r.Passed {
		t.Fatal("expected failure")
	}
	if !strings.Contains(r.Reason, "2 checks") {
		t.Fatalf("expected 2 failed checks, got %q", r.Reason)
	}
}

func TestEvalPredictionRange(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	s := state.Default()
	s.Predictions = []int{3, 28}
	if h.Run(s).Passed {
		t.Fatal("expected failure for prediction 28")
	}
}

func TestEvalHitCounters(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	s := state.Default()
	s.Total = 2
	s.SumHits = 3
	if h.Run(s).Passed {
		t.Fatal("expected failure when hits exceed total")
	}
}

func TestHitRates(t *testing.T) {
	s := state.Default()
	s.Total = 3
	s.SumHits = 1
	s.CatHits = 2
	sumRate, catRate := HitRates(s)
	if sumRate != 33.3 {
		t.Fatalf("expected 33.3, got %v", sumRate)
	}
	if catRate != 66.7 {
		t.Fatalf("expected 66.7, got %v", catRate)
	}
}
