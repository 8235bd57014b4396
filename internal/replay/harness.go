package replay

import (
	"context"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/ensemble"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/eval"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/feed"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/gate"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/orchestrator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/update"
)

// #region types
// ReplayConfig bundles the engine configs for a backtest run.
type ReplayConfig struct {
	UpdateConfig   update.UpdateConfig
	GateConfig     gate.GateConfig
	EvalConfig     eval.EvalConfig
	EnsembleConfig ensemble.Config

	// Window limits each cycle to the newest Window draws of the prefix,
	// the way a paged feed would. 0 feeds the whole prefix.
	Window int

	// StartState resumes from a stored snapshot instead of the default state.
	StartState *state.EngineState
}

// DefaultReplayConfig returns the stock engine parameters with no window.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		UpdateConfig:   update.DefaultUpdateConfig(),
		GateConfig:     gate.DefaultGateConfig(),
		EvalConfig:     eval.DefaultEvalConfig(),
		EnsembleConfig: ensemble.DefaultConfig(),
	}
}

// ReplayResult captures one simulated cycle.
type ReplayResult struct {
	Qihao      string
	Action     string // logging.Decision*
	Reason     string
	Actual     int
	SumHit     bool
	CatHit     bool
	Predicted  [2]int
	Categories [2]draw.Category
	Weights    state.Weights
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCycles int
	Scored      int
	Skipped     int
	Rejected    int
	Failed      int
	SumHits     int
	CatHits     int
	SumHitRate  float64 // percent
	CatHitRate  float64 // percent
	FinalState  state.EngineState
}

// #endregion types

// #region replay
// Replay walks draws oldest-first and runs one controller cycle per draw over
// the prefix ending at that draw. Operates entirely in-memory.
func Replay(draws []draw.Observation, config ReplayConfig) ([]ReplayResult, ReplaySummary) {
	ctx := context.Background()
	draws = draw.Normalize(draws)

	store := state.NewMemoryStore()
	if config.StartState != nil {
		_ = store.Save(ctx, *config.StartState)
	}

	cfg := orchestrator.DefaultConfig()
	cfg.Update = config.UpdateConfig
	cfg.Gate = config.GateConfig
	cfg.Eval = config.EvalConfig
	clock := time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local)
	cfg.Clock = func() time.Time { return clock }

	ctrl := orchestrator.New(ctx, orchestrator.Deps{
		Store:    store,
		Source:   feed.SourceFunc(func(context.Context) ([]draw.Observation, error) { return nil, nil }),
		Combiner: ensemble.NewCombiner(estimator.DefaultSet(), config.EnsembleConfig),
		Logger:   logging.Discard(),
	}, cfg)

	results := make([]ReplayResult, 0, len(draws))
	for i := range draws {
		start := 0
		if config.Window > 0 && i+1 > config.Window {
			start = i + 1 - config.Window
		}
		prefix := draws[start : i+1]

		res, err := ctrl.Process(ctx, prefix)
		r := ReplayResult{
			Qihao:  draw.FormatQihao(draws[i].Qihao),
			Action: res.Decision,
			Actual: draws[i].Sum,
		}
		if err != nil {
			r.Reason = err.Error()
		} else {
			r.SumHit = res.SumHit
			r.CatHit = res.CatHit
			r.Predicted = res.Prediction.Sums
			r.Categories = res.Prediction.Categories
			r.Weights = ctrl.Snapshot().Weights
			if res.Update != nil {
				r.Reason = res.Update.Decision.Reason
			}
		}
		results = append(results, r)
		clock = clock.Add(time.Minute)
	}

	return results, Summarize(results, ctrl.Snapshot())
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, finalState state.EngineState) ReplaySummary {
	s := ReplaySummary{
		TotalCycles: len(results),
		FinalState:  finalState,
	}
	for _, r := range results {
		switch r.Action {
		case logging.DecisionScored:
			s.Scored++
			if r.SumHit {
				s.SumHits++
			}
			if r.CatHit {
				s.CatHits++
			}
		case logging.DecisionSkipped:
			s.Skipped++
		case logging.DecisionRejected:
			s.Rejected++
		case logging.DecisionFailed:
			s.Failed++
		}
	}
	if s.Scored > 0 {
		s.SumHitRate = percent(s.SumHits, s.Scored)
		s.CatHitRate = percent(s.CatHits, s.Scored)
	}
	return s
}

func percent(hits, total int) float64 {
	return float64(int(float64(hits)*1000/float64(total)+0.5)) / 10
}

// #endregion replay
