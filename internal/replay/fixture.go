package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a backtest fixture.
type Fixture struct {
	Description string          `json:"description"`
	Window      int             `json:"window,omitempty"`
	Draws       []FixtureDraw   `json:"draws"`
	Expected    FixtureExpected `json:"expected"`
}

// FixtureDraw is one historical draw.
type FixtureDraw struct {
	Qihao int64 `json:"qihao"`
	Sum   int   `json:"sum"`
}

// FixtureExpected captures the totals a run must reproduce.
type FixtureExpected struct {
	Total            int   `json:"total"`
	SumHits          int   `json:"sum_hits"`
	CatHits          int   `json:"cat_hits"`
	FinalPredictions []int `json:"final_predictions,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Observations converts the fixture draws to domain observations.
func (f *Fixture) Observations() []draw.Observation {
	out := make([]draw.Observation, len(f.Draws))
	for i, d := range f.Draws {
		out[i] = draw.Observation{Qihao: d.Qihao, Sum: d.Sum}
	}
	return out
}

// ReplayConfig returns the default config with the fixture's window applied.
func (f *Fixture) ReplayConfig() ReplayConfig {
	cfg := DefaultReplayConfig()
	cfg.Window = f.Window
	return cfg
}

// ExportFixture writes draws and the totals a replay of them produced. window
// is the ReplayConfig.Window the replay ran with, so loading the fixture
// reproduces the same run.
func ExportFixture(path, description string, window int, draws []draw.Observation, summary ReplaySummary) error {
	f := Fixture{
		Description: description,
		Window:      window,
		Draws:       make([]FixtureDraw, len(draws)),
		Expected: FixtureExpected{
			Total:            summary.FinalState.Total,
			SumHits:          summary.FinalState.SumHits,
			CatHits:          summary.FinalState.CatHits,
			FinalPredictions: summary.FinalState.Predictions,
		},
	}
	for i, d := range draws {
		f.Draws[i] = FixtureDraw{Qihao: d.Qihao, Sum: d.Sum}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader
