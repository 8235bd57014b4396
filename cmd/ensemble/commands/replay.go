package commands

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/feed"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/replay"
	"github.com/spf13/cobra"
)

func newReplayCmd(opts *globalOptions) *cobra.Command {
	var (
		fixture bool
		window  int
		export  string
		verbose bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Backtest the engine over a draw history",
		Long: `Replay a draw history offline, one cycle per draw, and report hit rates.

FILE is either a feed document ({"data":[{"qihao":..,"sum":..}]}) or, with
--fixture, a fixture whose expected totals are checked after the run.

Examples:
  ensemble replay history.json --window 20
  ensemble replay --fixture testdata/short_run.json
  ensemble replay history.json --export fixture.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}

			cfg := replay.DefaultReplayConfig()
			cfg.UpdateConfig = e.cfg.UpdateConfig()
			cfg.EnsembleConfig = e.cfg.EnsembleConfig()
			cfg.EvalConfig = e.cfg.ControllerConfig().Eval

			var draws []draw.Observation
			var fx *replay.Fixture
			if fixture {
				fx, err = replay.LoadFixture(args[0])
				if err != nil {
					return e.out.Error("Failed to load fixture", err.Error(), nil)
				}
				draws = fx.Observations()
				cfg.Window = fx.Window
			} else {
				draws, err = feed.NewFileSource(args[0]).Fetch(cmd.Context())
				if err != nil {
					return e.out.Error("Failed to read draws", err.Error(), nil)
				}
			}
			if cmd.Flags().Changed("window") {
				cfg.Window = window
			}

			results, summary := replay.Replay(draws, cfg)
			if jsonOut {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				if verbose {
					renderReplayRows(e, results)
				}
				renderReplaySummary(e, summary)
			}

			if export != "" {
				if err := replay.ExportFixture(export, fmt.Sprintf("replay of %s", args[0]), cfg.Window, draws, summary); err != nil {
					return e.out.Error("Failed to export fixture", err.Error(), nil)
				}
				e.out.Success("fixture written to %s\n", export)
			}

			if fx != nil {
				return checkFixture(e, fx, summary)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fixture, "fixture", false, "treat FILE as a fixture and check its expected totals")
	cmd.Flags().IntVar(&window, "window", 0, "draws visible per cycle (0 = whole prefix)")
	cmd.Flags().StringVar(&export, "export", "", "write the draws and resulting totals as a fixture")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every cycle")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the summary as JSON")
	return cmd
}

func renderReplayRows(e *env, results []replay.ReplayResult) {
	e.out.Info("%-10s  %-8s  %6s  %-9s  %-4s  %-4s\n", "Draw", "Action", "Actual", "Next", "Sum", "Cat")
	for _, r := range results {
		next := "-"
		if r.Action == logging.DecisionScored || r.Action == logging.DecisionSkipped {
			next = fmt.Sprintf("%d,%d", r.Predicted[0], r.Predicted[1])
		}
		sumHit, catHit := "-", "-"
		if r.Action == logging.DecisionScored {
			sumHit, catHit = e.out.Hit(r.SumHit), e.out.Hit(r.CatHit)
		}
		e.out.Info("%-10s  %-8s  %6d  %-9s  %-4s  %-4s\n", r.Qihao, r.Action, r.Actual, next, sumHit, catHit)
	}
}

func renderReplaySummary(e *env, s replay.ReplaySummary) {
	e.out.Heading("Replay summary")
	e.out.Info("  cycles      %d (%d scored, %d skipped, %d rejected)\n", s.TotalCycles, s.Scored, s.Skipped, s.Rejected)
	e.out.Info("  sum hits    %d (%.1f%%)\n", s.SumHits, s.SumHitRate)
	e.out.Info("  cat hits    %d (%.1f%%)\n", s.CatHits, s.CatHitRate)
	e.out.Heading("Final weights")
	renderWeights(e, s.FinalState.Weights)
}

func checkFixture(e *env, fx *replay.Fixture, s replay.ReplaySummary) error {
	final := s.FinalState
	var diffs []string
	if final.Total != fx.Expected.Total {
		diffs = append(diffs, fmt.Sprintf("total: expected %d, got %d", fx.Expected.Total, final.Total))
	}
	if final.SumHits != fx.Expected.SumHits {
		diffs = append(diffs, fmt.Sprintf("sum_hits: expected %d, got %d", fx.Expected.SumHits, final.SumHits))
	}
	if final.CatHits != fx.Expected.CatHits {
		diffs = append(diffs, fmt.Sprintf("cat_hits: expected %d, got %d", fx.Expected.CatHits, final.CatHits))
	}
	if want := fx.Expected.FinalPredictions; len(want) > 0 && fmt.Sprint(want) != fmt.Sprint(final.Predictions) {
		diffs = append(diffs, fmt.Sprintf("final_predictions: expected %v, got %v", want, final.Predictions))
	}
	if len(diffs) > 0 {
		return e.out.Error("Fixture mismatch", fx.Description, diffs)
	}
	e.out.Success("fixture matches: %s\n", fx.Description)
	return nil
}
