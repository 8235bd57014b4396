package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/eval"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/snapshot"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/spf13/cobra"
)

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var (
		remote  string
		jsonOut bool
		cycles  int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the stored engine snapshot",
		Long: `Show the engine snapshot: counters, hit rates, weights, the stored
recommendation and the recent trend.

Sources:
  default  - read the configured store directly
  --remote - ask a running engine over gRPC

With a journal configured, --cycles N also lists the last N cycles and the
per-estimator hit rates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			snap, err := readSnapshot(ctx, e, remote)
			if err != nil {
				return e.out.Error("Failed to read snapshot", err.Error(), nil)
			}
			if jsonOut {
				return writeJSON(cmd, snap)
			}
			renderSnapshot(e, snap)

			if cycles > 0 && e.cfg.Journal.Path != "" {
				if err := renderJournal(ctx, e, cycles); err != nil {
					return e.out.Error("Failed to read journal", err.Error(), nil)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC address of a running engine")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the snapshot as JSON")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "list the last N journal cycles")
	return cmd
}

func readSnapshot(ctx context.Context, e *env, remote string) (state.EngineState, error) {
	if remote != "" {
		client, err := snapshot.NewClient(remote)
		if err != nil {
			return state.EngineState{}, err
		}
		defer client.Close()
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return client.Get(ctx)
	}

	store, err := state.Open(ctx, e.cfg.StoreOptions())
	if err != nil {
		return state.EngineState{}, err
	}
	defer store.Close()
	return store.Load(ctx)
}

func renderSnapshot(e *env, s state.EngineState) {
	sumRate, catRate := eval.HitRates(s)

	e.out.Heading("Engine snapshot")
	e.out.Info("  scored      %d\n", s.Total)
	e.out.Info("  sum hits    %d (%.1f%%)\n", s.SumHits, sumRate)
	e.out.Info("  cat hits    %d (%.1f%%)\n", s.CatHits, catRate)
	if s.LastQihao == "" {
		e.out.Info("  last draw   none yet\n")
	} else {
		e.out.Info("  last draw   %s (sum %d)\n", s.LastQihao, s.LastSum)
	}
	e.out.Info("  updated     %s\n", s.LastUpdate)

	e.out.Heading("Recommendation")
	if !s.HasPrediction() {
		e.out.Info("  none yet\n")
	} else {
		for i, sum := range s.Predictions {
			label := "?"
			if i < len(s.RecCats) {
				label = e.out.Category(s.RecCats[i])
			}
			e.out.Info("  %2d  %s\n", sum, label)
		}
		if len(s.AllPredictions) > 0 {
			e.out.Info("  estimates   lcg=%d lagrange=%d vmd=%d\n",
				s.AllPredictions["lcg"], s.AllPredictions["lagrange"], s.AllPredictions["vmd"])
		}
	}

	e.out.Heading("Weights")
	renderWeights(e, s.Weights)

	if len(s.Trend) > 0 {
		parts := make([]string, len(s.Trend))
		for i, v := range s.Trend {
			parts[i] = fmt.Sprint(v)
		}
		e.out.Heading("Trend")
		e.out.Info("  %s\n", strings.Join(parts, " "))
	}

	res := eval.NewEvalHarness(eval.EvalConfig{
		MinWeight:   e.cfg.Engine.MinWeight,
		MaxWeight:   e.cfg.Engine.MaxWeight,
		TrendWindow: e.cfg.Engine.TrendWindow,
	}).Run(s)
	if !res.Passed {
		e.out.Warning("%s\n", res.Reason)
	}
}

func renderJournal(ctx context.Context, e *env, limit int) error {
	j, err := logging.OpenJournal(e.cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	e.out.Heading("Recent cycles")
	e.out.Info("  %-19s  %-10s  %-8s  %6s  %-4s  %-4s\n", "Time", "Draw", "Decision", "Actual", "Sum", "Cat")
	for _, c := range entries {
		actual := "-"
		if c.Actual != nil {
			actual = fmt.Sprint(*c.Actual)
		}
		e.out.Info("  %-19s  %-10s  %-8s  %6s  %-4s  %-4s\n",
			c.CreatedAt.Local().Format(state.TimeLayout), c.Qihao, c.Decision, actual,
			yesNo(c.SumHit), yesNo(c.CatHit))
	}

	stats, err := j.EstimatorStats(ctx, time.Now())
	if err != nil {
		return err
	}
	e.out.Heading("Estimators")
	for _, st := range stats {
		e.out.Info("  %-9s %4d samples  %5.1f%% hit  %5.1f%% recent\n",
			st.Name, st.Samples, st.HitRate*100, st.WeightedRate*100)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
