package commands

import (
	"encoding/json"
	"sort"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/orchestrator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/spf13/cobra"
)

func newPredictCmd(opts *globalOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run a single cycle and print the new recommendation",
		Long: `Run exactly one cycle against the configured feed and store, then
print the recommendation. Useful from cron or to check a configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			eng, err := openEngine(ctx, e)
			if err != nil {
				return e.out.Error("Failed to open engine", err.Error(), nil)
			}
			defer eng.Close()

			res, err := eng.ctrl.RunCycle(ctx)
			if err != nil {
				return e.out.Error("Cycle failed", err.Error(), []string{
					"The stored state was left unchanged; try again on the next draw.",
				})
			}

			snap := eng.ctrl.Snapshot()
			if jsonOut {
				return writeJSON(cmd, snap)
			}
			renderCycle(e, res, snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the resulting snapshot as JSON")
	return cmd
}

func renderCycle(e *env, res orchestrator.CycleResult, snap state.EngineState) {
	if res.Scored {
		e.out.Info("draw %s: sum %d  sum %s  category %s\n",
			res.Qihao, res.Actual, e.out.Hit(res.SumHit), e.out.Hit(res.CatHit))
	} else {
		e.out.Info("draw %s: sum %d  (nothing to score)\n", res.Qihao, res.Actual)
	}
	p := res.Prediction
	e.out.Success("next: %d (%s), %d (%s)\n",
		p.Sums[0], e.out.Category(p.Categories[0]),
		p.Sums[1], e.out.Category(p.Categories[1]))
	renderWeights(e, snap.Weights)
}

func renderWeights(e *env, w state.Weights) {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.out.Info("  %-9s %.4f\n", name, w[name])
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
