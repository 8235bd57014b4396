package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// NewRootCmd builds the ensemble command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ensemble",
		Short: "Adaptive ensemble predictor for draw sums",
		Long: `ensemble polls a public draw feed, scores its previous recommendation
against each new draw, adapts the weights of its three estimators and
publishes two recommended sums for the next draw.

State is a single JSON snapshot kept in a file, SQLite or Redis.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to ensemble.yml (defaults plus ENSEMBLE_* env when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRunCmd(opts),
		newPredictCmd(opts),
		newInspectCmd(opts),
		newReplayCmd(opts),
	)
	return root
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
