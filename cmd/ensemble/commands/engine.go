package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/config"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/ensemble"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/orchestrator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/printer"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

// env is what every command needs: config, printer and logger.
type env struct {
	cfg *config.Config
	out *printer.Printer
	log *slog.Logger
}

func loadEnv(cmd *cobra.Command, opts *globalOptions) (*env, error) {
	p := printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), !opts.noColor)
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, p.Error("Configuration error", err.Error(), []string{
			"Check the file passed with --config and any ENSEMBLE_* variables.",
		})
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noColor {
		cfg.Log.Color = false
	}
	return &env{
		cfg: cfg,
		out: printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Log.Color),
		log: logging.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Color),
	}, nil
}

// engine bundles the store, the optional journal and the controller.
type engine struct {
	store   state.Store
	journal *logging.Journal
	ctrl    *orchestrator.Controller
}

func openEngine(ctx context.Context, e *env) (*engine, error) {
	store, err := state.Open(ctx, e.cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	eng := &engine{store: store}

	deps := orchestrator.Deps{
		Store:    store,
		Source:   e.cfg.Source(),
		Combiner: ensemble.NewCombiner(estimator.DefaultSet(), e.cfg.EnsembleConfig()),
		Logger:   e.log,
	}
	if e.cfg.Journal.Path != "" {
		j, err := openJournal(store, e.cfg)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		eng.journal = j
		deps.Journal = j
	}

	eng.ctrl = orchestrator.New(ctx, deps, e.cfg.ControllerConfig())
	return eng, nil
}

// openJournal puts the journal tables in the sqlite store's own database when
// both point at the same file; otherwise the journal opens its own.
func openJournal(store state.Store, cfg *config.Config) (*logging.Journal, error) {
	if s, ok := store.(*state.SQLiteStore); ok && filepath.Clean(cfg.Journal.Path) == filepath.Clean(cfg.Store.Path) {
		return logging.NewJournal(s.DB())
	}
	return logging.OpenJournal(cfg.Journal.Path)
}

func (eng *engine) Close() {
	if eng.journal != nil {
		eng.journal.Close()
	}
	eng.store.Close()
}
