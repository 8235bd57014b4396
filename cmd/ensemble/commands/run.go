package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/snapshot"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the feed and keep predicting until interrupted",
		Long: `Run the prediction loop: one cycle immediately, then one every
feed.interval. Each cycle fetches recent draws, scores the stored
recommendation when a new draw arrived, adapts the weights and stores the
next recommendation.

When server.grpc_addr is set the snapshot service is served alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng, err := openEngine(ctx, e)
			if err != nil {
				return e.out.Error("Failed to start", err.Error(), []string{
					"Check store.backend and its connection settings.",
				})
			}
			defer eng.Close()

			serveErr := make(chan error, 1)
			if addr := e.cfg.Server.GRPCAddr; addr != "" {
				srv := snapshot.NewServer(eng.ctrl, e.log)
				go func() {
					err := srv.ListenAndServe(ctx, addr)
					if err != nil {
						e.log.Error("snapshot service stopped", "err", err)
						stop()
					}
					serveErr <- err
				}()
			} else {
				serveErr <- nil
			}

			e.out.Step("engine running (store: %s, interval: %s)\n", e.cfg.Store.Backend, e.cfg.Feed.Interval)
			runErr := eng.ctrl.Run(ctx)
			stop()

			if err := <-serveErr; err != nil {
				return e.out.Error("Snapshot service failed", err.Error(), nil)
			}
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			e.out.Success("stopped\n")
			return nil
		},
	}
}
