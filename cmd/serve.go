package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eddge/learnengine/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the learning path HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := openDeps(cmd, "dev")
		if err != nil {
			return err
		}
		defer d.Close()

		cfg := api.ConfigFromEnv()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		srv := api.NewServer(d.progress, d.doubts(ctx), d.log, cfg)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(ctx) })
		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			g.Go(func() error {
				n, err := d.progress.Seed(ctx)
				if err != nil && ctx.Err() == nil {
					return err
				}
				d.log.Info("seeded paths", "created", n)
				return nil
			})
		}
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default EDDGE_ADDR or :8080)")
	serveCmd.Flags().Bool("seed", true, "Create missing paths for catalog topics at startup")
}
