package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhirajadhikary06/voiceurresume/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process job manifests dropped into the inbox folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger()

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := newApp(runCtx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			a.banner(runCtx, "watch")
			a.serveMetrics(runCtx)

			w, err := watcher.New(cfg.Paths.Inbox, cfg.Paths.Archived, a.blobs, a.handle, log, cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			log.Info(runCtx, "========================================")
			log.Info(runCtx, "Video Pipeline is ready!")
			log.Info(runCtx, "Monitoring: %s", cfg.Paths.Inbox)
			log.Info(runCtx, "Archive: %s", cfg.Paths.Archived)
			log.Info(runCtx, "Press Ctrl+C to stop")
			log.Info(runCtx, "========================================")

			err = ignoreCanceled(w.Start(runCtx))
			log.Info(context.WithoutCancel(runCtx), "Video Pipeline stopped")
			return err
		},
	}
}
