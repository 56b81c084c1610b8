package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhirajadhikary06/voiceurresume/internal/consumer"
)

func newConsumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Process generation requests from a Kafka topic",
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
			a.banner(runCtx, "consume")
			a.serveMetrics(runCtx)

			c, err := consumer.New(cfg.Kafka, a.handle, log, cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer c.Stop()

			err = ignoreCanceled(c.Start(runCtx))
			log.Info(context.WithoutCancel(runCtx), "Video Pipeline stopped")
			return err
		},
	}
}
