package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run refresh cycles periodically until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e := newEnv(cfg)
		zap.L().Info("starting refresh loop",
			zap.Duration("interval", e.interval),
			zap.Int("accounts", len(cfg.Accounts)),
		)
		if err := e.worker.Run(ctx, e.interval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		zap.L().Info("refresh loop stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
