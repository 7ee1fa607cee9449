package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridpulse/csgstat/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "csgstat",
	Short: "Electricity usage and billing monitor",
	Long:  "Periodically fetches usage and billing data for China Southern Power Grid accounts and reconciles the provider's overlapping feeds into per-account snapshots.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
