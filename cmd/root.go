package cmd

import (
	"fmt"
	"os"

	"syncvision/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "syncvision",
	Short: "SyncVision Warehouse Reconciliation",
	Long: `SyncVision reconciles an external warehouse catalog against the local
product catalog: it detects low stock, missing products and unpublished
candidates, and keeps an auditable ledger of every run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level so CLI users get readable
		// ISO8601 timestamps instead of the production epoch encoding.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
