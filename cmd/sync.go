package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"syncvision/core/config"
	"syncvision/core/database"
	"syncvision/core/logger"
	"syncvision/core/storage"
	"syncvision/core/warehouse"
	"syncvision/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sessionsLimit int

// syncCmd is the parent command for all reconciliation operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run and inspect warehouse reconciliation sessions",
	Long: `Reconcile the external warehouse catalog against the local catalog.

A run streams the warehouse feed, matches every record against the local
catalog and records low stock, missing products and unpublished candidates
in an auditable session ledger.`,
}

// syncRunCmd performs one reconciliation run in the foreground.
var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation session",
	Long: `Run one reconciliation session in the foreground.

Fails immediately when another session is already running. Ctrl-C aborts
the session cleanly at the next batch boundary.`,
	RunE: runSync,
}

// syncSessionsCmd lists recent sessions.
var syncSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent reconciliation sessions",
	RunE:  runSyncSessions,
}

// syncReportCmd prints the report of a finished session.
var syncReportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Print the discrepancy report of a finished session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncReport,
}

func init() {
	syncSessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum sessions to list")

	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncSessionsCmd)
	syncCmd.AddCommand(syncReportCmd)
	RootCmd.AddCommand(syncCmd)
}

// buildService wires the full stack for CLI use and returns the sync service
// plus the logger to clean up.
func buildService() (*sync.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, logg, fmt.Errorf("failed to connect to database: %w", err)
	}

	whClient, err := warehouse.NewClient(cfg.Warehouse)
	if err != nil {
		return nil, logg, fmt.Errorf("failed to create warehouse client: %w", err)
	}

	var archiveClient storage.Client
	if cfg.Sync.ArchiveReports {
		archiveClient, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, logg, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	feature, err := sync.NewFeature(cfg.Sync, whClient, db, archiveClient, cfg.Storage.Bucket, logg)
	if err != nil {
		return nil, logg, fmt.Errorf("failed to initialize sync feature: %w", err)
	}

	return feature.Service(), logg, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, logg, err := buildService()
	if logg != nil {
		defer logg.Sync()
	}
	if err != nil {
		return err
	}

	// Ctrl-C cancels the context; the run finalizes as ABORTED at the
	// next batch boundary instead of dying mid-batch.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	report, err := svc.Report(context.Background(), session.ID)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runSyncSessions(cmd *cobra.Command, args []string) error {
	svc, logg, err := buildService()
	if logg != nil {
		defer logg.Sync()
	}
	if err != nil {
		return err
	}

	sessions, err := svc.Sessions(context.Background(), sessionsLimit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-10s  %-20s  %8s  %8s  %8s  %6s\n",
		"SESSION", "STATUS", "STARTED", "SEEN", "MATCHED", "MISSING", "ERRORS")
	for _, s := range sessions {
		fmt.Printf("%-36s  %-10s  %-20s  %8d  %8d  %8d  %6d\n",
			s.ID, s.Status, s.StartedAt.Format(time.RFC3339),
			s.RecordsSeen, s.RecordsMatched, s.RecordsMissing, s.ErrorCount)
	}
	return nil
}

func runSyncReport(cmd *cobra.Command, args []string) error {
	svc, logg, err := buildService()
	if logg != nil {
		defer logg.Sync()
	}
	if err != nil {
		return err
	}

	report, err := svc.Report(context.Background(), args[0])
	if err != nil {
		return err
	}
	return printJSON(report)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
