package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"syncvision/core/config"
	"syncvision/core/database"
	"syncvision/core/loader"
	"syncvision/core/logger"
	"syncvision/core/middleware/auth"
	"syncvision/core/middleware/rayid"
	"syncvision/core/storage"
	"syncvision/core/warehouse"
	"syncvision/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "syncvision/docs/swagger"
)

// @title SyncVision API
// @version 1.0
// @description Warehouse catalog reconciliation service.
// @host localhost:8080
// @BasePath /

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reconciliation HTTP server",
	Long:  `Starts the HTTP server exposing the sync run API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the catalog database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		// 4. Warehouse API client
		whClient, err := warehouse.NewClient(cfg.Warehouse)
		if err != nil {
			logg.Fatal("Failed to create warehouse client", zap.Error(err))
		}

		// 5. Report archive storage (optional)
		var archiveClient storage.Client
		if cfg.Sync.ArchiveReports {
			archiveClient, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		syncFeature, err := sync.NewFeature(cfg.Sync, whClient, db, archiveClient, cfg.Storage.Bucket, logg)
		if err != nil {
			logg.Fatal("Failed to initialize sync feature", zap.Error(err))
		}
		mgr.Register(syncFeature)

		// Middleware Registration
		// RayID first so every request is traceable.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		logg.Info("Shutting down server")
		if err := app.Shutdown(); err != nil {
			logg.Error("Server shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
