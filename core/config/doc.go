// Package config provides configuration management for SyncVision.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file, with defaults declared directly on the config structs.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP trigger surface (port, API key)
//   - Database: local catalog and session ledger connection details
//   - Storage: S3/MinIO credentials for the report archive
//   - Log: logging level and format
//   - Warehouse: external warehouse API endpoint, auth, timeouts, retries
//   - Sync: reconciliation rules (batch size, low-stock threshold, filters)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
