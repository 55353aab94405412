// Package server holds configuration for the HTTP trigger surface.
//
// The server itself is assembled in cmd/serve.go; this package only carries
// the settings (listen port, API key) so core/config can aggregate them the
// same way it does for database and storage.
package server
