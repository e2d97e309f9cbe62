package main

import (
	"github.com/Aditeya/smpl-payments/internal/config" // Custom package for configuration
	"github.com/Aditeya/smpl-payments/internal/db"     // Custom package for migration
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Database Source Name (DSN) for MySQL connection
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db.Migrate(dsn)
}
