package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/lab-kiosk/internal/config"
	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/database/mariadb"
	"github.com/kozaktomas/lab-kiosk/internal/database/postgres"
)

// backendFor picks the store driver from the DATABASE_URL scheme.
// postgres:// and postgresql:// URLs select PostgreSQL, anything else is a MySQL DSN.
func backendFor(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "mysql"
}

func openStore(cfg *config.DatabaseConfig) (database.Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	switch backendFor(cfg.URL) {
	case "postgres":
		fmt.Printf("Connecting to PostgreSQL database...\n")
		pool, err := postgres.NewPool(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return pool, nil
	default:
		fmt.Printf("Connecting to MySQL database...\n")
		pool, err := mariadb.NewPool(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
		}
		return pool, nil
	}
}
