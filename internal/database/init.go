package database

import (
	"fmt"

	"github.com/checkfox/go_reassign/internal/config"
)

// InitFromConfig opens the connection pool described by the application config
func InitFromConfig(cfg *config.Config) (*DB, error) {
	db, err := New(Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// RunMigrations applies all pending migration files from the given directory
func RunMigrations(db *DB, migrationsPath string) error {
	if err := NewMigrationRunner(db, migrationsPath).Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
