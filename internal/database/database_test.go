package database

import (
	"strings"
	"testing"
	"time"
)

func TestConnString(t *testing.T) {
	cfg := Config{
		Host:     "dbhost",
		Port:     "5433",
		User:     "gateway",
		Password: "secret",
		DBName:   "reassignment",
		SSLMode:  "require",
	}

	dsn := cfg.connString()

	for _, part := range []string{
		"host=dbhost", "port=5433", "user=gateway",
		"dbname=reassignment", "sslmode=require", "connect_timeout=5",
	} {
		if !strings.Contains(dsn, part) {
			t.Errorf("Expected DSN to contain %q, got %q", part, dsn)
		}
	}
}

func TestWithPoolDefaults(t *testing.T) {
	cfg := Config{Host: "localhost"}.withPoolDefaults()

	if cfg.MaxOpenConns != 25 {
		t.Errorf("Expected default MaxOpenConns=25, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns != 5 {
		t.Errorf("Expected default MaxIdleConns=5, got %d", cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("Expected default ConnMaxLifetime=5m, got %v", cfg.ConnMaxLifetime)
	}

	custom := Config{MaxOpenConns: 10, MaxIdleConns: 2}.withPoolDefaults()
	if custom.MaxOpenConns != 10 || custom.MaxIdleConns != 2 {
		t.Errorf("Expected explicit pool settings preserved, got %+v", custom)
	}
}

func TestNew_LiveDatabase(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_reassignment_gateway",
		SSLMode:  "disable",
	}

	db, err := New(cfg)
	if err != nil {
		t.Skipf("Skipping test - no database available: %v", err)
		return
	}
	defer db.Close()

	if err := db.HealthCheck(); err != nil {
		t.Errorf("Health check failed: %v", err)
	}

	stats := db.Stats()
	if stats.MaxOpenConnections != 25 {
		t.Errorf("Expected MaxOpenConnections=25, got %d", stats.MaxOpenConnections)
	}
}
