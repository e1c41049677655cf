package database

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/CrownKira/recipe-app-api/internal/model"
	"github.com/CrownKira/recipe-app-api/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Open connects to the configured database without touching the package level instance.
func Open(cfg *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get generic database object SQL
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// an in-memory sqlite database only exists on the connection that created it
	if cfg.Driver == "sqlite" && strings.Contains(cfg.SQLitePath, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
		return conn, nil
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return conn, nil
}

// InitDB initializes the database connection with configuration and runs migrations
func InitDB(cfg *config.Config) error {
	conn, err := Open(&cfg.DB)
	if err != nil {
		return err
	}
	db = conn

	return Migrate(db)
}

// Migrate creates or updates the schema for every model
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// WaitForDB pings the database once per interval until it answers or ctx is done.
func WaitForDB(ctx context.Context, cfg *config.DBConfig, interval time.Duration, out io.Writer) (*gorm.DB, error) {
	fmt.Fprintln(out, "Waiting for database...")
	for {
		conn, err := Open(cfg)
		if err == nil {
			if sqlDB, derr := conn.DB(); derr == nil {
				if err = sqlDB.PingContext(ctx); err == nil {
					fmt.Fprintln(out, "Database available!")
					return conn, nil
				}
				sqlDB.Close()
			}
		}

		fmt.Fprintf(out, "Database unavailable, waiting %s...\n", interval)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database not available: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the package level instance; used by commands and tests that open their own connection.
func SetDB(conn *gorm.DB) {
	db = conn
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}
