package database

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CrownKira/recipe-app-api/internal/model"
	"github.com/CrownKira/recipe-app-api/pkg/config"

	"gorm.io/gorm/logger"
)

func sqliteConfig(path string) *config.DBConfig {
	return &config.DBConfig{Driver: "sqlite", SQLitePath: path, LogLevel: logger.Silent}
}

func TestInitDB_SQLiteMigratesModels(t *testing.T) {
	cfg := config.Default()
	cfg.DB = *sqliteConfig(filepath.Join(t.TempDir(), "test.db"))

	if err := InitDB(cfg); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"} {
		if !GetDB().Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist after migration", table)
		}
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(&config.DBConfig{Driver: "oracle"}); err == nil {
		t.Error("Open should reject unknown drivers")
	}
}

func TestWaitForDB_Ready(t *testing.T) {
	var out bytes.Buffer

	conn, err := WaitForDB(context.Background(), sqliteConfig(":memory:"), 10*time.Millisecond, &out)
	if err != nil {
		t.Fatalf("WaitForDB failed: %v", err)
	}
	if conn == nil {
		t.Fatal("Expected a connection")
	}
	if !strings.Contains(out.String(), "Database available!") {
		t.Errorf("Expected availability message, got %q", out.String())
	}
	if strings.Contains(out.String(), "unavailable") {
		t.Errorf("Should not have waited, got %q", out.String())
	}
}

func TestWaitForDB_GivesUpWhenContextExpires(t *testing.T) {
	var out bytes.Buffer
	// a directory that does not exist cannot hold a sqlite file
	cfg := sqliteConfig(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := WaitForDB(ctx, cfg, 10*time.Millisecond, &out); err == nil {
		t.Fatal("WaitForDB should fail once the context expires")
	}
	if strings.Count(out.String(), "Database unavailable") < 2 {
		t.Errorf("Expected repeated retries, got %q", out.String())
	}
}

func TestCascadeDeleteUser(t *testing.T) {
	conn, err := Open(sqliteConfig(":memory:"))
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatal(err)
	}

	user := model.User{Email: "cascade@example.com", Password: "x", IsActive: true}
	conn.Create(&user)
	conn.Create(&model.Tag{Name: "Vegan", UserID: user.ID})

	if err := conn.Delete(&user).Error; err != nil {
		t.Fatal(err)
	}

	var count int64
	conn.Model(&model.Tag{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected tags to be removed with their owner, %d left", count)
	}
}
