package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/storefront-cart/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewSQLiteCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storefront.db")
	client, err := New(context.Background(), config.DBConfig{SQLitePath: path, MaxOpenConns: 1}, true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if client.Dialect() != DialectSQLite {
		t.Fatalf("expected sqlite dialect, got %s", client.Dialect())
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, false, nil); err == nil {
		t.Fatal("expected missing DSN to fail")
	}
}

func TestNewFromGorm(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	client := NewFromGorm(conn, DialectSQLite)
	if client.DB() != conn {
		t.Fatal("expected wrapped connection")
	}
	if _, err := client.SQL(); err != nil {
		t.Fatalf("unexpected sql handle error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}
