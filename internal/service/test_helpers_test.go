package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/plotwise/garden/internal/db"
	"github.com/plotwise/garden/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garden.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func mustAddPlant(t *testing.T, sqldb *sql.DB, in service.PlantInput) int64 {
	t.Helper()
	id, err := service.AddPlant(sqldb, in)
	if err != nil {
		t.Fatalf("add plant %q: %v", in.Name, err)
	}
	return id
}
