package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestOpenAppliesPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var foreignKeys int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&foreignKeys); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("expected foreign keys on, got %d", foreignKeys)
	}

	var busyTimeout int
	if err := db.QueryRow(`PRAGMA busy_timeout`).Scan(&busyTimeout); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("expected busy timeout 5000, got %d", busyTimeout)
	}
}

func TestApplyMigrationsFSRunsOnce(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"002_rows.sql":  {Data: []byte(`INSERT INTO things (name) VALUES ('a');`)},
		"001_table.sql": {Data: []byte(`CREATE TABLE things (name TEXT NOT NULL);`)},
		"README.md":     {Data: []byte(`not a migration`)},
	}

	applied, err := ApplyMigrationsFS(db, fsys)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 migrations, got %d", applied)
	}

	applied, err = ApplyMigrationsFS(db, fsys)
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected no migrations on second run, got %d", applied)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(1) FROM things`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestApplyMigrationsFSStopsOnFailure(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte(`CREATE TABLE;`)},
	}
	if _, err := ApplyMigrationsFS(db, fsys); err == nil {
		t.Fatalf("expected broken migration to fail")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed migration must not be recorded, got %d", count)
	}
}

func TestApplyMigrationsMissingDir(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := ApplyMigrations(db, filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected missing dir error")
	}
}
