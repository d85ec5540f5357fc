package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
)

func ApplyMigrations(db *sql.DB, migrationsPath string) error {
	if _, err := os.Stat(migrationsPath); err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	_, err := ApplyMigrationsFS(db, os.DirFS(migrationsPath))
	return err
}

// ApplyMigrationsFS runs every not yet applied .sql file at the root of fsys
// in name order, each in its own transaction, and returns how many ran.
func ApplyMigrationsFS(db *sql.DB, fsys fs.FS) (int, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return 0, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("read migrations dir: %w", err)
	}

	migrationFiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		migrationFiles = append(migrationFiles, entry.Name())
	}
	sort.Strings(migrationFiles)

	applied := 0
	for _, fileName := range migrationFiles {
		done, err := migrationApplied(db, fileName)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(fsys, fileName)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", fileName, err)
		}
		if err := applyMigration(db, fileName, string(content)); err != nil {
			return applied, err
		}
		slog.Info("migration applied", "version", fileName)
		applied++
	}

	return applied, nil
}

func applyMigration(db *sql.DB, version string, content string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}

	if strings.TrimSpace(content) != "" {
		if _, err := tx.Exec(content); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, version); err != nil {
		tx.Rollback()
		return fmt.Errorf("record migration %s: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func migrationApplied(db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return count > 0, nil
}
