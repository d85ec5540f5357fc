package handlers_test

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gabriel/manga-site-adapters/internal/config"
	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/database"
	apihttp "github.com/gabriel/manga-site-adapters/internal/http"
	"github.com/gofiber/fiber/v2"
)

func setupTestApp(t *testing.T, items ...connectors.Connector) (*sql.DB, *fiber.App) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(currentFile), "..", "..", "..", "migrations")
	if err := database.ApplyMigrations(db, migrationsPath); err != nil {
		_ = db.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	registry := connectors.NewRegistry()
	for _, item := range items {
		if err := registry.Register(item); err != nil {
			_ = db.Close()
			t.Fatalf("register %s: %v", item.Key(), err)
		}
	}

	app := apihttp.NewServerWithRegistry(config.Config{AppName: "test-app"}, db, registry)
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = db.Close()
	})

	return db, app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body io.Reader) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer res.Body.Close()

	payload := map[string]any{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil && err != io.EOF {
		t.Fatalf("decode %s %s payload: %v", method, target, err)
	}
	return res, payload
}
