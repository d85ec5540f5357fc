package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/models"
)

const sourceColumns = `id, key, name, lang, connector_kind, base_url, nsfw, enabled, healthy, last_error, last_checked_at, created_at, updated_at`

type SourceRepository struct {
	db *sql.DB
}

func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Sync mirrors the registry into the sources table. Metadata is refreshed
// from the descriptors, the enabled flag an operator set is kept, and rows
// for sites that are no longer registered are removed.
func (r *SourceRepository) Sync(descriptors []connectors.Descriptor) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin sources sync tx: %w", err)
	}

	keys := make([]any, 0, len(descriptors))
	for _, descriptor := range descriptors {
		key := strings.ToLower(strings.TrimSpace(descriptor.Key))
		if key == "" {
			continue
		}
		keys = append(keys, key)

		_, err := tx.Exec(`
			INSERT INTO sources (key, name, lang, connector_kind, base_url, nsfw)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				name = excluded.name,
				lang = excluded.lang,
				connector_kind = excluded.connector_kind,
				base_url = excluded.base_url,
				nsfw = excluded.nsfw,
				updated_at = CURRENT_TIMESTAMP
		`, key, descriptor.Name, descriptor.Lang, descriptor.Kind, descriptor.BaseURL, descriptor.NSFW)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert source %s: %w", key, err)
		}
	}

	if len(keys) == 0 {
		_, err = tx.Exec(`DELETE FROM sources`)
	} else {
		_, err = tx.Exec(`DELETE FROM sources WHERE key NOT IN (`+sqlPlaceholders(len(keys))+`)`, keys...)
	}
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prune sources: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sources sync tx: %w", err)
	}
	return nil
}

func (r *SourceRepository) List() ([]models.Source, error) {
	rows, err := r.db.Query(`SELECT ` + sourceColumns + ` FROM sources ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	items := make([]models.Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}

	return items, nil
}

func (r *SourceRepository) GetByKey(key string) (*models.Source, error) {
	row := r.db.QueryRow(`SELECT `+sourceColumns+` FROM sources WHERE key = ?`, strings.ToLower(strings.TrimSpace(key)))

	source, err := scanSource(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return source, nil
}

// SetEnabled reports false when no source has the key.
func (r *SourceRepository) SetEnabled(key string, enabled bool) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE sources
		SET enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE key = ?
	`, enabled, strings.ToLower(strings.TrimSpace(key)))
	if err != nil {
		return false, fmt.Errorf("set source enabled: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set source enabled rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SourceRepository) RecordHealth(key string, healthy bool, errText string, checkedAt time.Time) error {
	var lastError any
	if trimmed := strings.TrimSpace(errText); trimmed != "" {
		lastError = trimmed
	}

	_, err := r.db.Exec(`
		UPDATE sources
		SET healthy = ?, last_error = ?, last_checked_at = ?
		WHERE key = ?
	`, healthy, lastError, checkedAt.UTC(), strings.ToLower(strings.TrimSpace(key)))
	if err != nil {
		return fmt.Errorf("record source health: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*models.Source, error) {
	var source models.Source
	var healthy sql.NullBool
	var lastError sql.NullString
	var lastCheckedAt sql.NullTime
	if err := row.Scan(
		&source.ID,
		&source.Key,
		&source.Name,
		&source.Lang,
		&source.ConnectorKind,
		&source.BaseURL,
		&source.NSFW,
		&source.Enabled,
		&healthy,
		&lastError,
		&lastCheckedAt,
		&source.CreatedAt,
		&source.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan source: %w", err)
	}

	if healthy.Valid {
		source.Healthy = &healthy.Bool
	}
	if lastError.Valid {
		source.LastError = &lastError.String
	}
	if lastCheckedAt.Valid {
		checked := lastCheckedAt.Time.UTC()
		source.LastCheckedAt = &checked
	}
	return &source, nil
}

func sqlPlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
