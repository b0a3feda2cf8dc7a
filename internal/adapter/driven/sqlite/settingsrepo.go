package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SettingsTable = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsTable port interface.
// Sensitive values pass through the SecretBox on the way in and out.
type SettingsRepo struct {
	db  *DB
	box *SecretBox
}

// NewSettingsRepo creates a new SettingsRepo backed by the given DB.
// box may be nil, in which case sensitive values are stored in plaintext.
func NewSettingsRepo(db *DB, box *SecretBox) *SettingsRepo {
	return &SettingsRepo{db: db, box: box}
}

// Exists reports whether the settings table has been created.
func (r *SettingsRepo) Exists(ctx context.Context) (bool, error) {
	const query = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'settings'`

	var n int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return false, fmt.Errorf("check settings table: %w", err)
	}
	return n > 0, nil
}

// ListAll returns every settings row ordered by key.
func (r *SettingsRepo) ListAll(ctx context.Context) ([]model.SettingRow, error) {
	const query = `
		SELECT setting_key, setting_value, created_at, updated_at
		FROM settings
		ORDER BY setting_key
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.SettingRow
	for rows.Next() {
		var (
			row                  model.SettingRow
			createdAt, updatedAt string
		)
		if err := rows.Scan(&row.Key, &row.Value, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}

		if model.IsSensitiveSetting(row.Key) {
			opened, err := r.box.Open(row.Value)
			if err != nil {
				return nil, fmt.Errorf("decrypt setting %s: %w", row.Key, err)
			}
			row.Value = opened
		}

		if row.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", row.Key, err)
		}
		if row.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at for %s: %w", row.Key, err)
		}

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return out, nil
}

// UpsertAll writes every value in one transaction. Existing rows keep their
// created_at; updated_at is refreshed.
func (r *SettingsRepo) UpsertAll(ctx context.Context, values map[string]string) error {
	const query = `
		INSERT INTO settings (setting_key, setting_value)
		VALUES (?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET
			setting_value = excluded.setting_value,
			updated_at = CURRENT_TIMESTAMP
	`
	return r.writeAll(ctx, "upsert", query, values)
}

// InsertMissing writes only the keys that have no row yet.
func (r *SettingsRepo) InsertMissing(ctx context.Context, values map[string]string) error {
	const query = `
		INSERT INTO settings (setting_key, setting_value)
		VALUES (?, ?)
		ON CONFLICT(setting_key) DO NOTHING
	`
	return r.writeAll(ctx, "insert", query, values)
}

func (r *SettingsRepo) writeAll(ctx context.Context, op, query string, values map[string]string) error {
	sealed, err := r.box.sealSettings(values)
	if err != nil {
		return fmt.Errorf("%s settings: %w", op, err)
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s settings: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s settings: prepare: %w", op, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, key := range sortedKeys(sealed) {
		if _, err := stmt.ExecContext(ctx, key, sealed[key]); err != nil {
			return fmt.Errorf("%s setting %s: %w", op, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s settings: commit: %w", op, err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
