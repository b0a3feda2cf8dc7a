package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OptionsStore = (*OptionsRepo)(nil)

// OptionsRepo is the SQLite implementation of the OptionsStore port interface.
// Each option is stored as a single JSON object.
type OptionsRepo struct {
	db  *DB
	box *SecretBox
}

// NewOptionsRepo creates a new OptionsRepo backed by the given DB.
func NewOptionsRepo(db *DB, box *SecretBox) *OptionsRepo {
	return &OptionsRepo{db: db, box: box}
}

// Get decodes the blob stored under name. Returns driven.ErrOptionNotFound
// when no row exists.
func (r *OptionsRepo) Get(ctx context.Context, name string) (map[string]string, error) {
	const query = `SELECT option_value FROM options WHERE option_name = ?`

	var raw string
	err := r.db.Reader.QueryRowContext(ctx, query, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrOptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get option %s: %w", name, err)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode option %s: %w", name, err)
	}

	opened, err := r.box.openSettings(values)
	if err != nil {
		return nil, fmt.Errorf("decrypt option %s: %w", name, err)
	}
	return opened, nil
}

// Put replaces the blob stored under name.
func (r *OptionsRepo) Put(ctx context.Context, name string, values map[string]string) error {
	const query = `
		INSERT INTO options (option_name, option_value)
		VALUES (?, ?)
		ON CONFLICT(option_name) DO UPDATE SET
			option_value = excluded.option_value,
			updated_at = CURRENT_TIMESTAMP
	`
	return r.write(ctx, "put", query, name, values)
}

// Add stores the blob only if name is not yet present.
func (r *OptionsRepo) Add(ctx context.Context, name string, values map[string]string) error {
	const query = `
		INSERT INTO options (option_name, option_value)
		VALUES (?, ?)
		ON CONFLICT(option_name) DO NOTHING
	`
	return r.write(ctx, "add", query, name, values)
}

func (r *OptionsRepo) write(ctx context.Context, op, query, name string, values map[string]string) error {
	sealed, err := r.box.sealSettings(values)
	if err != nil {
		return fmt.Errorf("%s option %s: %w", op, name, err)
	}

	raw, err := json.Marshal(sealed)
	if err != nil {
		return fmt.Errorf("%s option %s: encode: %w", op, name, err)
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, name, string(raw)); err != nil {
		return fmt.Errorf("%s option %s: %w", op, name, err)
	}
	return nil
}
