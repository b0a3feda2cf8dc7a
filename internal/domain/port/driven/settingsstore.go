// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// ErrOptionNotFound is returned by OptionsStore.Get when no blob exists under the name.
var ErrOptionNotFound = errors.New("option not found")

// SettingsTable defines the driven port for the dedicated settings table.
type SettingsTable interface {
	// Exists reports whether the backing table is present.
	Exists(ctx context.Context) (bool, error)

	// ListAll returns every stored row. A present row wins over the fallback
	// layers even when its value is empty.
	ListAll(ctx context.Context) ([]model.SettingRow, error)

	// UpsertAll inserts absent keys and updates present ones.
	UpsertAll(ctx context.Context, values map[string]string) error

	// InsertMissing inserts keys that have no row yet and leaves existing rows untouched.
	InsertMissing(ctx context.Context, values map[string]string) error
}

// OptionsStore defines the driven port for the generic key-value fallback store.
// Each option is a single blob of settings stored under a fixed name.
type OptionsStore interface {
	// Get returns ErrOptionNotFound if nothing is stored under name.
	Get(ctx context.Context, name string) (map[string]string, error)
	Put(ctx context.Context, name string, values map[string]string) error
	// Add stores values only when name is not yet present.
	Add(ctx context.Context, name string, values map[string]string) error
}
