package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

func TestOptionsRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db, nil)

	_, err := repo.Get(context.Background(), "fundintake_settings")
	assert.ErrorIs(t, err, driven.ErrOptionNotFound)
}

func TestOptionsRepo_PutAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "blob", map[string]string{"smtp_host": "a", "smtp_port": "25"}))
	require.NoError(t, repo.Put(ctx, "blob", map[string]string{"smtp_host": "b"}))

	got, err := repo.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"smtp_host": "b"}, got)
}

func TestOptionsRepo_AddOnlyWhenAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "blob", map[string]string{"from_name": "first"}))
	require.NoError(t, repo.Add(ctx, "blob", map[string]string{"from_name": "second"}))

	got, err := repo.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, "first", got["from_name"])
}

func TestOptionsRepo_PasswordEncrypted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db, NewSecretBox(testSecretKey))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "blob", map[string]string{"smtp_password": "pw"}))

	var raw string
	require.NoError(t, db.Reader.QueryRowContext(ctx,
		`SELECT option_value FROM options WHERE option_name = 'blob'`).Scan(&raw))
	assert.NotContains(t, raw, `"pw"`)

	got, err := repo.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, "pw", got["smtp_password"])
}

func TestOptionsRepo_CorruptBlob(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db, nil)
	ctx := context.Background()

	_, err := db.Writer.ExecContext(ctx,
		`INSERT INTO options (option_name, option_value) VALUES ('blob', 'not json')`)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "blob")
	require.Error(t, err)
	assert.False(t, errors.Is(err, driven.ErrOptionNotFound))
}

func TestOptionsRepo_PutFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOptionsRepo(db, nil)

	mock.ExpectExec("INSERT INTO options").WillReturnError(errors.New("readonly"))

	err := repo.Put(context.Background(), "blob", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readonly")
	assert.NoError(t, mock.ExpectationsWereMet())
}
