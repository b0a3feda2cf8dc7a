package sqlite

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretBox_RoundTrip(t *testing.T) {
	box := NewSecretBox(testSecretKey)

	sealed, err := box.Seal("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "hunter2")

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", opened)
}

func TestSecretBox_NonceVaries(t *testing.T) {
	box := NewSecretBox(testSecretKey)

	a, err := box.Seal("same")
	require.NoError(t, err)
	b, err := box.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSecretBox_DisabledIsPlaintext(t *testing.T) {
	box := NewSecretBox(nil)
	assert.False(t, box.Enabled())

	sealed, err := box.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	var nilBox *SecretBox
	opened, err := nilBox.Open("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", opened)
}

func TestSecretBox_OpenSealedWithoutKey(t *testing.T) {
	sealed, err := NewSecretBox(testSecretKey).Seal("x")
	require.NoError(t, err)

	_, err = NewSecretBox(nil).Open(sealed)
	assert.ErrorIs(t, err, ErrSecretKeyNotSet)
}

func TestSecretBox_OpenWrongKey(t *testing.T) {
	sealed, err := NewSecretBox(testSecretKey).Seal("x")
	require.NoError(t, err)

	other := []byte("fedcba9876543210fedcba9876543210")
	_, err = NewSecretBox(other).Open(sealed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong key or tampered")
}

func TestSecretBox_OpenMalformed(t *testing.T) {
	box := NewSecretBox(testSecretKey)

	tests := []struct {
		name    string
		stored  string
		wantErr string
	}{
		{"not base64", sealedPrefix + "!!!", "not base64"},
		{"nonce only", sealedPrefix + base64.StdEncoding.EncodeToString(make([]byte, 12)), "truncated"},
		{"shorter than tag", sealedPrefix + base64.StdEncoding.EncodeToString(make([]byte, 20)), "truncated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := box.Open(tt.stored)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSecretBox_SealSettingsOnlySensitive(t *testing.T) {
	box := NewSecretBox(testSecretKey)

	sealed, err := box.sealSettings(map[string]string{
		"smtp_host":     "smtp.example.com",
		"smtp_password": "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", sealed["smtp_host"])
	assert.True(t, strings.HasPrefix(sealed["smtp_password"], sealedPrefix))

	opened, err := box.openSettings(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret", opened["smtp_password"])
}
