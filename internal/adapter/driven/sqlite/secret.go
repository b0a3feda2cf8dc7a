package sqlite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// sealedPrefix marks values encrypted by SecretBox.
const sealedPrefix = "enc:v1:"

// ErrSecretKeyNotSet is returned when a sealed value is read without a key.
var ErrSecretKeyNotSet = errors.New("secret key not configured: set FUNDINTAKE_SECRET_KEY")

// SecretBox encrypts sensitive setting values with AES-256-GCM. Without a key
// it passes values through unchanged, and refuses to read sealed ones.
type SecretBox struct {
	key []byte
}

// NewSecretBox wraps key, which is either nil or exactly 32 bytes.
func NewSecretBox(key []byte) *SecretBox {
	return &SecretBox{key: key}
}

// Enabled reports whether values are encrypted at rest.
func (b *SecretBox) Enabled() bool {
	return b != nil && b.key != nil
}

// Seal returns the at-rest form of plaintext: the prefix followed by
// base64(nonce, ciphertext, tag).
func (b *SecretBox) Seal(plaintext string) (string, error) {
	if !b.Enabled() {
		return plaintext, nil
	}

	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Legacy plaintext rows carry no prefix and pass through.
func (b *SecretBox) Open(stored string) (string, error) {
	encoded, sealed := strings.CutPrefix(stored, sealedPrefix)
	if !sealed {
		return stored, nil
	}
	if !b.Enabled() {
		return "", ErrSecretKeyNotSet
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("sealed value is not base64: %w", err)
	}

	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	n := gcm.NonceSize()
	if len(data) < n+gcm.Overhead() {
		return "", errors.New("sealed value truncated")
	}

	plaintext, err := gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("sealed value rejected (wrong key or tampered): %w", err)
	}

	return string(plaintext), nil
}

// sealSettings returns a copy of values with sensitive keys sealed.
func (b *SecretBox) sealSettings(values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if model.IsSensitiveSetting(k) {
			sealed, err := b.Seal(v)
			if err != nil {
				return nil, fmt.Errorf("seal %q: %w", k, err)
			}
			v = sealed
		}
		out[k] = v
	}
	return out, nil
}

// openSettings returns a copy of values with sensitive keys opened.
func (b *SecretBox) openSettings(values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if model.IsSensitiveSetting(k) {
			opened, err := b.Open(v)
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", k, err)
			}
			v = opened
		}
		out[k] = v
	}
	return out, nil
}

func (b *SecretBox) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm mode: %w", err)
	}
	return aead, nil
}
