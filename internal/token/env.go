package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// EnvPrefix is the prefix used for all token environment variables
	EnvPrefix = "GIT_TOKEN_"

	// KeyGit is the storage key consulted for git push authentication
	KeyGit = "GIT"
)

// EnvStorage implements Storage using environment variables. Tokens are
// stored as JSON-encoded strings under GIT_TOKEN_ prefixed variables.
type EnvStorage struct{}

// NewEnvStorage creates a new environment variable-based token storage
func NewEnvStorage() *EnvStorage {
	return &EnvStorage{}
}

// Store saves a token with the given key as an environment variable.
// The token is stored as a JSON string to preserve metadata.
func (e *EnvStorage) Store(ctx context.Context, key string, token Token) error {
	if !IsValid(token) {
		return ErrTokenInvalid
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.Setenv(e.FormatEnvKey(key), string(data)); err != nil {
		return fmt.Errorf("failed to set environment variable: %w", err)
	}
	return nil
}

// Retrieve gets a token by its key from environment variables. A raw
// (non-JSON) value is accepted as a bare token for convenience.
func (e *EnvStorage) Retrieve(ctx context.Context, key string) (Token, error) {
	data := os.Getenv(e.FormatEnvKey(key))
	if data == "" {
		return Token{}, ErrTokenNotFound
	}

	var t Token
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		// Treat the raw value as the token itself
		t = Token{Value: data}
	}

	if !IsValid(t) {
		return Token{}, ErrTokenInvalid
	}
	if IsExpired(t) {
		return Token{}, ErrTokenExpired
	}
	return t, nil
}

// Delete removes a token by unsetting its environment variable
func (e *EnvStorage) Delete(ctx context.Context, key string) error {
	if err := os.Unsetenv(e.FormatEnvKey(key)); err != nil {
		return fmt.Errorf("failed to unset environment variable: %w", err)
	}
	return nil
}

// FormatEnvKey converts a token key into an environment variable name
func (e *EnvStorage) FormatEnvKey(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToUpper(key))

	return EnvPrefix + sanitized
}
