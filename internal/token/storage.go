// Package token provides optional push-authentication tokens for git
// operations.
//
// Tokens are read from GIT_TOKEN_* environment variables so the tool works
// unattended in cron and container environments with no keychain or user
// interaction. A token is only consulted for HTTPS remotes; SSH remotes
// authenticate through the agent and never touch this package.
//
//	export GIT_TOKEN_GIT='{"Value":"ghp_abc..."}'
package token

import (
	"context"
	"errors"
	"time"
)

// Common errors that may be returned by token operations
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token has expired")
)

// Token represents an authentication token with metadata
type Token struct {
	// Value is the actual token string
	Value string `json:"Value"`

	// ExpiresAt indicates when the token will expire.
	// Zero value means the token does not expire.
	ExpiresAt time.Time `json:"ExpiresAt,omitempty"`

	// Scope defines the permissions granted to this token
	Scope string `json:"Scope,omitempty"`
}

// Storage defines the interface for token storage implementations
type Storage interface {
	// Store saves a token with the given key, overwriting any existing one
	Store(ctx context.Context, key string, token Token) error

	// Retrieve gets a token by its key.
	// Returns ErrTokenNotFound if the token doesn't exist.
	Retrieve(ctx context.Context, key string) (Token, error)

	// Delete removes a token by its key
	Delete(ctx context.Context, key string) error
}

// IsExpired checks if a token has expired
func IsExpired(token Token) bool {
	if token.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(token.ExpiresAt)
}

// IsValid performs basic validation of a token
func IsValid(token Token) bool {
	return token.Value != ""
}
