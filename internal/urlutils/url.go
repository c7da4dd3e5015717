// Package urlutils provides utilities for handling git repository URLs.
// It supports HTTPS URLs as well as scp-like URLs (git@host:owner/repo.git)
// and derives the local directory name git clone will create.
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrEmptyURL indicates that an empty URL was provided
	ErrEmptyURL = errors.New("empty URL provided")

	// ErrEmptyToken indicates that an empty token was provided
	ErrEmptyToken = errors.New("empty token provided")
)

// StripScheme removes a single leading http:// or https:// prefix from a
// host string. Anything else is returned unchanged.
func StripScheme(raw string) string {
	if after, ok := strings.CutPrefix(raw, "https://"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(raw, "http://"); ok {
		return after
	}
	return raw
}

// RepoDirName returns the directory git clone creates for the given URL:
// the base name of the URL path with a trailing .git suffix removed.
// A trailing .deb suffix is also removed for compatibility with the
// behavior this tool replaces. Both HTTPS and scp-like URLs are accepted:
//
//	https://github.com/org/repo.git -> repo
//	git@github.com:org/repo.git     -> repo
func RepoDirName(repoURL string) (string, error) {
	if repoURL == "" {
		return "", ErrEmptyURL
	}

	path := repoURL
	if i := strings.LastIndex(path, ":"); i != -1 && !strings.Contains(path, "://") {
		// scp-like URL: everything after the colon is the path
		path = path[i+1:]
	}

	base := path
	if i := strings.LastIndex(base, "/"); i != -1 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".git")
	base = strings.TrimSuffix(base, ".deb")
	if base == "" {
		return "", fmt.Errorf("%w: no repository name in %q", ErrInvalidURL, repoURL)
	}
	return base, nil
}

// IsHTTPS reports whether the URL uses the https scheme. Token injection
// only applies to HTTPS remotes; SSH remotes authenticate via the agent.
func IsHTTPS(repoURL string) bool {
	return strings.HasPrefix(repoURL, "https://")
}

// FormatTokenURL embeds a token as the userinfo component of an HTTPS
// repository URL. The original URL is not modified.
func FormatTokenURL(rawURL, token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	if !IsHTTPS(rawURL) {
		return "", fmt.Errorf("%w: token authentication requires an https URL", ErrInvalidURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	tokenURL := *parsed
	tokenURL.User = url.User(token)
	return tokenURL.String(), nil
}
