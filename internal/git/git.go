package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/academyafrica/go-coursebak/internal/errors"
	"github.com/academyafrica/go-coursebak/internal/token"
	"github.com/academyafrica/go-coursebak/internal/urlutils"
)

const defaultTimeout = 10 * time.Minute

// DefaultBranch is the branch pushed to when none is configured.
const DefaultBranch = "master"

// Client wraps the git binary for the clone/add/commit/push cycle.
type Client struct {
	// Token is an optional authentication token injected into HTTPS
	// clone URLs. SSH URLs are passed through untouched.
	Token string
}

// NewClient creates a Client, picking up a push token from the
// environment when one is stored. A missing token is not an error.
func NewClient() *Client {
	c := &Client{}
	storage := token.NewEnvStorage()
	if t, err := storage.Retrieve(context.Background(), token.KeyGit); err == nil {
		c.Token = t.Value
	}
	return c
}

// Clone clones repoURL into dir. When a token is present and the URL is
// HTTPS, the token is embedded as userinfo so the later push
// authenticates without prompting.
func (c *Client) Clone(ctx context.Context, repoURL, dir string) error {
	cloneURL := repoURL
	if c.Token != "" && urlutils.IsHTTPS(repoURL) {
		authURL, err := urlutils.FormatTokenURL(repoURL, c.Token)
		if err != nil {
			return errors.New("clone", fmt.Errorf("failed to format authenticated URL: %w", err))
		}
		cloneURL = authURL
	}

	if err := runGitCommand(ctx, "", "clone", cloneURL, dir); err != nil {
		return errors.New("clone", fmt.Errorf("failed to clone %s: %w", repoURL, err))
	}
	return nil
}

// Add stages path inside the repository at dir.
func (c *Client) Add(ctx context.Context, dir, path string) error {
	if err := runGitCommand(ctx, dir, "add", path); err != nil {
		return errors.New("add", fmt.Errorf("failed to stage %s: %w", path, err))
	}
	return nil
}

// Commit records the staged changes with the given message.
func (c *Client) Commit(ctx context.Context, dir, message string) error {
	if err := runGitCommand(ctx, dir, "commit", "-m", message); err != nil {
		return errors.New("commit", fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

// Push pushes branch to remote, setting the upstream.
func (c *Client) Push(ctx context.Context, dir, remote, branch string) error {
	if err := runGitCommand(ctx, dir, "push", "-u", remote, branch); err != nil {
		return errors.New("push", fmt.Errorf("failed to push to %s/%s: %w", remote, branch, err))
	}
	return nil
}

// runGitCommand is a variable so it can be mocked in tests
var runGitCommand = func(ctx context.Context, dir string, args ...string) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	// Never block on credential prompts; backups run unattended
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_ASKPASS=")

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}
