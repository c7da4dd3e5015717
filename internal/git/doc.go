// Package git wraps the git binary for the backup workflow.
//
// It covers exactly the operations the backup pipeline needs: cloning the
// destination repository, staging the course archive, committing it, and
// pushing the commit upstream. Each operation checks the git exit status
// and returns the captured stderr as part of the error, so a failing
// clone or push surfaces git's own diagnostic.
//
// Authentication:
//
// HTTPS remotes can authenticate with a token stored in the environment
// (see the token package); the token is embedded in the clone URL so the
// push reuses it. SSH remotes rely on the ssh agent. Credential prompts
// are disabled because backups run unattended.
//
// Thread Safety:
//
// Git operations are not guaranteed to be thread-safe. Callers should
// ensure proper synchronization when operating on the same repository
// from multiple goroutines.
package git
