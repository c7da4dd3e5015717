// Package backup implements the course backup pipeline: export the course
// archive, clone the destination repository, move the archive in, commit,
// push, and clean up the clone.
package backup

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/academyafrica/go-coursebak/internal/course"
	"github.com/academyafrica/go-coursebak/internal/errors"
	"github.com/academyafrica/go-coursebak/internal/exporter"
	"github.com/academyafrica/go-coursebak/internal/git"
	"github.com/academyafrica/go-coursebak/internal/progress"
	"github.com/academyafrica/go-coursebak/internal/urlutils"
)

const defaultStageTimeout = 10 * time.Minute

// Downloader fetches a course archive to a local path.
type Downloader interface {
	Download(ctx context.Context, courseName, server, archivePath string) error
}

// GitClient covers the git operations the pipeline needs.
type GitClient interface {
	Clone(ctx context.Context, repoURL, dir string) error
	Add(ctx context.Context, dir, path string) error
	Commit(ctx context.Context, dir, message string) error
	Push(ctx context.Context, dir, remote, branch string) error
}

// Options contains configuration for one backup run.
type Options struct {
	Course  string // course name as given; normalized during the run
	RepoURL string // destination repository, passed verbatim to git clone
	Server  string // exporter host as given; resolved during the run

	Branch        string        // push branch, git.DefaultBranch when empty
	ETLBinary     string        // exporter binary, exporter.DefaultBinary when empty
	CommitMessage string        // commit message template, course.DefaultCommitTemplate when empty
	KeepClone     bool          // keep the clone after a successful push
	WorkDir       string        // scratch directory, cwd when empty
	Timeout       time.Duration // per-stage subprocess timeout

	Progress progress.Tracker // optional stage reporting
	Git      GitClient        // optional, defaults to git.NewClient()
	Exporter Downloader       // optional, defaults to exporter.New(ETLBinary)
}

// Result describes where a completed run left its artifacts.
type Result struct {
	CourseName  string // normalized course name
	ArchiveName string // archive filename inside the repository
	CloneDir    string // clone path; empty once cleaned up
}

// Run executes the backup pipeline. It aborts at the first failing stage
// with a StageError naming the stage. The clone directory is removed only
// after a successful push so a failed push can be retried by hand.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.RepoURL == "" {
		return nil, errors.NewStageError(errors.StageClone, "repository URL must be specified", nil)
	}

	name, err := course.NormalizeName(opts.Course)
	if err != nil {
		return nil, errors.NewStageError(errors.StageDownload, "invalid course name", err)
	}
	server := course.ResolveServer(opts.Server)

	repoDir, err := urlutils.RepoDirName(opts.RepoURL)
	if err != nil {
		return nil, errors.NewStageError(errors.StageClone, "cannot derive clone directory", err)
	}

	branch := opts.Branch
	if branch == "" {
		branch = git.DefaultBranch
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}

	tracker := opts.Progress
	if tracker == nil {
		tracker = &progress.DefaultTracker{}
	}
	gitClient := opts.Git
	if gitClient == nil {
		gitClient = git.NewClient()
	}
	downloader := opts.Exporter
	if downloader == nil {
		downloader = exporter.New(opts.ETLBinary)
	}

	archiveName := course.ArchiveName(name)
	archivePath := filepath.Join(opts.WorkDir, archiveName)
	clonePath := filepath.Join(opts.WorkDir, repoDir)

	stage := func(s errors.Stage, label string, fn func(context.Context) error) error {
		tracker.Start(label)
		stageCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := fn(stageCtx); err != nil {
			tracker.Error(err)
			return errors.NewStageError(s, "", err)
		}
		tracker.Complete()
		return nil
	}

	if err := stage(errors.StageDownload, fmt.Sprintf("download course %s from %s", name, server), func(ctx context.Context) error {
		return downloader.Download(ctx, name, server, archivePath)
	}); err != nil {
		return nil, err
	}

	if err := stage(errors.StageClone, fmt.Sprintf("clone %s", opts.RepoURL), func(ctx context.Context) error {
		return gitClient.Clone(ctx, opts.RepoURL, clonePath)
	}); err != nil {
		return nil, err
	}

	if err := stage(errors.StageMove, fmt.Sprintf("move %s into clone", archiveName), func(ctx context.Context) error {
		return moveFile(archivePath, filepath.Join(clonePath, archiveName))
	}); err != nil {
		return nil, err
	}

	if err := stage(errors.StageCommit, fmt.Sprintf("commit %s", archiveName), func(ctx context.Context) error {
		if err := gitClient.Add(ctx, clonePath, archiveName); err != nil {
			return err
		}
		return gitClient.Commit(ctx, clonePath, course.FormatCommitMessage(opts.CommitMessage, name))
	}); err != nil {
		return nil, err
	}

	result := &Result{
		CourseName:  name,
		ArchiveName: archiveName,
		CloneDir:    clonePath,
	}

	// A failed push returns the partial result so the caller can point at
	// the surviving clone.
	if err := stage(errors.StagePush, fmt.Sprintf("push to origin/%s", branch), func(ctx context.Context) error {
		return gitClient.Push(ctx, clonePath, "origin", branch)
	}); err != nil {
		return result, err
	}

	if opts.KeepClone {
		return result, nil
	}

	if err := stage(errors.StageCleanup, "remove local clone", func(ctx context.Context) error {
		return os.RemoveAll(clonePath)
	}); err != nil {
		return result, err
	}
	result.CloneDir = ""

	return result, nil
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// rename crosses filesystems. Any other rename failure is reported as-is.
func moveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	if !stderrors.Is(renameErr, syscall.EXDEV) {
		return fmt.Errorf("failed to move archive: %w", renameErr)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush destination: %w", err)
	}

	return os.Remove(src)
}
