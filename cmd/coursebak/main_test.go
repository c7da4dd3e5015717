package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyafrica/go-coursebak/internal/backup"
	"github.com/academyafrica/go-coursebak/internal/config"
	"github.com/academyafrica/go-coursebak/internal/errors"
)

// stubBackup replaces runBackup for the duration of the test and records
// the options it was called with.
func stubBackup(t *testing.T, result *backup.Result, err error) *backup.Options {
	t.Helper()

	original := runBackup
	t.Cleanup(func() { runBackup = original })

	captured := &backup.Options{}
	runBackup = func(ctx context.Context, opts backup.Options) (*backup.Result, error) {
		*captured = opts
		return result, err
	}
	return captured
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBackupWithDefaults(t *testing.T) {
	captured := stubBackup(t, &backup.Result{
		CourseName:  "algebra",
		ArchiveName: "algebra-course.zip",
	}, nil)

	stdout, _, err := execute(t, "algebra", "git@host:org/repo.git")
	require.NoError(t, err)

	assert.Equal(t, "algebra", captured.Course)
	assert.Equal(t, "git@host:org/repo.git", captured.RepoURL)
	assert.Equal(t, "courses.academy.africa", captured.Server)
	assert.Equal(t, "master", captured.Branch)
	assert.Equal(t, "etl.py", captured.ETLBinary)
	assert.Equal(t, "backup course {course}", captured.CommitMessage)
	assert.False(t, captured.KeepClone)
	assert.Contains(t, stdout, "algebra-course.zip")
}

func TestBackupWithPositionalServer(t *testing.T) {
	captured := stubBackup(t, &backup.Result{CourseName: "algebra", ArchiveName: "algebra-course.zip"}, nil)

	_, _, err := execute(t, "/algebra", "git@host:org/repo.git", "https://mirror.example.com")
	require.NoError(t, err)

	// Raw values pass through; normalization happens in the backup package
	assert.Equal(t, "/algebra", captured.Course)
	assert.Equal(t, "https://mirror.example.com", captured.Server)
}

func TestBackupFlags(t *testing.T) {
	captured := stubBackup(t, &backup.Result{CourseName: "algebra", ArchiveName: "algebra-course.zip"}, nil)

	_, _, err := execute(t, "algebra", "git@host:org/repo.git",
		"--branch", "main", "--etl", "etl", "--keep-clone")
	require.NoError(t, err)

	assert.Equal(t, "main", captured.Branch)
	assert.Equal(t, "etl", captured.ETLBinary)
	assert.True(t, captured.KeepClone)
}

func TestPositionalServerWinsOverFlag(t *testing.T) {
	captured := stubBackup(t, &backup.Result{CourseName: "algebra", ArchiveName: "algebra-course.zip"}, nil)

	_, _, err := execute(t, "algebra", "git@host:org/repo.git", "positional.example.com",
		"--server", "flag.example.com")
	require.NoError(t, err)

	assert.Equal(t, "positional.example.com", captured.Server)
}

func TestConfigFileDefaults(t *testing.T) {
	captured := stubBackup(t, &backup.Result{CourseName: "algebra", ArchiveName: "algebra-course.zip"}, nil)

	path := filepath.Join(t.TempDir(), "coursebak.json")
	cfg := &config.BackupConfig{
		Server:        "cfg.example.com",
		Branch:        "backup",
		CommitMessage: "weekly export of {course}",
	}
	require.NoError(t, config.SaveConfig(cfg, path))

	_, _, err := execute(t, "algebra", "git@host:org/repo.git", "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "cfg.example.com", captured.Server)
	assert.Equal(t, "backup", captured.Branch)
	assert.Equal(t, "weekly export of {course}", captured.CommitMessage)
	// Unset config fields fall back to defaults
	assert.Equal(t, "etl.py", captured.ETLBinary)
}

func TestFlagOverridesConfigFile(t *testing.T) {
	captured := stubBackup(t, &backup.Result{CourseName: "algebra", ArchiveName: "algebra-course.zip"}, nil)

	path := filepath.Join(t.TempDir(), "coursebak.json")
	cfg := &config.BackupConfig{Branch: "backup"}
	require.NoError(t, config.SaveConfig(cfg, path))

	_, _, err := execute(t, "algebra", "git@host:org/repo.git",
		"--config", path, "--branch", "main")
	require.NoError(t, err)

	assert.Equal(t, "main", captured.Branch)
}

func TestInvalidConfigFile(t *testing.T) {
	stubBackup(t, nil, nil)

	path := filepath.Join(t.TempDir(), "coursebak.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, _, err := execute(t, "algebra", "git@host:org/repo.git", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestBackupFailurePropagates(t *testing.T) {
	stageErr := errors.NewStageError(errors.StageDownload, "exporter exited with status 1", nil)
	stubBackup(t, nil, stageErr)

	_, _, err := execute(t, "algebra", "git@host:org/repo.git")
	require.Error(t, err)
	assert.Equal(t, errors.StageDownload, errors.StageOf(err))
}

func TestPushFailureReportsKeptClone(t *testing.T) {
	stageErr := errors.NewStageError(errors.StagePush, "", fmt.Errorf("authentication failed"))
	stubBackup(t, &backup.Result{
		CourseName:  "algebra",
		ArchiveName: "algebra-course.zip",
		CloneDir:    "repo",
	}, stageErr)

	_, stderr, err := execute(t, "algebra", "git@host:org/repo.git")
	require.Error(t, err)
	assert.Contains(t, stderr, "local clone kept at repo")
}

func TestArgumentValidation(t *testing.T) {
	stubBackup(t, nil, nil)

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"course only", []string{"algebra"}},
		{"too many arguments", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
