package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.Equal(t, DefaultBinary, New("").Binary)
	assert.Equal(t, "custom-etl", New("custom-etl").Binary)
}

func TestDownloadArgs(t *testing.T) {
	args := DownloadArgs("algebra", "courses.academy.africa", "algebra-course.zip")

	assert.Equal(t, []string{
		"download", "course",
		"/algebra",
		"courses.academy.africa",
		"--archive_path", "algebra-course.zip",
	}, args)
}

func TestDownload(t *testing.T) {
	originalRun := runExportCommand
	defer func() { runExportCommand = originalRun }()

	tempDir := t.TempDir()
	archivePath := filepath.Join(tempDir, "algebra-course.zip")

	var gotBinary string
	var gotArgs []string
	runExportCommand = func(ctx context.Context, binary string, args ...string) error {
		gotBinary = binary
		gotArgs = args
		// Simulate the exporter writing the archive
		return os.WriteFile(archivePath, []byte("zip"), 0644)
	}

	e := New("etl.py")
	err := e.Download(context.Background(), "algebra", "courses.academy.africa", archivePath)
	require.NoError(t, err)

	assert.Equal(t, "etl.py", gotBinary)
	assert.Equal(t, "/algebra", gotArgs[2])
	assert.Equal(t, archivePath, gotArgs[5])
}

func TestDownloadCommandFailure(t *testing.T) {
	originalRun := runExportCommand
	defer func() { runExportCommand = originalRun }()

	runExportCommand = func(ctx context.Context, binary string, args ...string) error {
		return fmt.Errorf("exit status 1: course not found")
	}

	e := New("")
	err := e.Download(context.Background(), "missing", "courses.academy.africa", "missing-course.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course not found")
}

func TestDownloadMissingArchive(t *testing.T) {
	originalRun := runExportCommand
	defer func() { runExportCommand = originalRun }()

	// Exporter exits zero but writes nothing
	runExportCommand = func(ctx context.Context, binary string, args ...string) error {
		return nil
	}

	e := New("")
	archivePath := filepath.Join(t.TempDir(), "algebra-course.zip")
	err := e.Download(context.Background(), "algebra", "courses.academy.africa", archivePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no archive")
}
