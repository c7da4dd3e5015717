// Package exporter wraps the external course export tool. The tool is
// expected to write a zip archive of the course to the requested path;
// this package only builds the invocation and verifies the archive exists
// afterwards.
package exporter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/academyafrica/go-coursebak/internal/course"
	"github.com/academyafrica/go-coursebak/internal/errors"
)

// DefaultBinary is the course export tool invoked when none is configured.
const DefaultBinary = "etl.py"

const defaultTimeout = 10 * time.Minute

// Exporter invokes the external course export tool
type Exporter struct {
	// Binary is the exporter executable, resolved via PATH
	Binary string
}

// New creates an Exporter for the given binary, falling back to
// DefaultBinary when empty.
func New(binary string) *Exporter {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Exporter{Binary: binary}
}

// DownloadArgs returns the exporter invocation for a course download.
// The exporter addresses courses by their slash-prefixed key.
func DownloadArgs(courseName, server, archivePath string) []string {
	return []string{
		"download", "course",
		course.ExportKey(courseName),
		server,
		"--archive_path", archivePath,
	}
}

// Download runs the exporter to fetch courseName from server into
// archivePath. The exporter's exit status is checked and its stderr is
// attached to the returned error; a successful exit without an archive on
// disk is also a failure.
func (e *Exporter) Download(ctx context.Context, courseName, server, archivePath string) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
	}

	args := DownloadArgs(courseName, server, archivePath)
	if err := runExportCommand(ctx, e.Binary, args...); err != nil {
		return errors.New("export", fmt.Errorf("exporter failed for course %s: %w", courseName, err))
	}

	if _, err := os.Stat(archivePath); err != nil {
		return errors.New("export", fmt.Errorf("exporter produced no archive at %s: %w", archivePath, err))
	}
	return nil
}

// runExportCommand is a variable so it can be mocked in tests
var runExportCommand = func(ctx context.Context, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
