// Package main provides coursebak, a CLI tool that backs up a course
// export into a git repository.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/academyafrica/go-coursebak/internal/backup"
	"github.com/academyafrica/go-coursebak/internal/config"
	"github.com/academyafrica/go-coursebak/internal/errors"
	"github.com/academyafrica/go-coursebak/internal/progress"
)

type rootOptions struct {
	server     string
	etlBinary  string
	branch     string
	configPath string
	keepClone  bool
	timeout    time.Duration
}

// runBackup allows for mocking in tests
var runBackup = backup.Run

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "coursebak <course> <repo-url> [server]",
		Short: "Back up a course export into a git repository",
		Long: `coursebak downloads a course archive through the course export tool,
clones the destination repository, commits the archive, and pushes it.

The server defaults to courses.academy.africa; an http:// or https://
prefix on the server argument is stripped. A leading / on the course name
is stripped as well.

Example usage:
  coursebak algebra git@host:org/backups.git
  coursebak /algebra git@host:org/backups.git https://mirror.example.com
  coursebak algebra git@host:org/backups.git --branch main --keep-clone`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoursebak(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "Course export server host (default courses.academy.africa)")
	cmd.Flags().StringVar(&opts.etlBinary, "etl", "", "Course export tool binary (default etl.py)")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "Branch to push the backup to (default master)")
	cmd.Flags().StringVar(&opts.configPath, "config", "coursebak.json", "Path to a JSON config file")
	cmd.Flags().BoolVar(&opts.keepClone, "keep-clone", false, "Keep the local clone after a successful push")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "Per-stage timeout for external tools")

	return cmd
}

func runCoursebak(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()

	// Flags take precedence over environment and config file
	if opts.server != "" {
		cfg.Server = opts.server
	}
	if opts.etlBinary != "" {
		cfg.ETLBinary = opts.etlBinary
	}
	if opts.branch != "" {
		cfg.Branch = opts.branch
	}
	if cmd.Flags().Changed("keep-clone") {
		cfg.KeepClone = opts.keepClone
	}

	// The positional server wins over everything
	server := cfg.Server
	if len(args) == 3 {
		server = args[2]
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result, err := runBackup(context.Background(), backup.Options{
		Course:        args[0],
		RepoURL:       args[1],
		Server:        server,
		Branch:        cfg.Branch,
		ETLBinary:     cfg.ETLBinary,
		CommitMessage: cfg.CommitMessage,
		KeepClone:     cfg.KeepClone,
		Timeout:       opts.timeout,
		Progress:      progress.NewConsoleTracker(),
	})
	if err != nil {
		if errors.IsRecoverable(err) && result != nil && result.CloneDir != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "local clone kept at %s for retry\n", result.CloneDir)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s backed up course %s as %s\n",
		color.GreenString("done:"), result.CourseName, result.ArchiveName)
	return nil
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
