package errors

import (
	stderrors "errors"
	"fmt"
)

// Stage identifies one step of the backup pipeline.
type Stage string

const (
	StageDownload Stage = "download"
	StageClone    Stage = "clone"
	StageMove     Stage = "move"
	StageCommit   Stage = "commit"
	StagePush     Stage = "push"
	StageCleanup  Stage = "cleanup"
)

// StageError represents a failure of a specific backup stage. It carries
// the diagnostic output of the underlying tool so the CLI can report which
// stage failed and why.
type StageError struct {
	Stage   Stage  // Pipeline stage that failed
	Message string // Human-readable description
	Err     error  // Underlying error, typically an *OperationError
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed", e.Stage)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError
func NewStageError(stage Stage, message string, err error) *StageError {
	return &StageError{
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// IsStageError checks if an error is or wraps a StageError
func IsStageError(err error) bool {
	var se *StageError
	return stderrors.As(err, &se)
}

// StageOf returns the stage recorded in err, or an empty Stage when err
// does not carry a StageError.
func StageOf(err error) Stage {
	var se *StageError
	if stderrors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// IsRecoverable reports whether the failed stage left state on disk that a
// retry can pick up. A push failure keeps the local clone so the commit can
// be pushed again by hand.
func IsRecoverable(err error) bool {
	var se *StageError
	if stderrors.As(err, &se) {
		return se.Stage == StagePush || se.Stage == StageCleanup
	}
	return false
}
