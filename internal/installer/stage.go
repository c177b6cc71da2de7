// Package installer drives a resolved package through download, extraction,
// executable lookup, launcher creation and cleanup.
package installer

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a failure happened in.
type Stage string

const (
	StageSelect   Stage = "select"
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
	StageLocate   Stage = "locate-executable"
	StageLauncher Stage = "create-launcher"
	StageCleanup  Stage = "cleanup"
)

// Pipeline sentinels.
var (
	// ErrInvalidURL is returned when an asset URL has no usable filename.
	ErrInvalidURL = errors.New("invalid download URL")
	// ErrExecutableNotFound is returned when no extracted file matches the
	// package name.
	ErrExecutableNotFound = errors.New("executable not found in archive")
)

// StageError is the terminal failure of an install pipeline. It aborts only
// the current package; batch callers record it and move on.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("install stage %s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
