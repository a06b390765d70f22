// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gitrepo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Push protocol steps.
const (
	StepStage  = "stage"
	StepCommit = "commit"
	StepPush   = "push"
)

// ErrNothingToPush is returned by Push when the clone holds no files.
var ErrNothingToPush = errors.New("no files to push")

// CloneError reports a failed clone of URL.
type CloneError struct {
	URL string
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("failed to clone %s: %v", e.URL, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// ExitCode is the process status used when a deploy stops on this error.
func (e *CloneError) ExitCode() int { return 3 }

// PushFailure reports the push protocol step that failed.
type PushFailure struct {
	Step string
	Err  error
}

func (e *PushFailure) Error() string {
	return fmt.Sprintf("push failed at %s: %v", e.Step, e.Err)
}

func (e *PushFailure) Unwrap() error { return e.Err }

// ExitCode is the process status used when a deploy stops on this error.
func (e *PushFailure) ExitCode() int { return 5 }
