// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/pkg/errors"
)

// Process exit statuses not owned by a domain error.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitUnknown = 10
)

// UsageError reports a malformed command line.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func (e *UsageError) ExitCode() int { return ExitUsage }

// ExitCode maps err to a process exit status. Errors choose their own status
// by implementing ExitCode() int anywhere in their wrap chain.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitUnknown
}

type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// Reported marks err as already surfaced to the user, typically by a logger.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// IsReported reports whether err was marked with Reported.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
