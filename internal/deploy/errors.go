// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"fmt"
	"strings"
)

// BuildFailure reports that maven exited unsuccessfully.
type BuildFailure struct {
	// Status is maven's exit status, or -1 if it did not run to completion.
	Status int
	Err    error
}

func (e *BuildFailure) Error() string {
	return fmt.Sprintf("deploy failed (maven exit status %d): %v", e.Status, e.Err)
}

func (e *BuildFailure) Unwrap() error { return e.Err }

// ExitCode is the process status used when a deploy stops on this error.
func (e *BuildFailure) ExitCode() int { return 4 }

// ConfigError reports invalid command configuration.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	b := new(strings.Builder)
	b.WriteString("config: ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) ExitCode() int { return 6 }
