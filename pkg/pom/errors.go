// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pom

import "strings"

// MetadataError reports a missing, malformed, or incomplete descriptor.
type MetadataError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MetadataError) Error() string {
	b := new(strings.Builder)
	b.WriteString("metadata: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MetadataError) Unwrap() error { return e.Err }

// ExitCode is the process status used when a deploy stops on this error.
func (e *MetadataError) ExitCode() int { return 2 }
