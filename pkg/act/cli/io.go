// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli adapts act actions to cobra commands and maps their errors to
// process exit statuses.
package cli

import "io"

// IO provides input/output streams for CLI commands.
type IO struct {
	In  io.Reader // stdin
	Out io.Writer // stdout
	Err io.Writer // stderr
}
