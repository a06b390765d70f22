// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package command runs external tools (git, mvn) as blocking subprocesses.
package command

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/pkg/errors"
)

// Options configures a single subprocess invocation.
type Options struct {
	// Output receives both stdout and stderr (if nil, output is discarded)
	Output io.Writer
	// Dir is the directory in which the command is run.
	// The calling process never changes its own working directory.
	Dir string
	// Timeout bounds the command's runtime when non-zero.
	Timeout time.Duration
}

// Executor abstracts command execution for testability.
type Executor interface {
	// Execute runs a command to completion and returns an error on a non-zero exit.
	// Comparable to exec.CommandContext(...).Run()
	Execute(ctx context.Context, opts Options, name string, args ...string) error
	// LookPath is comparable to exec.LookPath()
	LookPath(file string) (string, error)
}

type realExecutor struct{}

// NewRealExecutor returns an Executor backed by os/exec.
func NewRealExecutor() Executor {
	return &realExecutor{}
}

func (r *realExecutor) Execute(ctx context.Context, opts Options, name string, args ...string) error {
	parent := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Output != nil {
		cmd.Stdout = opts.Output
		cmd.Stderr = opts.Output
	}
	cmd.Dir = opts.Dir
	err := cmd.Run()
	// A deadline inherited from the caller is reported as is.
	if err != nil && opts.Timeout > 0 && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrapf(ctx.Err(), "%s timed out after %s", name, opts.Timeout)
	}
	return err
}

func (r *realExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// ExitCode returns the exit status carried by err, 0 for a nil error and -1
// when err did not come from a process that exited.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}
