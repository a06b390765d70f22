// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gitrepo

import (
	"context"
	"os"
	"strings"

	"github.com/google/gitdeploy/internal/command"
	"go.uber.org/zap"
)

// NativeCloner returns a CloneFunc that drives the git binary through ex.
func NativeCloner(ex command.Executor, opts Options) CloneFunc {
	return func(ctx context.Context, remoteURL string) (Repository, error) {
		return NativeClone(ctx, ex, remoteURL, opts)
	}
}

// NativeClone clones remoteURL without checking out any files into a fresh
// temporary directory using `git clone -n`.
func NativeClone(ctx context.Context, ex command.Executor, remoteURL string, opts Options) (*NativeRepo, error) {
	w, err := newWorkdir(opts)
	if err != nil {
		return nil, &CloneError{URL: remoteURL, Err: err}
	}
	r := &NativeRepo{workdir: w, ex: ex, opts: opts}
	if err := r.git(ctx, "clone", "-n", remoteURL, w.dir); err != nil {
		os.RemoveAll(w.dir)
		return nil, &CloneError{URL: remoteURL, Err: err}
	}
	return r, nil
}

// NativeRepo is a Repository backed by the git binary.
type NativeRepo struct {
	*workdir
	ex   command.Executor
	opts Options
}

var _ Repository = &NativeRepo{}

// git runs a git subcommand inside the clone directory.
func (r *NativeRepo) git(ctx context.Context, args ...string) error {
	r.log.Debug("Executing", zap.String("command", "git "+strings.Join(args, " ")), zap.String("dir", r.dir))
	return r.ex.Execute(ctx, command.Options{
		Output:  r.opts.Output,
		Dir:     r.dir,
		Timeout: r.opts.Timeout,
	}, "git", args...)
}

func (r *NativeRepo) Push(ctx context.Context, message string) error {
	defer r.Delete()
	files, err := r.stagedFiles()
	if err != nil {
		return err
	}
	add := append([]string{"add", "--"}, files...)
	commit := append([]string{"commit", "-m", message, "--"}, files...)
	return runSteps(r.log, r.opts.BestEffort,
		step{StepStage, func() error { return r.git(ctx, add...) }},
		step{StepCommit, func() error { return r.git(ctx, commit...) }},
		step{StepPush, func() error { return r.git(ctx, "push", RemoteName, r.opts.branch()) }},
	)
}
