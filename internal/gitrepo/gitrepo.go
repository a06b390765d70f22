// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package gitrepo manages short-lived local clones used to stage artifacts
// before committing them back to their remote.
package gitrepo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

const (
	// DefaultBranch is pushed when Options.Branch is empty.
	DefaultBranch = "master"
	// RemoteName is the remote every clone pushes to.
	RemoteName = "origin"
	metadataDir = ".git"
)

// Repository is an ephemeral clone that exclusively owns its directory.
type Repository interface {
	// Dir returns the clone's working directory.
	Dir() string
	// Files lists every regular file outside of git metadata as absolute paths.
	Files() ([]string, error)
	// Push stages and commits all files under message then pushes the
	// configured branch. The clone is released once the protocol has run.
	Push(ctx context.Context, message string) error
	// Delete releases the clone. Calls after the first are no-ops.
	Delete() error
}

// CloneFunc creates a Repository from a remote URL.
type CloneFunc func(ctx context.Context, remoteURL string) (Repository, error)

// Options configures clones created by a backend.
type Options struct {
	// Branch is pushed to RemoteName.
	Branch string
	// TempDir is the parent of clone directories. Defaults to os.TempDir().
	TempDir string
	// Keep retains clone directories on disk after release for diagnostics.
	Keep bool
	// BestEffort runs every push step even after one fails, logging failures
	// instead of returning them.
	BestEffort bool
	// Timeout bounds each git invocation when non-zero.
	Timeout time.Duration
	// Output receives git's own output.
	Output io.Writer
	Logger *zap.Logger
}

func (o Options) branch() string {
	if o.Branch == "" {
		return DefaultBranch
	}
	return o.Branch
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// workdir is the directory lifecycle shared by all backends.
type workdir struct {
	dir  string
	keep bool
	log  *zap.Logger

	once sync.Once
	err  error
}

func newWorkdir(opts Options) (*workdir, error) {
	dir, err := os.MkdirTemp(opts.TempDir, "gitdeploy-")
	if err != nil {
		return nil, err
	}
	return &workdir{dir: dir, keep: opts.Keep, log: opts.logger()}, nil
}

func (w *workdir) Dir() string { return w.dir }

func (w *workdir) Files() ([]string, error) {
	fs := osfs.New(w.dir)
	var files []string
	err := util.Walk(fs, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == metadataDir {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, filepath.Join(w.dir, path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// relative converts absolute file paths under the clone to worktree paths.
func (w *workdir) relative(files []string) ([]string, error) {
	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(w.dir, f)
		if err != nil {
			return nil, err
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel, nil
}

func (w *workdir) Delete() error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		if w.keep {
			w.log.Info("Retaining clone", zap.String("dir", w.dir))
			return
		}
		w.log.Debug("Removing clone", zap.String("dir", w.dir))
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}

// stagedFiles returns the files to push, relative to the clone.
func (w *workdir) stagedFiles() ([]string, error) {
	files, err := w.Files()
	if err != nil {
		return nil, &PushFailure{Step: StepStage, Err: err}
	}
	if len(files) == 0 {
		return nil, &PushFailure{Step: StepStage, Err: ErrNothingToPush}
	}
	for _, f := range files {
		w.log.Debug("File to push", zap.String("path", f))
	}
	rel, err := w.relative(files)
	if err != nil {
		return nil, &PushFailure{Step: StepStage, Err: err}
	}
	return rel, nil
}

// step is one stage of the push protocol.
type step struct {
	name string
	run  func() error
}

// runSteps executes steps in order. Strict mode stops at the first failure;
// best-effort mode logs each failure and keeps going.
func runSteps(log *zap.Logger, bestEffort bool, steps ...step) error {
	for _, s := range steps {
		err := s.run()
		if err == nil {
			continue
		}
		if !bestEffort {
			return &PushFailure{Step: s.name, Err: err}
		}
		log.Warn("Push step failed, continuing", zap.String("step", s.name), zap.Error(err))
	}
	return nil
}
