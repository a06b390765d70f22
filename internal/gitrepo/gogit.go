// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultAuthor signs commits when no git identity is configured.
var DefaultAuthor = object.Signature{Name: "gitdeploy", Email: "gitdeploy@localhost"}

// GoGitCloner returns a CloneFunc that uses go-git in-process.
func GoGitCloner(opts Options) CloneFunc {
	return func(ctx context.Context, remoteURL string) (Repository, error) {
		return GoGitClone(ctx, remoteURL, opts)
	}
}

// GoGitClone clones remoteURL into a fresh temporary directory without
// checking out a worktree. An empty remote yields a fresh repository tracking it.
func GoGitClone(ctx context.Context, remoteURL string, opts Options) (*GoGitRepo, error) {
	w, err := newWorkdir(opts)
	if err != nil {
		return nil, &CloneError{URL: remoteURL, Err: err}
	}
	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()
	w.log.Debug("Cloning with go-git", zap.String("url", remoteURL), zap.String("dir", w.dir))
	repo, err := git.PlainCloneContext(ctx, w.dir, false, &git.CloneOptions{
		URL:        remoteURL,
		NoCheckout: true,
		Progress:   opts.Output,
	})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		repo, err = initEmpty(w.dir, remoteURL, opts.branch())
	}
	if err != nil {
		os.RemoveAll(w.dir)
		return nil, &CloneError{URL: remoteURL, Err: err}
	}
	return &GoGitRepo{workdir: w, repo: repo, opts: opts}, nil
}

func initEmpty(dir, remoteURL, branch string) (*git.Repository, error) {
	if err := os.RemoveAll(filepath.Join(dir, metadataDir)); err != nil {
		return nil, err
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, errors.Wrap(err, "initializing repository")
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: RemoteName, URLs: []string{remoteURL}}); err != nil {
		return nil, errors.Wrap(err, "adding remote")
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, errors.Wrap(err, "setting HEAD")
	}
	return repo, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// GoGitRepo is a Repository backed by go-git.
type GoGitRepo struct {
	*workdir
	repo *git.Repository
	opts Options
}

var _ Repository = &GoGitRepo{}

func (r *GoGitRepo) Push(ctx context.Context, message string) error {
	defer r.Delete()
	files, err := r.stagedFiles()
	if err != nil {
		return err
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return &PushFailure{Step: StepStage, Err: err}
	}
	return runSteps(r.log, r.opts.BestEffort,
		step{StepStage, func() error { return r.stage(wt, files) }},
		step{StepCommit, func() error { return r.commit(wt, message) }},
		step{StepPush, func() error { return r.push(ctx) }},
	)
}

// stage seeds the index from HEAD, since a no-checkout clone starts with an
// empty one, and then adds files on top of it.
func (r *GoGitRepo) stage(wt *git.Worktree, files []string) error {
	head, err := r.repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
	case err != nil:
		return errors.Wrap(err, "resolving HEAD")
	default:
		if err := wt.Reset(&git.ResetOptions{Commit: head.Hash(), Mode: git.MixedReset}); err != nil {
			return errors.Wrap(err, "loading index")
		}
	}
	for _, f := range files {
		if _, err := wt.Add(f); err != nil {
			return errors.Wrapf(err, "adding %s", f)
		}
	}
	return nil
}

func (r *GoGitRepo) commit(wt *git.Worktree, message string) error {
	sig := r.author()
	sig.When = time.Now()
	h, err := wt.Commit(message, &git.CommitOptions{Author: &sig})
	if err != nil {
		return err
	}
	r.log.Debug("Committed", zap.String("hash", h.String()))
	return nil
}

func (r *GoGitRepo) author() object.Signature {
	if cfg, err := r.repo.ConfigScoped(config.GlobalScope); err == nil && cfg.User.Name != "" && cfg.User.Email != "" {
		return object.Signature{Name: cfg.User.Name, Email: cfg.User.Email}
	}
	return DefaultAuthor
}

func (r *GoGitRepo) push(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.opts.Timeout)
	defer cancel()
	ref := plumbing.NewBranchReferenceName(r.opts.branch())
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: RemoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Progress:   r.opts.Output,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}
