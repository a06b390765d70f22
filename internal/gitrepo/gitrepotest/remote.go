// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package gitrepotest builds on-disk git remotes for tests.
package gitrepotest

import (
	"bytes"
	"io"
	"os/exec"
	"path"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type FileContent map[string]string

type Commit struct {
	Message string      `yaml:"message"`
	Author  string      `yaml:"author,omitempty"`
	Files   FileContent `yaml:"files"`
}

type History struct {
	Commits []Commit `yaml:"commits"`
}

// Remote is a bare repository on disk usable as a clone/push target.
type Remote struct {
	Dir string
}

// URL returns the address to clone the remote from.
func (r *Remote) URL() string { return r.Dir }

// GitAvailable reports whether a git binary is on PATH. Local file remotes
// are served by git-upload-pack/git-receive-pack for both native git and go-git.
func GitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// CreateRemoteFromYAML creates a bare remote in dir holding the described
// history on the master branch.
func CreateRemoteFromYAML(dir, content string) (*Remote, error) {
	var history History
	d := yaml.NewDecoder(bytes.NewReader([]byte(content)))
	d.KnownFields(true) // Fail on unknown fields
	if err := d.Decode(&history); err != nil && err != io.EOF {
		return nil, err
	}
	return CreateRemote(dir, history.Commits)
}

// CreateRemote creates a bare remote in dir from commits. No commits yields
// an empty repository.
func CreateRemote(dir string, commits []Commit) (*Remote, error) {
	s := filesystem.NewStorage(osfs.New(dir), cache.NewObjectLRUDefault())
	repo, err := git.Init(s, memfs.New())
	if err != nil {
		return nil, errors.Wrap(err, "initializing repo")
	}
	w, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "accessing worktree")
	}
	for i, c := range commits {
		if err := createFiles(w.Filesystem, c.Files); err != nil {
			return nil, errors.Wrap(err, "creating files")
		}
		if _, err := w.Add("."); err != nil {
			return nil, errors.Wrap(err, "staging files")
		}
		author := "Place Holder"
		if c.Author != "" {
			author = c.Author
		}
		_, err := w.Commit(c.Message, &git.CommitOptions{
			Author:            &object.Signature{Name: author, Email: "placeholder@example.com", When: time.Unix(int64(i), 0)},
			AllowEmptyCommits: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating commit")
		}
	}
	// Pushing to a non-bare repository's current branch is refused by git.
	cfg, err := repo.Config()
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg.Core.IsBare = true
	cfg.Core.Worktree = ""
	if err := repo.SetConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "writing config")
	}
	return &Remote{Dir: dir}, nil
}

func createFiles(fs billy.Filesystem, files FileContent) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := fs.MkdirAll(path.Dir(name), 0755); err != nil {
			return err
		}
		f, err := fs.Create(name)
		if err != nil {
			return err
		}
		if _, err := f.Write([]byte(files[name])); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Tip returns the message and file contents of the latest commit on branch.
func (r *Remote) Tip(branch string) (string, FileContent, error) {
	repo, err := git.PlainOpen(r.Dir)
	if err != nil {
		return "", nil, errors.Wrap(err, "opening remote")
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return "", nil, errors.Wrap(err, "resolving branch")
	}
	c, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", nil, errors.Wrap(err, "reading commit")
	}
	files := make(FileContent)
	iter, err := c.Files()
	if err != nil {
		return "", nil, errors.Wrap(err, "listing files")
	}
	err = iter.ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		files[f.Name] = content
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return c.Message, files, nil
}
