// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gitrepo

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/gitdeploy/internal/command"
	"github.com/google/gitdeploy/internal/gitrepo/gitrepotest"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

const seededHistory = `
commits:
  - message: initial
    files:
      README: hello
      releases/com/example/old/1.0/old-1.0.pom: old
`

func setIdentity(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

func TestRoundTrip(t *testing.T) {
	if !gitrepotest.GitAvailable() {
		t.Skip("git binary not available")
	}
	setIdentity(t)
	backends := map[string]func(Options) CloneFunc{
		"native": func(opts Options) CloneFunc { return NativeCloner(command.NewRealExecutor(), opts) },
		"go-git": GoGitCloner,
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			remote, err := gitrepotest.CreateRemoteFromYAML(filepath.Join(t.TempDir(), "remote.git"), seededHistory)
			if err != nil {
				t.Fatalf("creating remote: %v", err)
			}
			r, err := backend(Options{TempDir: t.TempDir()})(ctx, remote.URL())
			if err != nil {
				t.Fatalf("clone: %v", err)
			}
			defer r.Delete()
			if files, err := r.Files(); err != nil || len(files) != 0 {
				t.Fatalf("Expected no checked out files, got %v (err %v)", files, err)
			}
			writeFiles(t, r.Dir(), "releases/com/example/mylib/1.0.0/mylib-1.0.0.jar")
			if err := r.Push(ctx, "com.example:mylib:1.0.0"); err != nil {
				t.Fatalf("Push() error: %v", err)
			}
			msg, files, err := remote.Tip(DefaultBranch)
			if err != nil {
				t.Fatalf("reading remote: %v", err)
			}
			if got := strings.TrimSpace(msg); got != "com.example:mylib:1.0.0" {
				t.Errorf("commit message = %q", got)
			}
			want := gitrepotest.FileContent{
				"README":                                   "hello",
				"releases/com/example/old/1.0/old-1.0.pom": "old",
				"releases/com/example/mylib/1.0.0/mylib-1.0.0.jar": "releases/com/example/mylib/1.0.0/mylib-1.0.0.jar",
			}
			if diff := cmp.Diff(want, files); diff != "" {
				t.Errorf("remote files mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGoGitEmptyRemote(t *testing.T) {
	if !gitrepotest.GitAvailable() {
		t.Skip("git binary not available")
	}
	ctx := context.Background()
	remote, err := gitrepotest.CreateRemote(filepath.Join(t.TempDir(), "remote.git"), nil)
	if err != nil {
		t.Fatal(err)
	}
	r, err := GoGitClone(ctx, remote.URL(), Options{TempDir: t.TempDir()})
	if err != nil {
		t.Fatalf("GoGitClone() error: %v", err)
	}
	writeFiles(t, r.Dir(), "snapshots/x.pom")
	if err := r.Push(ctx, "g:a:1-SNAPSHOT"); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	_, files, err := remote.Tip(DefaultBranch)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(gitrepotest.FileContent{"snapshots/x.pom": "snapshots/x.pom"}, files); diff != "" {
		t.Errorf("remote files mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneMissingRemote(t *testing.T) {
	if !gitrepotest.GitAvailable() {
		t.Skip("git binary not available")
	}
	missing := filepath.Join(t.TempDir(), "does-not-exist.git")
	for name, clone := range map[string]CloneFunc{
		"native": NativeCloner(command.NewRealExecutor(), Options{TempDir: t.TempDir()}),
		"go-git": GoGitCloner(Options{TempDir: t.TempDir()}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := clone(context.Background(), missing)
			var ce *CloneError
			if !errors.As(err, &ce) {
				t.Errorf("clone error = %v, want CloneError", err)
			}
		})
	}
}
