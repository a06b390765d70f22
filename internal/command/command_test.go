// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestRealExecutor(t *testing.T) {
	executor := NewRealExecutor()
	ctx := context.Background()

	t.Run("Output discarded", func(t *testing.T) {
		if err := executor.Execute(ctx, Options{}, "echo", "hello world"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	})

	t.Run("Streaming", func(t *testing.T) {
		var buf bytes.Buffer
		if err := executor.Execute(ctx, Options{Output: &buf}, "echo", "streaming test"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "streaming test" {
			t.Errorf("Expected 'streaming test', got '%s'", got)
		}
	})

	t.Run("Dir", func(t *testing.T) {
		dir := t.TempDir()
		var buf bytes.Buffer
		if err := executor.Execute(ctx, Options{Output: &buf, Dir: dir}, "pwd"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		// macOS temp dirs may be reached through a symlink.
		if got := strings.TrimSpace(buf.String()); !strings.HasSuffix(got, strings.TrimPrefix(dir, "/private")) {
			t.Errorf("pwd = %q, want %q", got, dir)
		}
	})

	t.Run("Non-zero exit", func(t *testing.T) {
		err := executor.Execute(ctx, Options{}, "sh", "-c", "exit 3")
		if err == nil {
			t.Fatal("Expected error, got none")
		}
		if code := ExitCode(err); code != 3 {
			t.Errorf("ExitCode() = %d, want 3", code)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		start := time.Now()
		err := executor.Execute(ctx, Options{Timeout: 50 * time.Millisecond}, "sleep", "5")
		if err == nil {
			t.Fatal("Expected timeout error, got none")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline exceeded, got: %v", err)
		}
		if !strings.Contains(err.Error(), "timed out after 50ms") {
			t.Errorf("Expected timeout message, got: %v", err)
		}
		if time.Since(start) > 4*time.Second {
			t.Error("Timeout did not stop the command")
		}
	})

	t.Run("Caller deadline", func(t *testing.T) {
		for name, timeout := range map[string]time.Duration{"no timeout": 0, "longer timeout": time.Minute} {
			t.Run(name, func(t *testing.T) {
				cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
				defer cancel()
				err := executor.Execute(cctx, Options{Timeout: timeout}, "sleep", "5")
				if err == nil {
					t.Fatal("Expected error, got none")
				}
				if strings.Contains(err.Error(), "timed out after") {
					t.Errorf("Caller deadline reported as command timeout: %v", err)
				}
			})
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), -1},
		{"status", ExitStatus(7), 7},
		{"wrapped status", errors.Wrap(ExitStatus(2), "running mvn"), 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMockExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("Default behavior", func(t *testing.T) {
		mock := NewMockExecutor()
		var buf bytes.Buffer
		if err := mock.Execute(ctx, Options{Output: &buf, Dir: "/work"}, "git", "status"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if want := "mock output for: git status"; !strings.Contains(buf.String(), want) {
			t.Errorf("Expected output to contain '%s', got '%s'", want, buf.String())
		}
		want := []Call{{Name: "git", Args: []string{"status"}, Dir: "/work"}}
		if diff := cmp.Diff(want, mock.Calls(), cmp.Comparer(func(a, b error) bool { return a == b })); diff != "" {
			t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Custom execute function", func(t *testing.T) {
		mock := NewMockExecutor()
		mock.SetExecuteFunc(func(ctx context.Context, opts Options, name string, args ...string) error {
			if name == "mvn" {
				return ExitStatus(1)
			}
			return nil
		})
		if err := mock.Execute(ctx, Options{}, "git", "add"); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		err := mock.Execute(ctx, Options{Dir: "/work"}, "mvn", "deploy")
		if ExitCode(err) != 1 {
			t.Errorf("Expected exit status 1, got: %v", err)
		}
		calls := mock.Calls()
		if len(calls) != 2 {
			t.Fatalf("Expected 2 calls, got %d", len(calls))
		}
		if calls[1].Dir != "/work" || calls[1].Error == nil {
			t.Errorf("Call not recorded correctly: %+v", calls[1])
		}
		if got := calls[1].String(); got != "mvn deploy" {
			t.Errorf("String() = %q", got)
		}
		mock.Reset()
		if len(mock.Calls()) != 0 {
			t.Error("Reset() did not clear calls")
		}
	})

	t.Run("LookPath", func(t *testing.T) {
		mock := NewMockExecutor()
		if path, err := mock.LookPath("git"); err != nil || path != "/usr/bin/git" {
			t.Errorf("LookPath() = %q, %v", path, err)
		}
		mock.SetLookPathFunc(func(file string) (string, error) {
			return "", fmt.Errorf("command not found: %s", file)
		})
		if _, err := mock.LookPath("mvn"); err == nil {
			t.Error("Expected custom LookPath to fail")
		}
	})
}

func TestRealExecutorLookPath(t *testing.T) {
	executor := NewRealExecutor()
	if _, err := executor.LookPath("sh"); err != nil {
		t.Fatalf("Expected to find sh, got error: %v", err)
	}
	if _, err := executor.LookPath("nonexistent-command-12345"); err == nil {
		t.Error("Expected error for nonexistent command")
	}
	var execErr *exec.Error
	_, err := executor.LookPath("nonexistent-command-12345")
	if !errors.As(err, &execErr) {
		t.Errorf("Expected *exec.Error, got %T", err)
	}
}
