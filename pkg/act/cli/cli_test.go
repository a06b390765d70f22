// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Test types
type TestConfig struct {
	Name string
	Args []string
}

func (c TestConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type TestDeps struct {
	IO       IO
	Greeting string
}

func (d *TestDeps) SetIO(cio IO) { d.IO = cio }

type TestOutput struct{}

func testAction(ctx context.Context, cfg TestConfig, deps *TestDeps) (*TestOutput, error) {
	deps.IO.Out.Write([]byte(deps.Greeting + " " + cfg.Name))
	return &TestOutput{}, nil
}

func testInitDeps(ctx context.Context, cfg TestConfig) (*TestDeps, error) {
	return &TestDeps{Greeting: "Hello"}, nil
}

func TestRunE(t *testing.T) {
	cfg := TestConfig{}
	cmd := &cobra.Command{
		Use: "test",
		RunE: RunE(
			&cfg,
			func(cfg *TestConfig, args []string) error {
				cfg.Args = args
				return nil
			},
			testInitDeps,
			testAction,
			func(cmd *cobra.Command, cfg *TestConfig) error {
				cfg.Name = "World"
				return nil
			},
		),
	}
	var outBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetArgs([]string{"a"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := outBuf.String(), "Hello World"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "a" {
		t.Errorf("args = %v", cfg.Args)
	}
}

func TestRunEValidationFailure(t *testing.T) {
	cfg := TestConfig{}
	called := false
	cmd := &cobra.Command{
		Use: "test",
		RunE: RunE(
			&cfg,
			func(*TestConfig, []string) error { return nil },
			func(ctx context.Context, cfg TestConfig) (*TestDeps, error) {
				called = true
				return &TestDeps{}, nil
			},
			testAction,
		),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected validation error")
	}
	if called {
		t.Error("InitDeps ran despite invalid config")
	}
}

type codedErr int

func (c codedErr) Error() string { return "coded" }
func (c codedErr) ExitCode() int { return int(c) }

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", &UsageError{Msg: "missing"}, ExitUsage},
		{"unknown", errors.New("boom"), ExitUnknown},
		{"coded", codedErr(4), 4},
		{"wrapped coded", errors.Wrap(codedErr(3), "context"), 3},
		{"reported coded", Reported(errors.Wrap(codedErr(5), "context")), 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReported(t *testing.T) {
	if Reported(nil) != nil {
		t.Error("Reported(nil) should be nil")
	}
	err := errors.New("boom")
	if IsReported(err) {
		t.Error("unmarked error reported")
	}
	if !IsReported(errors.Wrap(Reported(err), "outer")) {
		t.Error("marked error not reported")
	}
	if !errors.Is(Reported(err), err) {
		t.Error("Reported should wrap the original error")
	}
}
