// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MockExecutor implements Executor for testing.
type MockExecutor struct {
	mu           sync.RWMutex
	calls        []Call
	executeFunc  func(ctx context.Context, opts Options, name string, args ...string) error
	lookPathFunc func(file string) (string, error)
}

// Call is one recorded Execute invocation.
type Call struct {
	Name  string
	Args  []string
	Dir   string
	Error error
}

// String renders the call the way it would be typed into a shell.
func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// NewMockExecutor creates a mock executor where every command succeeds.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// SetExecuteFunc sets a custom function for Execute calls.
func (m *MockExecutor) SetExecuteFunc(f func(ctx context.Context, opts Options, name string, args ...string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executeFunc = f
}

// SetLookPathFunc sets a custom function for LookPath calls.
func (m *MockExecutor) SetLookPathFunc(f func(file string) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookPathFunc = f
}

func (m *MockExecutor) Execute(ctx context.Context, opts Options, name string, args ...string) error {
	m.mu.RLock()
	f := m.executeFunc
	m.mu.RUnlock()
	var err error
	if f != nil {
		err = f(ctx, opts, name, args...)
	} else if opts.Output != nil {
		fmt.Fprintf(opts.Output, "mock output for: %s %s\n", name, strings.Join(args, " "))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{
		Name:  name,
		Args:  slices.Clone(args),
		Dir:   opts.Dir,
		Error: err,
	})
	return err
}

// Calls returns all recorded calls in order.
func (m *MockExecutor) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.calls)
}

// Reset clears all recorded calls.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MockExecutor) LookPath(file string) (string, error) {
	m.mu.RLock()
	f := m.lookPathFunc
	m.mu.RUnlock()
	if f != nil {
		return f(file)
	}
	return "/usr/bin/" + file, nil
}

// ExitStatus is an error that reports a fixed process exit status. Mock
// execute funcs return it to simulate a tool exiting non-zero.
type ExitStatus int

func (e ExitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// ExitCode returns the simulated status.
func (e ExitStatus) ExitCode() int { return int(e) }
