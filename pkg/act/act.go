// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package act provides transport-agnostic abstractions for building actions
// that can be exposed via the CLI or other interfaces.
package act

import "context"

// Input is a validated input type (flags, config, etc.)
type Input interface {
	Validate() error
}

// Deps is a marker type for dependency containers.
type Deps any

// InitDeps initializes dependencies from the validated input.
type InitDeps[I Input, D Deps] func(context.Context, I) (D, error)

// Action is a transport-agnostic operation.
type Action[I Input, O any, D Deps] func(context.Context, I, D) (*O, error)
