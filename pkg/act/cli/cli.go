// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/google/gitdeploy/pkg/act"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type Deps interface {
	SetIO(IO)
}

// ParseArgs populates an Input from positional arguments.
type ParseArgs[I act.Input] func(in *I, args []string) error

// PreRun adjusts an Input after flags are parsed and before validation.
type PreRun[I act.Input] func(cmd *cobra.Command, in *I) error

// RunE constructs a cobra.Command.RunE from act components.
// This function wires together:
//  1. Parsing positional arguments into the Input
//  2. Running optional pre-validation hooks (e.g. loading a config file)
//  3. Validating the Input
//  4. Initializing dependencies
//  5. Attaching IO streams to dependencies
//  6. Executing the action
func RunE[I act.Input, O any, D Deps](
	cfg *I,
	parseArgs ParseArgs[I],
	initDeps act.InitDeps[I, D],
	action act.Action[I, O, D],
	pre ...PreRun[I],
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := parseArgs(cfg, args); err != nil {
			return err
		}
		for _, p := range pre {
			if err := p(cmd, cfg); err != nil {
				return err
			}
		}
		if err := (*cfg).Validate(); err != nil {
			return err
		}
		deps, err := initDeps(cmd.Context(), *cfg)
		if err != nil {
			return errors.Wrap(err, "initializing dependencies")
		}
		deps.SetIO(IO{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
		_, err = action(cmd.Context(), *cfg, deps)
		return err
	}
}
