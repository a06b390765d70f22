// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// gitdeploy deploys a Maven project into a Maven repository hosted as a git remote.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/gitdeploy/internal/deploy"
	"github.com/google/gitdeploy/pkg/act/cli"
	"github.com/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd := deploy.Command()
	err := cmd.ExecuteContext(ctx)
	stop()
	var usage *cli.UsageError
	switch {
	case err == nil:
	case errors.As(err, &usage):
		fmt.Fprintln(os.Stdout, usage.Msg)
		fmt.Fprint(os.Stdout, cmd.UsageString())
	case !cli.IsReported(err):
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
