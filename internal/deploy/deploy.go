// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package deploy publishes a Maven project into a git-hosted file repository.
package deploy

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/gitdeploy/internal/command"
	"github.com/google/gitdeploy/internal/gitrepo"
	"github.com/google/gitdeploy/internal/logging"
	"github.com/google/gitdeploy/pkg/act/cli"
	"github.com/google/gitdeploy/pkg/pom"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Result describes a completed deploy.
type Result struct {
	Coordinates   string
	RemoteURL     string
	Destination   string
	CommitMessage string
	// Files is the number of files committed.
	Files int
}

// Backend creates clones configured by opts.
type Backend func(opts gitrepo.Options) gitrepo.CloneFunc

// Deps holds dependencies for the command.
type Deps struct {
	IO       cli.IO
	Logger   *zap.Logger
	Executor command.Executor
	Backend  Backend
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(_ context.Context, cfg Config) (*Deps, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}
	ex := command.NewRealExecutor()
	if err := preflight(ex, cfg); err != nil {
		return nil, err
	}
	var backend Backend
	switch cfg.GitBackend {
	case BackendGoGit:
		backend = gitrepo.GoGitCloner
	default:
		backend = func(opts gitrepo.Options) gitrepo.CloneFunc { return gitrepo.NativeCloner(ex, opts) }
	}
	return &Deps{Logger: logger, Executor: ex, Backend: backend}, nil
}

// preflight resolves the external tools the configured deploy runs, so a
// missing tool is reported before any clone is made.
func preflight(ex command.Executor, cfg Config) error {
	tools := []string{cfg.Maven}
	if cfg.GitBackend != BackendGoGit {
		tools = append(tools, "git")
	}
	for _, tool := range tools {
		if _, err := ex.LookPath(tool); err != nil {
			return &ConfigError{Msg: "cannot find " + tool, Err: err}
		}
	}
	return nil
}

// Deploy builds the project in cfg.Target with maven, deploying into a
// temporary clone of its distribution repository, and pushes the result.
//
// A missing target directory is logged and returns (nil, nil). Once a clone
// exists it is deleted exactly once on every return path.
func Deploy(ctx context.Context, cfg Config, deps *Deps) (*Result, error) {
	log := deps.Logger
	if info, err := os.Stat(cfg.Target); err != nil || !info.IsDir() {
		log.Error("Target project directory does not exist", zap.String("dir", cfg.Target))
		return nil, nil
	}
	target, err := filepath.Abs(cfg.Target)
	if err != nil {
		return nil, errors.Wrap(err, "resolving target directory")
	}
	log.Info("Target project directory", zap.String("dir", target))

	desc, err := pom.Read(target)
	if err != nil {
		return nil, err
	}
	log.Info("Read project descriptor",
		zap.String("coordinates", desc.Coordinates()),
		zap.Bool("snapshot", desc.Snapshot),
		zap.String("repository", desc.RepositoryID),
		zap.String("remote", desc.RemoteURL))

	clone := deps.Backend(gitrepo.Options{
		Branch:     cfg.Branch,
		TempDir:    cfg.TempDir,
		Keep:       cfg.KeepClone,
		BestEffort: cfg.BestEffortPush,
		Timeout:    cfg.Timeout,
		Output:     deps.IO.Out,
		Logger:     log,
	})
	repo, err := clone(ctx, desc.RemoteURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := repo.Delete(); err != nil {
			log.Warn("Failed to remove clone", zap.String("dir", repo.Dir()), zap.Error(err))
		}
	}()
	log.Info("Cloned maven repository", zap.String("dir", repo.Dir()))

	dc := NewMavenCommand(desc, repo.Dir())
	args := dc.Args(cfg.MavenArgs)
	log.Debug("Executing", zap.String("command", cfg.Maven+" "+strings.Join(args, " ")), zap.String("dir", target))
	err = deps.Executor.Execute(ctx, command.Options{
		Output:  deps.IO.Out,
		Dir:     target,
		Timeout: cfg.Timeout,
	}, cfg.Maven, args...)
	if err != nil {
		color.New(color.FgRed).Fprintln(deps.IO.Out, "Deploy failed.")
		return nil, &BuildFailure{Status: command.ExitCode(err), Err: err}
	}

	files, err := repo.Files()
	if err != nil {
		return nil, errors.Wrap(err, "listing deployed files")
	}
	msg := desc.Coordinates()
	if err := repo.Push(ctx, msg); err != nil {
		return nil, err
	}
	log.Info("Pushed artifacts", zap.String("commit", msg), zap.Int("files", len(files)))
	return &Result{
		Coordinates:   desc.Coordinates(),
		RemoteURL:     desc.RemoteURL,
		Destination:   dc.Destination,
		CommitMessage: msg,
		Files:         len(files),
	}, nil
}

// Handler runs Deploy, logging failures and printing a summary on success.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*Result, error) {
	defer deps.Logger.Sync()
	res, err := Deploy(ctx, cfg, deps)
	if err != nil {
		deps.Logger.Error("Deploy failed", zap.Error(err))
		return nil, cli.Reported(err)
	}
	if res != nil {
		color.New(color.FgGreen).Fprintf(deps.IO.Out, "Deployed %s to %s (%s, %d files)\n", res.Coordinates, res.RemoteURL, res.Destination, res.Files)
	}
	return res, nil
}

func parseArgs(cfg *Config, args []string) error {
	if len(args) != 1 {
		return &cli.UsageError{Msg: "expected exactly one target project directory"}
	}
	cfg.Target = args[0]
	return nil
}

// Command creates a new deploy command instance.
func Command() *cobra.Command {
	cfg := DefaultConfig()
	cmd := &cobra.Command{
		Use:   "gitdeploy [flags] <target-project-dir>",
		Short: "Deploys a Maven project into a git-hosted Maven repository",
		Long: `Deploys a Maven project into a Maven repository kept in a git remote.

The remote is derived from the project's distributionManagement section: the
repository URL https://host/owner/repo/... is cloned from https://host/owner/repo.git.
Releases are deployed under releases/, snapshots under snapshots/, and the
result is committed as group:artifact:version and pushed to origin.`,
		RunE: cli.RunE(
			&cfg,
			parseArgs,
			InitDeps,
			Handler,
			func(cmd *cobra.Command, cfg *Config) error {
				return loadConfigFile(cmd.Flags().Changed, cfg)
			},
		),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.Flags().AddGoFlagSet(flagSet(cmd.Name(), &cfg))
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cli.UsageError{Msg: err.Error()}
	})
	return cmd
}
