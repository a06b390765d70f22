// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"bytes"
	"flag"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/gitdeploy/internal/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Git backends.
const (
	BackendNative = "native"
	BackendGoGit  = "go-git"
)

// Config holds all configuration for the deploy command.
type Config struct {
	// Target is the Maven project directory.
	Target string
	// ConfigFile optionally supplies defaults for unset flags.
	ConfigFile string

	Maven          string
	MavenArgs      []string
	GitBackend     string
	Branch         string
	KeepClone      bool
	BestEffortPush bool
	Timeout        time.Duration
	TempDir        string

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Maven:      "mvn",
		GitBackend: BackendNative,
		Branch:     "master",
		LogLevel:   "info",
		LogFormat:  logging.FormatConsole,
	}
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Target == "" {
		return &ConfigError{Msg: "target project directory is required"}
	}
	if c.Maven == "" {
		return &ConfigError{Msg: "maven executable is required"}
	}
	switch c.GitBackend {
	case BackendNative, BackendGoGit:
	default:
		return &ConfigError{Msg: "unknown git backend " + c.GitBackend}
	}
	if c.Branch == "" {
		return &ConfigError{Msg: "branch is required"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Msg: "timeout must not be negative"}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return &ConfigError{Msg: "invalid log level", Err: err}
	}
	switch c.LogFormat {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return &ConfigError{Msg: "unknown log format " + c.LogFormat}
	}
	return nil
}

// File is the YAML configuration file. Unset keys leave the flag value alone.
type File struct {
	Maven          *string  `yaml:"maven"`
	MavenArgs      []string `yaml:"maven-args"`
	GitBackend     *string  `yaml:"git-backend"`
	Branch         *string  `yaml:"branch"`
	KeepClone      *bool    `yaml:"keep-clone"`
	BestEffortPush *bool    `yaml:"best-effort-push"`
	Timeout        *string  `yaml:"timeout"`
	TempDir        *string  `yaml:"temp-dir"`
	LogLevel       *string  `yaml:"log-level"`
	LogFormat      *string  `yaml:"log-format"`
}

// LoadFile reads a configuration file, rejecting unknown keys.
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Msg: "reading config file", Err: err}
	}
	var f File
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(&f); err != nil && err != io.EOF {
		return nil, &ConfigError{Msg: "parsing config file " + path, Err: err}
	}
	return &f, nil
}

// Apply copies file values into cfg for every flag for which explicit(name)
// is false.
func (f *File) Apply(cfg *Config, explicit func(name string) bool) error {
	setString := func(name string, src *string, dst *string) {
		if src != nil && !explicit(name) {
			*dst = *src
		}
	}
	setBool := func(name string, src *bool, dst *bool) {
		if src != nil && !explicit(name) {
			*dst = *src
		}
	}
	setString("maven", f.Maven, &cfg.Maven)
	setString("git-backend", f.GitBackend, &cfg.GitBackend)
	setString("branch", f.Branch, &cfg.Branch)
	setString("temp-dir", f.TempDir, &cfg.TempDir)
	setString("log-level", f.LogLevel, &cfg.LogLevel)
	setString("log-format", f.LogFormat, &cfg.LogFormat)
	setBool("keep-clone", f.KeepClone, &cfg.KeepClone)
	setBool("best-effort-push", f.BestEffortPush, &cfg.BestEffortPush)
	if f.MavenArgs != nil && !explicit("maven-arg") {
		cfg.MavenArgs = append([]string(nil), f.MavenArgs...)
	}
	if f.Timeout != nil && !explicit("timeout") {
		d, err := time.ParseDuration(*f.Timeout)
		if err != nil {
			return &ConfigError{Msg: "invalid timeout " + *f.Timeout, Err: err}
		}
		cfg.Timeout = d
	}
	return nil
}

// stringList is a repeatable string flag.
type stringList struct {
	values *[]string
}

func (s stringList) String() string {
	if s.values == nil {
		return ""
	}
	return strings.Join(*s.values, ",")
}

func (s stringList) Set(v string) error {
	*s.values = append(*s.values, v)
	return nil
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.StringVar(&cfg.ConfigFile, "config", "", "YAML file providing defaults for unset flags")
	set.StringVar(&cfg.Maven, "maven", cfg.Maven, "the maven executable")
	set.Var(stringList{&cfg.MavenArgs}, "maven-arg", "extra argument passed to maven before the goals (repeatable)")
	set.StringVar(&cfg.GitBackend, "git-backend", cfg.GitBackend, "how to talk to git: native or go-git")
	set.StringVar(&cfg.Branch, "branch", cfg.Branch, "the branch pushed to origin")
	set.BoolVar(&cfg.KeepClone, "keep-clone", cfg.KeepClone, "keep the temporary clone on disk for diagnostics")
	set.BoolVar(&cfg.BestEffortPush, "best-effort-push", cfg.BestEffortPush, "continue the push protocol past failed steps")
	set.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-command timeout for git and maven (0 disables)")
	set.StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "parent directory for temporary clones")
	set.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	set.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
	return set
}

func loadConfigFile(explicit func(string) bool, cfg *Config) error {
	if cfg.ConfigFile == "" {
		return nil
	}
	f, err := LoadFile(cfg.ConfigFile)
	if err != nil {
		return err
	}
	return errors.WithStack(f.Apply(cfg, explicit))
}
