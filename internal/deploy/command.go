// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"path/filepath"
	"strconv"

	"github.com/google/gitdeploy/pkg/pom"
)

// Destination subdirectories inside the clone.
const (
	ReleasesDir  = "releases"
	SnapshotsDir = "snapshots"
)

// MavenCommand is the maven invocation that deploys a project into a clone.
type MavenCommand struct {
	// Destination is the clone subdirectory receiving the artifacts.
	Destination string
	// UpdateReleaseInfo asks maven to update release metadata. Only set
	// for release versions.
	UpdateReleaseInfo bool
	RepositoryID      string
	// Path is the absolute deploy directory.
	Path string
}

// NewMavenCommand selects the destination and metadata policy for desc.
func NewMavenCommand(desc *pom.Descriptor, cloneDir string) MavenCommand {
	dest := ReleasesDir
	if desc.Snapshot {
		dest = SnapshotsDir
	}
	return MavenCommand{
		Destination:       dest,
		UpdateReleaseInfo: !desc.Snapshot,
		RepositoryID:      desc.RepositoryID,
		Path:              filepath.Join(cloneDir, dest),
	}
}

// Args renders maven's arguments with extra placed before the goals.
func (c MavenCommand) Args(extra []string) []string {
	args := []string{
		"-DaltDeploymentRepository=" + c.RepositoryID + "::default::file:" + c.Path,
		"-DupdateReleaseInfo=" + strconv.FormatBool(c.UpdateReleaseInfo),
	}
	args = append(args, extra...)
	return append(args, "clean", "deploy")
}
