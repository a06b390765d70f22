// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pom

import (
	"net/url"
	"strings"
)

// DeriveRemoteURL maps a repository URL served out of a git hosting path onto
// the git remote backing it: scheme://host/a/b/... becomes scheme://host/a/b.git.
func DeriveRemoteURL(repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", &MetadataError{Reason: "malformed repository URL " + repoURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &MetadataError{Reason: "malformed repository URL " + repoURL + ": missing scheme or host"}
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) < 2 {
		return "", &MetadataError{Reason: "malformed repository URL " + repoURL + ": need at least two path segments"}
	}
	remote := url.URL{
		Scheme: u.Scheme,
		User:   u.User,
		Host:   u.Host,
		Path:   "/" + segs[0] + "/" + strings.TrimSuffix(segs[1], ".git") + ".git",
	}
	return remote.String(), nil
}
