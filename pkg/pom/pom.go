// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package pom reads the deploy-relevant parts of a Maven project descriptor.
package pom

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileName is the descriptor file looked up in a project directory.
const FileName = "pom.xml"

// SnapshotSuffix marks a pre-release version.
const SnapshotSuffix = "-SNAPSHOT"

const (
	releaseSection  = "distributionManagement/repository"
	snapshotSection = "distributionManagement/snapshotRepository"
)

// Descriptor holds the coordinates and distribution target of a project.
type Descriptor struct {
	GroupID    string
	ArtifactID string
	Version    string
	// Snapshot is true for pre-release versions.
	Snapshot bool
	// RepositoryID and RepositoryURL come from the distribution section
	// selected for this version.
	RepositoryID  string
	RepositoryURL string
	// RemoteURL is the git remote derived from RepositoryURL.
	RemoteURL string
}

// Coordinates returns the group:artifact:version triple.
func (d *Descriptor) Coordinates() string {
	return d.GroupID + ":" + d.ArtifactID + ":" + d.Version
}

// IsSnapshot reports whether version denotes a pre-release build.
func IsSnapshot(version string) bool {
	return strings.HasSuffix(version, SnapshotSuffix)
}

// Read parses the descriptor of the project in dir.
func Read(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, &MetadataError{Path: path, Reason: "opening descriptor", Err: err}
	}
	defer f.Close()
	d, err := Parse(f)
	if err != nil {
		var me *MetadataError
		if errors.As(err, &me) && me.Path == "" {
			me.Path = path
		}
		return nil, err
	}
	return d, nil
}

// Parse reads a descriptor from r.
func Parse(r io.Reader) (*Descriptor, error) {
	root, err := decode(r)
	if err != nil {
		return nil, &MetadataError{Reason: "malformed descriptor", Err: err}
	}
	var d Descriptor
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{"groupId", &d.GroupID},
		{"artifactId", &d.ArtifactID},
		{"version", &d.Version},
	} {
		if *f.dst, err = root.text(f.path); err != nil {
			return nil, err
		}
	}
	d.Snapshot = IsSnapshot(d.Version)
	section := releaseSection
	if d.Snapshot && root.find(snapshotSection) != nil {
		section = snapshotSection
	}
	if root.find(section) == nil {
		return nil, &MetadataError{Reason: "distribution section not found"}
	}
	if d.RepositoryID, err = root.text(section + "/id"); err != nil {
		return nil, err
	}
	if d.RepositoryURL, err = root.text(section + "/url"); err != nil {
		return nil, err
	}
	if d.RemoteURL, err = DeriveRemoteURL(d.RepositoryURL); err != nil {
		return nil, err
	}
	return &d, nil
}

// element is a minimal DOM node. Only element structure and character data
// are retained.
type element struct {
	name     xml.Name
	text     strings.Builder
	children []*element
}

// document is a parsed descriptor whose lookups are qualified with the
// namespace declared on the root element.
type document struct {
	root *element
	ns   string
}

func decode(r io.Reader) (*document, error) {
	dec := xml.NewDecoder(r)
	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &element{name: t.Name}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return &document{root: root, ns: root.name.Space}, nil
}

// find resolves a slash-separated path relative to the root. Every segment is
// matched in the root's namespace.
func (d *document) find(path string) *element {
	cur := d.root
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		var next *element
		for _, c := range cur.children {
			if c.name.Local == seg && c.name.Space == d.ns {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// text returns the trimmed character data at path, failing when the element
// is absent or blank.
func (d *document) text(path string) (string, error) {
	e := d.find(path)
	if e == nil {
		return "", &MetadataError{Reason: "missing " + path}
	}
	s := strings.TrimSpace(e.text.String())
	if s == "" {
		return "", &MetadataError{Reason: "empty " + path}
	}
	return s, nil
}
