// ABOUTME: Package manifest (package.json) parsing
// ABOUTME: Errors are wrapped with the manifest path, indented for readability

package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manifest is the subset of package.json fields depot reads. Unknown
// fields are preserved in Other so a future "depot" stanza could be
// added without a breaking schema change, though nothing in this
// repository currently reads it.
type Manifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
	Other           map[string]json.RawMessage `json:"-"`
}

// LoadManifest reads and parses the package.json at dir/package.json.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("package does not have manifest at: %q\n  %w", dir, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("could not parse manifest: %q\n  %w", path, indentErr(err))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		m.Other = raw
	}

	return &m, nil
}

// indentErr indents a multi-line error message by two spaces for
// readability when nested under a "could not parse" wrapper.
func indentErr(err error) error {
	lines := strings.Split(err.Error(), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return errors.New(strings.Join(lines, "\n"))
}

// AllDependencyNames returns the union of keys across dependencies,
// devDependencies, and peerDependencies.
func (m *Manifest) AllDependencyNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies, m.PeerDependencies} {
		for name := range deps {
			names[name] = struct{}{}
		}
	}
	return names
}

// ExternalNames returns the union of dependencies and peerDependencies
// keys only (excludes devDependencies), used to mark a bundler's
// external-module list.
func (m *Manifest) ExternalNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, deps := range []map[string]string{m.Dependencies, m.PeerDependencies} {
		for name := range deps {
			names[name] = struct{}{}
		}
	}
	return names
}
