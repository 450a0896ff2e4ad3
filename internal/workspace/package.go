// ABOUTME: Package model: entry-point discovery, platform/target classification
// ABOUTME: A Package is immutable after load; every successfully constructed Package
// ABOUTME: has a valid entry file on disk

package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/depot-go/depot/internal/process"
)

// Platform is the execution environment of a package's compiled output.
type Platform string

const (
	PlatformBrowser Platform = "browser"
	PlatformNode    Platform = "node"
)

// Target is the shape of a package's output.
type Target string

const (
	TargetLib  Target = "lib"
	TargetBin  Target = "bin"
	TargetSite Target = "site"
)

// entryRule is one (basename, platform, target) candidate in discovery
// order. First match wins.
type entryRule struct {
	basename string
	platform Platform
	target   Target
}

var entryRules = []entryRule{
	{"lib", PlatformNode, TargetLib},
	{"main", PlatformNode, TargetBin},
	{"index", PlatformBrowser, TargetBin},
}

var entryExtensions = []string{"tsx", "ts", "js"}

// Package is an immutable record of one workspace package, produced once
// at workspace load time.
type Package struct {
	Dir           string
	WorkspaceRoot string // set by Load once the owning Workspace's root is known
	Manifest      *Manifest
	Name          string
	Platform      Platform
	Target        Target
	EntryPoint    string
}

// findEntryPoint applies the entry-point discovery rule: for each
// (basename, platform, target) in order, and each extension in order,
// look for <dir>/src/<basename>.<ext>. First match wins.
func findEntryPoint(dir string) (string, Platform, Target, bool) {
	for _, rule := range entryRules {
		for _, ext := range entryExtensions {
			candidate := filepath.Join(dir, "src", fmt.Sprintf("%s.%s", rule.basename, ext))
			if fileExists(candidate) {
				return candidate, rule.platform, rule.target, true
			}
		}
	}
	return "", "", "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadPackage parses the manifest at dir and discovers its entry point.
// Failure to find any entry file is a fatal error for this package.
func LoadPackage(dir string) (*Package, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve package directory %q: %w", dir, err)
	}

	manifest, err := LoadManifest(absDir)
	if err != nil {
		return nil, err
	}

	entry, platform, target, ok := findEntryPoint(absDir)
	if !ok {
		return nil, fmt.Errorf(
			"could not find entry point in package directory: %q (looked for src/{lib,main,index}.{tsx,ts,js})",
			absDir,
		)
	}

	name := manifest.Name
	if name == "" {
		name = filepath.Base(absDir)
	}

	return &Package{
		Dir:        absDir,
		Manifest:   manifest,
		Name:       name,
		Platform:   platform,
		Target:     target,
		EntryPoint: entry,
	}, nil
}

// Path resolves rel against the package's directory.
func (p *Package) Path(rel string) string {
	return filepath.Join(p.Dir, rel)
}

// Spawn returns process.Options for running script with args in this
// package's directory, carrying the workspace root along so the
// process runner can resolve the package's hoisted node_modules/.bin
// alongside its own bundled helpers.
func (p *Package) Spawn(script string, args []string) process.Options {
	return process.Options{
		Script:        script,
		Args:          args,
		Dir:           p.Dir,
		WorkspaceRoot: p.WorkspaceRoot,
	}
}
