// ABOUTME: Workspace discovery: root detection, monorepo layout, concurrent package load
// ABOUTME: Immutable after Load; read concurrently by the task scheduler without locks

package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/depot-go/depot/internal/config"
	"github.com/depot-go/depot/internal/logging"
	"github.com/depot-go/depot/internal/vcs"
	"golang.org/x/sync/errgroup"
)

// Workspace is the shared, read-only data source for a single command
// invocation. Constructed once by Load.
type Workspace struct {
	Root      string
	Monorepo  bool
	Packages  []*Package
	PkgMap    map[string]*Package
	DepGraph  *DepGraph
	Config    config.WorkspaceConfig
}

// findManifestUpward walks from cwd up to (and including) maxAncestor,
// returning the first directory that contains a package.json.
func findManifestUpward(maxAncestor, cwd string) (string, bool) {
	dir := cwd
	for {
		if fileExists(filepath.Join(dir, "package.json")) {
			return dir, true
		}
		if dir == maxAncestor || dir == filepath.Dir(dir) {
			break
		}
		dir = filepath.Dir(dir)
	}
	return "", false
}

// findWorkspaceRoot implements the root-discovery rule: find the git
// repository root (if any) to bound the search, then walk upward from
// cwd looking for the first package.json. Without a git root, the
// current directory must itself contain a manifest.
func findWorkspaceRoot(cwd string) (string, error) {
	if gitRoot, ok := vcs.RepoRoot(cwd); ok {
		if root, found := findManifestUpward(gitRoot, cwd); found {
			return root, nil
		}
		return "", fmt.Errorf("could not find workspace root (no package.json between %q and git root %q)", cwd, gitRoot)
	}

	if fileExists(filepath.Join(cwd, "package.json")) {
		return cwd, nil
	}
	return "", fmt.Errorf("could not find workspace root: no git repository and no package.json in %q", cwd)
}

// Load determines the workspace root, detects monorepo mode, loads every
// package concurrently, and builds the dependency graph.
func Load(ctx context.Context, cwd string) (*Workspace, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine current directory: %w", err)
		}
		cwd = wd
	}

	root, err := findWorkspaceRoot(cwd)
	if err != nil {
		return nil, err
	}
	logging.Debug("workspace root: %s", root)

	pkgDir := filepath.Join(root, "packages")
	info, statErr := os.Stat(pkgDir)
	monorepo := statErr == nil && info.IsDir()
	logging.Debug("workspace is monorepo: %v", monorepo)

	var pkgRoots []string
	if monorepo {
		entries, err := os.ReadDir(pkgDir)
		if err != nil {
			return nil, fmt.Errorf("could not read packages directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				pkgRoots = append(pkgRoots, filepath.Join(pkgDir, e.Name()))
			}
		}
	} else {
		pkgRoots = []string{root}
	}

	packages := make([]*Package, len(pkgRoots))
	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range pkgRoots {
		i, dir := i, dir
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			pkg, err := LoadPackage(dir)
			if err != nil {
				return err
			}
			pkg.WorkspaceRoot = root
			packages[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(packages, func(i, j int) bool { return packages[i].Name < packages[j].Name })

	pkgMap := make(map[string]*Package, len(packages))
	for _, p := range packages {
		if _, dup := pkgMap[p.Name]; dup {
			return nil, fmt.Errorf("duplicate package name in workspace: %q", p.Name)
		}
		pkgMap[p.Name] = p
	}

	depGraph, err := BuildDepGraph(packages)
	if err != nil {
		return nil, err
	}

	wsCfg, err := config.LoadWorkspaceConfig(root)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Root:     root,
		Monorepo: monorepo,
		Packages: packages,
		PkgMap:   pkgMap,
		DepGraph: depGraph,
		Config:   wsCfg,
	}, nil
}

// PackageNames returns every package name in the workspace, sorted.
func (w *Workspace) PackageNames() []string {
	names := make([]string, 0, len(w.Packages))
	for _, p := range w.Packages {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// DependencyClosure returns the packages reachable from roots through the
// dependency graph, in deterministic dependency-then-name order.
func (w *Workspace) DependencyClosure(roots []string) []*Package {
	return DependencyClosure(w.PkgMap, w.DepGraph, roots)
}

// Path resolves rel against the workspace root.
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Root, rel)
}

// FindPackage looks up a package by name.
func (w *Workspace) FindPackage(name string) (*Package, error) {
	p, ok := w.PkgMap[name]
	if !ok {
		return nil, fmt.Errorf("could not find package with name: %q", name)
	}
	return p, nil
}
