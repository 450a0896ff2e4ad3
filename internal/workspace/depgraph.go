// ABOUTME: Intra-workspace dependency graph: immediate deps, transitive closure, topological order
// ABOUTME: Built once at workspace load; read concurrently without locks thereafter

package workspace

import (
	"fmt"
	"sort"
)

// DepGraph maps a package name to the set of other workspace-local
// package names it transitively depends on. Built by unioning the
// dependency-key names that intersect the workspace, then closing
// transitively until a fixed point (per the fixed-point algorithm
// described for this orchestrator).
type DepGraph struct {
	immediate map[string]map[string]struct{}
	closure   map[string]map[string]struct{}
}

// BuildDepGraph constructs the dependency graph for a set of packages.
// Returns an error if a cycle is detected; dependencies always come from
// a DAG of manifests, so a cycle indicates two packages depend on each
// other (directly or transitively) and startup must fail.
func BuildDepGraph(pkgs []*Package) (*DepGraph, error) {
	byName := make(map[string]*Package, len(pkgs))
	for _, p := range pkgs {
		byName[p.Name] = p
	}

	immediate := make(map[string]map[string]struct{}, len(pkgs))
	for _, p := range pkgs {
		set := make(map[string]struct{})
		for name := range p.Manifest.AllDependencyNames() {
			if _, ok := byName[name]; ok {
				set[name] = struct{}{}
			}
		}
		immediate[p.Name] = set
	}

	if cycle := findCycle(immediate); cycle != "" {
		return nil, fmt.Errorf("cycle detected in dependency graph involving package: %q", cycle)
	}

	closure := closeFixedPoint(immediate)

	return &DepGraph{immediate: immediate, closure: closure}, nil
}

// closeFixedPoint iterates: for every node n, union closure[n] with
// closure[d] for each d currently in closure[n]; halt when no set grew
// in a pass.
func closeFixedPoint(immediate map[string]map[string]struct{}) map[string]map[string]struct{} {
	closure := make(map[string]map[string]struct{}, len(immediate))
	for name, deps := range immediate {
		set := make(map[string]struct{}, len(deps))
		for d := range deps {
			set[d] = struct{}{}
		}
		closure[name] = set
	}

	for {
		grew := false
		for _, set := range closure {
			for dep := range set {
				for transitive := range closure[dep] {
					if _, ok := set[transitive]; !ok {
						set[transitive] = struct{}{}
						grew = true
					}
				}
			}
		}
		if !grew {
			break
		}
	}

	return closure
}

// findCycle runs a Kahn topological sort over the immediate-dependency
// graph and returns the name of a package left unresolved (participating
// in a cycle), or "" if the graph is acyclic.
func findCycle(immediate map[string]map[string]struct{}) string {
	indegree := make(map[string]int, len(immediate))
	for name := range immediate {
		indegree[name] = 0
	}
	for _, deps := range immediate {
		for dep := range deps {
			indegree[dep]++
		}
	}

	var queue []string
	for name, d := range indegree {
		if d == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		var next []string
		for dep := range immediate[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				next = append(next, dep)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	if visited == len(immediate) {
		return ""
	}
	for name, d := range indegree {
		if d > 0 {
			return name
		}
	}
	return ""
}

// ImmediateDeps returns the direct workspace-local dependency names of pkg.
func (g *DepGraph) ImmediateDeps(name string) map[string]struct{} {
	return g.immediate[name]
}

// AllDeps returns the transitive workspace-local dependency names of pkg.
func (g *DepGraph) AllDeps(name string) map[string]struct{} {
	return g.closure[name]
}

// DependencyClosure returns the set of packages reachable from roots
// through the dependency graph (including the roots themselves), in a
// deterministic order: by number of transitive dependencies, ties broken
// by name, so every package sorts after all of its dependencies.
func DependencyClosure(pkgMap map[string]*Package, graph *DepGraph, roots []string) []*Package {
	reachable := make(map[string]struct{})
	for _, r := range roots {
		reachable[r] = struct{}{}
		for dep := range graph.AllDeps(r) {
			reachable[dep] = struct{}{}
		}
	}

	names := make([]string, 0, len(reachable))
	for name := range reachable {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		// A dependent's closure strictly contains its dependency's, so
		// ordering by closure size puts dependencies first.
		da, db := len(graph.AllDeps(a)), len(graph.AllDeps(b))
		if da != db {
			return da < db
		}
		return a < b
	})

	out := make([]*Package, 0, len(names))
	for _, name := range names {
		out = append(out, pkgMap[name])
	}
	return out
}
