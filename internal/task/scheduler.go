// ABOUTME: Task Scheduler: runs a Command's PerPackage/PerWorkspace work over a dependency closure
// ABOUTME: Wave mode waits for a package's immediate deps to finish; failures never stop other tasks

package task

import (
	"sync"

	"github.com/depot-go/depot/internal/logging"
	"github.com/depot-go/depot/internal/workspace"
)

type status int

const (
	statusPending status = iota
	statusRunning
	statusFinished
)

// defaultMaxWorkers caps how many packages' PerPackage run concurrently,
// whether waving through the dependency graph or running flat-out in
// parallel mode. Large workspaces otherwise spawn one goroutine (and,
// for most commands, one child process) per package at once.
const defaultMaxWorkers = 8

// Run executes cmd against ws, restricted to the dependency closure of
// roots (all packages if roots is empty). It returns nil only if every
// PerPackage and the PerWorkspace step (if any) succeeded.
func Run(ws *workspace.Workspace, cmd Command, roots []string) error {
	if len(roots) == 0 {
		roots = ws.PackageNames()
	}

	var perPackageErr error
	if cmd.PerPackage != nil {
		pkgs := ws.DependencyClosure(roots)
		if cmd.Parallel {
			perPackageErr = runParallel(pkgs, cmd.PerPackage)
		} else {
			perPackageErr = runWave(ws, pkgs, cmd)
		}
	}

	var perWorkspaceErr error
	if cmd.PerWorkspace != nil {
		perWorkspaceErr = cmd.PerWorkspace(ws)
	}

	if perPackageErr != nil {
		return perPackageErr
	}
	return perWorkspaceErr
}

// runParallel launches fn for every package concurrently and aggregates
// results as a logical AND: the first error is returned, but every
// launched task still runs to completion.
func runParallel(pkgs []*workspace.Package, fn PerPackageFunc) error {
	var wg sync.WaitGroup
	errs := make([]error, len(pkgs))
	sem := make(chan struct{}, defaultMaxWorkers)
	for i, pkg := range pkgs {
		wg.Add(1)
		go func(i int, pkg *workspace.Package) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = fn(pkg)
		}(i, pkg)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// runWave implements the Pending/Running/Finished wave scheduler: a
// package starts once every one of its immediate dependencies has
// finished (not merely started). A package failing is recorded but
// never blocks siblings or dependents' wave-eligibility from starting
// the rest of their own work — it only fails the overall result.
func runWave(ws *workspace.Workspace, pkgs []*workspace.Package, cmd Command) error {
	statuses := make(map[string]status, len(pkgs))
	for _, p := range pkgs {
		statuses[p.Name] = statusPending
	}

	type completion struct {
		name string
		err  error
	}
	done := make(chan completion)
	inFlight := 0
	var firstErr error
	sem := make(chan struct{}, defaultMaxWorkers)

	start := func(pkg *workspace.Package) {
		statuses[pkg.Name] = statusRunning
		inFlight++
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			logging.Debug("starting task for package: %s", pkg.Name)
			err := cmd.PerPackage(pkg)
			done <- completion{name: pkg.Name, err: err}
		}()
	}

	tick := func() {
		for _, p := range pkgs {
			if statuses[p.Name] != statusPending {
				continue
			}
			if depsFinished(ws, p.Name, statuses) {
				start(p)
			}
		}
	}

	tick()
	for inFlight > 0 {
		c := <-done
		inFlight--
		statuses[c.name] = statusFinished
		if c.err != nil {
			logging.Warn("task failed for package %s: %v", c.name, c.err)
			if firstErr == nil {
				firstErr = c.err
			}
		} else {
			logging.Debug("finished task for package: %s", c.name)
		}
		tick()
	}

	return firstErr
}

func depsFinished(ws *workspace.Workspace, pkgName string, statuses map[string]status) bool {
	for dep := range ws.DepGraph.ImmediateDeps(pkgName) {
		// A dependency outside the targeted set is treated as already
		// finished: the closure includes it precisely because its work
		// was needed, but a caller who restricted roots to a subset
		// that excludes it has decided it's out of scope for this run.
		st, tracked := statuses[dep]
		if !tracked {
			continue
		}
		if st != statusFinished {
			return false
		}
	}
	return true
}
