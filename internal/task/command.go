// ABOUTME: Command: the capability a CLI subcommand exposes to the scheduler
// ABOUTME: A subcommand implements whichever of PerPackage/PerWorkspace apply to it

package task

import "github.com/depot-go/depot/internal/workspace"

// PerPackageFunc runs one subcommand's work for a single package.
type PerPackageFunc func(pkg *workspace.Package) error

// PerWorkspaceFunc runs one subcommand's work once for the whole
// workspace (e.g. `init`'s install step, `test`'s workspace-level
// runner invocation).
type PerWorkspaceFunc func(ws *workspace.Workspace) error

// Command describes the capabilities of one CLI subcommand. A command
// need not implement both; the scheduler skips whichever is nil.
type Command struct {
	Name string

	PerPackage   PerPackageFunc
	PerWorkspace PerWorkspaceFunc

	// Parallel, when true, runs every package's PerPackage concurrently
	// with no dependency-order constraint instead of waving through the
	// dependency graph. Watch-mode builds set this so every package's
	// panes go live at once.
	Parallel bool
}
