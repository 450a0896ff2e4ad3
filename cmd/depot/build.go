// ABOUTME: `depot build [-w] [-r] [-p pkgs...]` subcommand
// ABOUTME: Parallel-safe under watch so every package's panes go live together

package main

import (
	"context"

	"github.com/depot-go/depot/internal/build"
	"github.com/depot-go/depot/internal/task"
	"github.com/depot-go/depot/internal/workspace"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Type-check, bundle, lint, and run build scripts for each package",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		release, _ := cmd.Flags().GetBool("release")
		return runBuild(cmd, watch, release)
	},
}

func init() {
	buildCmd.Flags().BoolP("watch", "w", false, "rebuild on file changes and show the live pane UI")
	buildCmd.Flags().BoolP("release", "r", false, "minify output and omit source maps")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, watch, release bool) error {
	roots := packageRoots(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	lg := newLogger(roots, watch)
	orch := newOrchestrator(lg, ws)
	opts := build.Options{Watch: watch, Release: release}

	cmdSpec := task.Command{
		Name:     "build",
		Parallel: build.ParallelSafe(opts),
		PerPackage: func(pkg *workspace.Package) error {
			return orch.RunPackage(ctx, pkg, opts)
		},
	}

	return runWithLogger(ctx, cancel, lg, func(ctx context.Context) error {
		for _, pkg := range ws.DependencyClosure(effectiveRoots(ws, roots)) {
			for _, pane := range []string{"build", "check", "lint", "script"} {
				lg.Register(pkg.Name, pane)
			}
		}
		return task.Run(ws, cmdSpec, roots)
	})
}

func effectiveRoots(ws *workspace.Workspace, roots []string) []string {
	if len(roots) == 0 {
		return ws.PackageNames()
	}
	return roots
}
