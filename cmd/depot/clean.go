// ABOUTME: `depot clean [-a] [-p pkgs...]` subcommand
// ABOUTME: Per-package dist/node_modules removal, optionally also asset-symlink removal

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/depot-go/depot/internal/config"
	"github.com/depot-go/depot/internal/task"
	"github.com/depot-go/depot/internal/workspace"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output and, optionally, managed config symlinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return runClean(cmd, all)
	},
}

func init() {
	cleanCmd.Flags().BoolP("all", "a", false, "also remove config files symlinked into the asset directory")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, all bool) error {
	roots := packageRoots(cmd)

	ctx := context.Background()
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	cmdSpec := task.Command{
		Name:     "clean",
		Parallel: true,
		PerPackage: func(pkg *workspace.Package) error {
			return cleanPackage(pkg, all)
		},
		PerWorkspace: func(ws *workspace.Workspace) error {
			return cleanWorkspace(ws, all)
		},
	}

	return task.Run(ws, cmdSpec, roots)
}

func cleanPackage(pkg *workspace.Package, all bool) error {
	for _, name := range []string{"dist", "node_modules"} {
		if err := os.RemoveAll(pkg.Path(name)); err != nil {
			return fmt.Errorf("removing %s/%s: %w", pkg.Name, name, err)
		}
	}
	if !all {
		return nil
	}
	managed, err := workspace.ManagedSymlinks(pkg.Dir, config.AssetsDir())
	if err != nil {
		return err
	}
	for _, link := range managed {
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("removing managed symlink %s: %w", link, err)
		}
	}
	return nil
}

func cleanWorkspace(ws *workspace.Workspace, all bool) error {
	if err := os.RemoveAll(ws.Path("node_modules")); err != nil {
		return fmt.Errorf("removing workspace node_modules: %w", err)
	}
	if !all {
		return nil
	}
	managed, err := workspace.ManagedSymlinks(ws.Root, config.AssetsDir())
	if err != nil {
		return err
	}
	for _, link := range managed {
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("removing managed symlink %s: %w", link, err)
		}
	}
	return nil
}
