// ABOUTME: `depot init [-p pkgs...]` subcommand
// ABOUTME: Installs dependencies, then rewrites the managed .gitignore fence idempotently

package main

import (
	"context"
	"fmt"

	"github.com/depot-go/depot/internal/process"
	"github.com/depot-go/depot/internal/task"
	"github.com/depot-go/depot/internal/workspace"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install dependencies and configure the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

var managedGitignoreEntries = []string{"dist/", "node_modules/", ".depot/"}

func runInit(cmd *cobra.Command) error {
	roots := packageRoots(cmd)

	ctx := context.Background()
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	cmdSpec := task.Command{
		Name: "init",
		PerWorkspace: func(ws *workspace.Workspace) error {
			if err := runInstaller(ctx, ws); err != nil {
				return err
			}
			return workspace.RewriteGitignoreFence(ws.Root, ws.Config.ManagedFence, managedGitignoreEntries)
		},
	}

	return task.Run(ws, cmdSpec, roots)
}

func runInstaller(ctx context.Context, ws *workspace.Workspace) error {
	result, err := process.Run(ctx, process.Options{
		Script:        "npm",
		Args:          []string{"install"},
		Dir:           ws.Root,
		WorkspaceRoot: ws.Root,
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("installer exited with code %d", result.ExitCode)
	}
	return nil
}
