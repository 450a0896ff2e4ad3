// ABOUTME: `depot test [-p pkgs...]` subcommand
// ABOUTME: Builds the workspace first, then invokes the external test runner once

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/depot-go/depot/internal/logger"
	"github.com/depot-go/depot/internal/process"
	"github.com/depot-go/depot/internal/task"
	"github.com/depot-go/depot/internal/workspace"
	"github.com/spf13/cobra"
)

const testConfigFile = "depot.test.config.ts"

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Build the workspace, then run the external test runner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command) error {
	roots := packageRoots(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	// The original orchestrator declares `test` as depending on `build`:
	// run the full build closure first so the test runner never sees
	// stale output.
	if err := runBuild(cmd, false, false); err != nil {
		return fmt.Errorf("build step before test: %w", err)
	}

	lg := newLogger(roots, false)
	cmdSpec := task.Command{
		Name: "test",
		PerWorkspace: func(ws *workspace.Workspace) error {
			return runTestRunner(ctx, ws, lg)
		},
	}

	return runWithLogger(ctx, cancel, lg, func(ctx context.Context) error {
		return task.Run(ws, cmdSpec, roots)
	})
}

func runTestRunner(ctx context.Context, ws *workspace.Workspace, lg logger.Logger) error {
	configPath := filepath.Join(ws.Root, testConfigFile)
	if _, err := os.Stat(configPath); err != nil {
		return nil
	}

	const pane = "test"
	lg.Register("workspace", pane)
	result, err := process.Run(ctx, process.Options{
		Script:        "vitest",
		Args:          []string{"run", "--config", configPath},
		Dir:           ws.Root,
		WorkspaceRoot: ws.Root,
		OnData:        func(chunk []byte) { lg.Log("workspace", pane, chunk) },
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("test runner exited with code %d", result.ExitCode)
	}
	return nil
}
