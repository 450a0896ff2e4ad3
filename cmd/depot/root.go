// ABOUTME: Root cobra command and shared workspace/logger bootstrap for every subcommand
// ABOUTME: Persistent flags here (-p/--packages, -v) apply to all subcommands

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/depot-go/depot/internal/build"
	"github.com/depot-go/depot/internal/logger"
	"github.com/depot-go/depot/internal/logging"
	"github.com/depot-go/depot/internal/workspace"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "depot",
	Short: "depot orchestrates builds across a TypeScript workspace",
	Long:  `depot drives a type checker, bundler, linter, test runner, and installer across a package workspace in dependency order.`,
}

func init() {
	rootCmd.PersistentFlags().StringSliceP("packages", "p", nil, "restrict to these packages (defaults to all)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// Execute runs the root command, exiting the process with the
// scheduler's aggregated status: 0 on success, 1 on failure, 130 if
// canceled.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logging.SetLevel(logging.LevelDebug)
		}
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func packageRoots(cmd *cobra.Command) []string {
	roots, _ := cmd.Flags().GetStringSlice("packages")
	return roots
}

// loadWorkspace loads the workspace containing the current directory.
func loadWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	return workspace.Load(ctx, "")
}

// newLogger picks the Logger variant: WatchLogger only when watch mode
// was requested and stdout is actually a terminal. Requesting -w while
// stdout is redirected (e.g. piped into a file or CI log collector)
// silently falls back to OnceLogger rather than erroring, matching
// this orchestrator's historically observed behavior.
func newLogger(roots []string, watch bool) logger.Logger {
	if watch && isatty.IsTerminal(os.Stdout.Fd()) {
		return logger.NewWatchLogger(roots)
	}
	return logger.NewOnceLogger(os.Stdout)
}

func newOrchestrator(lg logger.Logger, ws *workspace.Workspace) *build.Orchestrator {
	return &build.Orchestrator{
		Bundler:   build.DefaultBundler{},
		Logger:    lg,
		ServePort: ws.Config.ServePort,
	}
}

// runWithLogger runs work while the logger is live, canceling work if
// a WatchLogger's TUI exits first (the user pressed q/escape/ctrl+c),
// and always tearing the logger down before returning.
func runWithLogger(ctx context.Context, cancel context.CancelFunc, lg logger.Logger, work func(context.Context) error) error {
	if err := lg.Start(); err != nil {
		return err
	}
	defer lg.End()

	resultCh := make(chan error, 1)
	go func() { resultCh <- work(ctx) }()

	wl, isWatch := lg.(*logger.WatchLogger)
	if !isWatch {
		return <-resultCh
	}

	select {
	case err := <-resultCh:
		return err
	case <-wl.Done():
		cancel()
		return <-resultCh
	}
}
