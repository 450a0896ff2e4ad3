// ABOUTME: `depot fmt [-p pkgs...]` subcommand
// ABOUTME: Always parallel: formatting one package's sources never depends on another's

package main

import (
	"context"
	"fmt"

	"github.com/depot-go/depot/internal/process"
	"github.com/depot-go/depot/internal/task"
	"github.com/depot-go/depot/internal/workspace"
	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Run the external formatter over each package's sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFmt(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command) error {
	roots := packageRoots(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	lg := newLogger(roots, false)
	cmdSpec := task.Command{
		Name:     "fmt",
		Parallel: true,
		PerPackage: func(pkg *workspace.Package) error {
			lg.Register(pkg.Name, "fmt")
			spawnOpts := pkg.Spawn("prettier", []string{"--write", "{src,tests}/**/*.{ts,tsx}"})
			spawnOpts.OnData = func(chunk []byte) { lg.Log(pkg.Name, "fmt", chunk) }
			result, err := process.Run(ctx, spawnOpts)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("package %s: fmt exited with code %d", pkg.Name, result.ExitCode)
			}
			return nil
		},
	}

	return runWithLogger(ctx, cancel, lg, func(ctx context.Context) error {
		return task.Run(ws, cmdSpec, roots)
	})
}
