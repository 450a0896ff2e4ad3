// ABOUTME: add/update/link — forwarded verbatim to the installer, args and all
// ABOUTME: depot doesn't reinterpret these; they're whatever the installer accepts

package main

import (
	"context"
	"os"

	"github.com/depot-go/depot/internal/process"
	"github.com/spf13/cobra"
)

func init() {
	for _, verb := range []string{"add", "update", "link"} {
		verb := verb
		rootCmd.AddCommand(&cobra.Command{
			Use:                verb,
			Short:              "Passthrough to the installer's `" + verb + "`",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPassthrough(verb, args)
			},
		})
	}
}

func runPassthrough(verb string, args []string) error {
	ws, err := loadWorkspace(context.Background())
	if err != nil {
		return err
	}

	result, err := process.Run(context.Background(), process.Options{
		Script:        "npm",
		Args:          append([]string{verb}, args...),
		Dir:           ws.Root,
		WorkspaceRoot: ws.Root,
		OnData:        func(chunk []byte) { os.Stdout.Write(chunk) },
	})
	if err != nil {
		return err
	}
	if !result.Success {
		os.Exit(result.ExitCode)
	}
	return nil
}
