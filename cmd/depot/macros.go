// ABOUTME: commit-check and prepare — macro aliases chaining the stock subcommands
// ABOUTME: commit-check = clean && init && build && test; prepare = init && build --release

package main

import "github.com/spf13/cobra"

var commitCheckCmd = &cobra.Command{
	Use:   "commit-check",
	Short: "Run clean, init, build, and test in sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runClean(cmd, false); err != nil {
			return err
		}
		if err := runInit(cmd); err != nil {
			return err
		}
		if err := runBuild(cmd, false, false); err != nil {
			return err
		}
		return runTest(cmd)
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Run init, then a release build",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runInit(cmd); err != nil {
			return err
		}
		return runBuild(cmd, false, true)
	},
}

func init() {
	rootCmd.AddCommand(commitCheckCmd, prepareCmd)
}
