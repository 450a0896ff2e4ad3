// ABOUTME: `depot new <name>` — thin passthrough stub
// ABOUTME: Scaffolding of new packages is explicitly out of scope; this only prints guidance

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new package (not implemented by this orchestrator)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("depot new is a passthrough stub; scaffold %q by hand under packages/%s and run `depot init`\n", args[0], args[0])
		return nil
	},
}

func init() {
	// -p is already the persistent --packages shorthand; --platform has
	// none of its own to avoid the collision.
	newCmd.Flags().StringP("target", "t", "lib", "lib|bin|site")
	newCmd.Flags().String("platform", "node", "browser|node")
	newCmd.Flags().BoolP("workspace", "w", false, "scaffold as a monorepo workspace")
	rootCmd.AddCommand(newCmd)
}
