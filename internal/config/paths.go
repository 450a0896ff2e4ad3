// ABOUTME: Standard filesystem paths for depot's bundled assets and module-resolution root
// ABOUTME: Resolves ~/.depot/ for the global install, used for NODE_PATH-equivalent injection

package config

import (
	"os"
	"path/filepath"
)

const globalDirName = ".depot"

// GlobalDir returns the orchestrator's global install directory (~/.depot/),
// which hosts the bundled helper modules (esbuild, tsc, eslint, etc.) that
// child processes resolve against even when invoked outside a package.
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// BinDir returns the directory holding the orchestrator's own bundled
// executables (e.g. a vendored pnpm).
func BinDir() string {
	return filepath.Join(GlobalDir(), "bin")
}

// NodePath returns the module-resolution root injected into every spawned
// child's environment, so auxiliary binaries can resolve the orchestrator's
// bundled helpers even when run outside of any package's node_modules.
func NodePath() string {
	return filepath.Join(GlobalDir(), "node_modules")
}

// AssetsDir returns the directory of default config files (lint/format/tsconfig
// templates) that managed symlinks point into.
func AssetsDir() string {
	return filepath.Join(GlobalDir(), "assets")
}
