// ABOUTME: Optional workspace-level depot.config.yaml, parsed with yaml.v3
// ABOUTME: Absence of the file is not an error; defaults apply

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const WorkspaceConfigFile = "depot.config.yaml"

// WorkspaceConfig holds workspace-wide settings that aren't per-package.
type WorkspaceConfig struct {
	// ServePort is the port the build orchestrator's static file server
	// binds to for browser/bin packages under watch. Defaults to 8000.
	ServePort int `yaml:"serve_port"`

	// Incremental is parsed and stored but nothing reads it: the task
	// scheduler runs every targeted package whatever its value, and there
	// is no fingerprint store. Defaults to false (see DESIGN.md's Open
	// Question decision under internal/config).
	Incremental bool `yaml:"incremental"`

	// ManagedFence is the sentinel line in .gitignore below which
	// depot-managed entries are rewritten. Defaults to the standard
	// fence text.
	ManagedFence string `yaml:"managed_fence"`
}

// DefaultWorkspaceConfig returns the configuration used when no
// depot.config.yaml is present.
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{
		ServePort:    8000,
		Incremental:  false,
		ManagedFence: "# Managed by depot",
	}
}

// LoadWorkspaceConfig reads <root>/depot.config.yaml if present, filling in
// defaults for any omitted field. A missing file is not an error.
func LoadWorkspaceConfig(root string) (WorkspaceConfig, error) {
	cfg := DefaultWorkspaceConfig()

	path := filepath.Join(root, WorkspaceConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	var overrides struct {
		ServePort    *int    `yaml:"serve_port"`
		Incremental  *bool   `yaml:"incremental"`
		ManagedFence *string `yaml:"managed_fence"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	if overrides.ServePort != nil {
		cfg.ServePort = *overrides.ServePort
	}
	if overrides.Incremental != nil {
		cfg.Incremental = *overrides.Incremental
	}
	if overrides.ManagedFence != nil {
		cfg.ManagedFence = *overrides.ManagedFence
	}

	return cfg, nil
}
