package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/depot-go/depot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkspaceConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.LoadWorkspaceConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultWorkspaceConfig(), cfg)
}

func TestLoadWorkspaceConfig_PartialOverrideKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "serve_port: 9000\n")

	cfg, err := config.LoadWorkspaceConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServePort)
	assert.False(t, cfg.Incremental)
	assert.Equal(t, "# Managed by depot", cfg.ManagedFence)
}

func TestLoadWorkspaceConfig_OverridesEveryField(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "serve_port: 4000\nincremental: true\nmanaged_fence: \"# custom fence\"\n")

	cfg, err := config.LoadWorkspaceConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, config.WorkspaceConfig{
		ServePort:    4000,
		Incremental:  true,
		ManagedFence: "# custom fence",
	}, cfg)
}

func TestLoadWorkspaceConfig_InvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "serve_port: [this is not valid\n")

	_, err := config.LoadWorkspaceConfig(dir)
	assert.Error(t, err)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.WorkspaceConfigFile), []byte(content), 0o644))
}
