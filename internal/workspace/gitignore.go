// ABOUTME: Idempotent .gitignore fence rewriting for managed config entries
// ABOUTME: Everything above the fence line is user-authored and left untouched

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RewriteGitignoreFence rewrites the portion of <root>/.gitignore after
// the fence marker line to exactly the given managed entries, preserving
// everything above the fence untouched. If the file doesn't contain the
// fence, it's appended. Applying this twice with the same managed set
// yields identical file content.
func RewriteGitignoreFence(root, fence string, managed []string) error {
	path := filepath.Join(root, ".gitignore")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	userSection := string(existing)
	if idx := strings.Index(userSection, fence); idx >= 0 {
		userSection = userSection[:idx]
	}
	userSection = strings.TrimRight(userSection, "\n")

	var b strings.Builder
	if userSection != "" {
		b.WriteString(userSection)
		b.WriteString("\n")
	}
	b.WriteString(fence)
	b.WriteString("\n")
	for _, entry := range managed {
		b.WriteString(entry)
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// ManagedSymlinks returns the paths under dir that are symlinks pointing
// into assetsDir, i.e. config files managed by `init`'s asset-symlink
// maintenance and removable by `clean -a`.
func ManagedSymlinks(dir, assetsDir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var managed []string
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(dir, e.Name())
		target, err := os.Readlink(path)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		if strings.HasPrefix(target, assetsDir) {
			managed = append(managed, path)
		}
	}
	return managed, nil
}
