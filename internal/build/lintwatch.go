// ABOUTME: Watch-mode fallback for the lint subordinate: fsnotify drives re-lints on file change
// ABOUTME: The linter itself has no native watch flag, unlike check/compile/script

package build

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/depot-go/depot/internal/workspace"
	"github.com/fsnotify/fsnotify"
)

var lintExtensions = map[string]bool{".js": true, ".ts": true, ".tsx": true}

// watchLint re-invokes the linter every time a lintable file under
// <pkg>/src changes, until ctx is canceled. The linter's exit code is
// ignored here just as it is in the non-watch path.
func (o *Orchestrator) watchLint(ctx context.Context, pkg *workspace.Package, bin string, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	srcDir := pkgSrcDir(pkg)
	if err := addRecursive(watcher, srcDir); err != nil {
		return err
	}

	relint := func() {
		_ = o.runPane(ctx, pkg, "lint", bin, args)
	}
	relint()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !lintExtensions[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			relint()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log(pkg, "lint", err.Error()+"\n")
		}
	}
}

// addRecursive registers every directory under root with the watcher;
// fsnotify watches are not recursive on any platform.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
