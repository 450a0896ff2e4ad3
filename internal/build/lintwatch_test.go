package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestAddRecursive_RegistersNestedDirectories(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addRecursive(watcher, root))

	watched := watcher.WatchList()
	require.Contains(t, watched, root)
	require.Contains(t, watched, filepath.Join(root, "a"))
	require.Contains(t, watched, nested)
}

func TestWatchLint_StopsWhenContextCanceled(t *testing.T) {
	dir := t.TempDir()
	pkg := nodePackage(t, dir)

	lg := newFakeLogger()
	o := &Orchestrator{Logger: lg}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- o.watchLint(ctx, pkg, "true", nil)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchLint did not return after context cancellation")
	}
}
