package process_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/depot-go/depot/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SuccessfulExitIsReportedAsSuccess(t *testing.T) {
	result, err := process.Run(context.Background(), process.Options{
		Script: "true",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRun_NonZeroExitIsReportedWithoutError(t *testing.T) {
	result, err := process.Run(context.Background(), process.Options{
		Script: "sh",
		Args:   []string{"-c", "exit 7"},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 7, result.ExitCode)
}

func TestRun_UnknownScriptReturnsError(t *testing.T) {
	_, err := process.Run(context.Background(), process.Options{
		Script: "depot-nonexistent-binary-xyz",
	})
	require.Error(t, err)
}

func TestRun_StreamsOutputChunksToOnData(t *testing.T) {
	var mu sync.Mutex
	var collected []byte

	result, err := process.Run(context.Background(), process.Options{
		Script: "sh",
		Args:   []string{"-c", "printf hello"},
		OnData: func(chunk []byte) {
			mu.Lock()
			collected = append(collected, chunk...)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, string(collected), "hello")
}

func TestRun_ContextCancelKillsChild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = process.Run(ctx, process.Options{
			Script: "sh",
			Args:   []string{"-c", "sleep 30"},
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process.Run did not return after context cancellation")
	}
}

func TestRun_ContextCancelReturnsErrCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	type outcome struct {
		result process.Result
		err    error
	}
	done := make(chan outcome)
	go func() {
		result, err := process.Run(ctx, process.Options{
			Script: "sh",
			Args:   []string{"-c", "sleep 30"},
		})
		done <- outcome{result, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case o := <-done:
		require.Error(t, o.err)
		assert.True(t, errors.Is(o.err, process.ErrCanceled))
		assert.True(t, errors.Is(o.err, context.Canceled))
		assert.Equal(t, 130, o.result.ExitCode)
	case <-time.After(5 * time.Second):
		t.Fatal("process.Run did not return after context cancellation")
	}
}

func TestRun_DoesNotLeakTheWatcherGoroutineAfterNormalCompletion(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		result, err := process.Run(context.Background(), process.Options{Script: "true"})
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	// The watcher goroutine exits once its done channel closes, but that
	// happens concurrently with Run's return; give it a moment to settle
	// before asserting the count didn't grow with each call.
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+5 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+5)
}

func TestRun_InjectsDepotNodePathWithWorkspaceBinAheadOfBundledHelpers(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var collected []byte

	result, err := process.Run(context.Background(), process.Options{
		Script:        "sh",
		Args:          []string{"-c", "echo $DEPOT_NODE_PATH"},
		WorkspaceRoot: root,
		OnData: func(chunk []byte) {
			mu.Lock()
			collected = append(collected, chunk...)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, string(collected), filepath.Join(root, "node_modules", ".bin"))
}

func TestRun_InjectsDepotNodePathEvenWithoutAWorkspaceRoot(t *testing.T) {
	var mu sync.Mutex
	var collected []byte

	result, err := process.Run(context.Background(), process.Options{
		Script: "sh",
		Args:   []string{"-c", "echo $DEPOT_NODE_PATH"},
		OnData: func(chunk []byte) {
			mu.Lock()
			collected = append(collected, chunk...)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, strings.TrimSpace(string(collected)))
}

func TestRun_PassesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var collected []byte

	result, err := process.Run(context.Background(), process.Options{
		Script: "pwd",
		Dir:    dir,
		OnData: func(chunk []byte) {
			mu.Lock()
			collected = append(collected, chunk...)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, string(collected), dir)
}
