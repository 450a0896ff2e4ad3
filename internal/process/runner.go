// ABOUTME: Process Runner: spawns a child under a pseudo-terminal and streams its output
// ABOUTME: Registers SIGINT/SIGTERM propagation so no child outlives the parent

package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"github.com/depot-go/depot/internal/config"
)

// ErrCanceled is returned by Run when the child was killed because ctx
// was canceled or the process received SIGINT/SIGTERM, as opposed to
// exiting on its own with a non-zero status. It wraps context.Canceled
// so callers checking either sentinel with errors.Is succeed.
var ErrCanceled = fmt.Errorf("process canceled: %w", context.Canceled)

// Result is the outcome of a Run call.
type Result struct {
	ExitCode int
	Success  bool
}

// OnData is called with every raw data chunk read from the child's pty,
// in arrival order. Chunk boundaries are whatever the pty delivers —
// watch-mode consumers depend on carriage-return and erase-line codes
// landing in the same chunk they were written in, so this must not
// buffer into whole lines.
type OnData func(chunk []byte)

// Options configures one Run invocation.
type Options struct {
	Script        string
	Args          []string
	Dir           string
	WorkspaceRoot string   // if set, its node_modules/.bin joins DEPOT_NODE_PATH
	Env           []string // additional environment variables, appended to the inherited set
	OnData        OnData   // defaults to writing to os.Stdout
}

// Run spawns Script with Args under a pseudo-terminal so that children
// which detect a TTY emit their usual interactive output (colors, cursor
// codes, progress meters). It blocks until the child exits or ctx is
// canceled, forwarding every data chunk to opts.OnData.
func Run(ctx context.Context, opts Options) (Result, error) {
	binPath, err := exec.LookPath(opts.Script)
	if err != nil {
		return Result{}, fmt.Errorf("executable not found: %q (orchestrator module root not on PATH for this child)", opts.Script)
	}

	cmd := exec.CommandContext(ctx, binPath, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Env = append(cmd.Env, "DEPOT_NODE_PATH="+depotNodePath(opts.WorkspaceRoot))
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	onData := opts.OnData
	if onData == nil {
		onData = func(chunk []byte) { os.Stdout.Write(chunk) }
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("failed to spawn process %q (%s) under pty: %w (orchestrator module root: %s)", opts.Script, binPath, err, config.GlobalDir())
	}
	defer ptmx.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// done lets the watcher goroutine exit on the normal completion path
	// too, not just on a signal or ctx cancellation — otherwise every
	// successful Run leaks one goroutine parked on this select until the
	// whole depot process exits.
	done := make(chan struct{})
	defer close(done)

	killed := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			killChildGroup(cmd)
			close(killed)
		case <-ctx.Done():
			killChildGroup(cmd)
		case <-done:
		}
	}()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				onData(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	<-readDone

	select {
	case <-killed:
		return Result{ExitCode: 130}, ErrCanceled
	default:
	}

	if ctx.Err() != nil {
		return Result{ExitCode: 130}, ErrCanceled
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if ok := asExitError(waitErr, &exitErr); ok {
			return Result{ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{ExitCode: -1}, fmt.Errorf("process %q failed: %w", opts.Script, waitErr)
	}

	return Result{ExitCode: 0, Success: true}, nil
}

// depotNodePath builds the NODE_PATH-equivalent every spawned child
// gets: the workspace's own hoisted node_modules/.bin (so a package's
// helper tools resolve without re-declaring them per package) ahead of
// the orchestrator's bundled module directory (so a child invoked
// outside any package, e.g. the installer, still finds depot's own
// helpers).
func depotNodePath(workspaceRoot string) string {
	entries := []string{config.NodePath()}
	if workspaceRoot != "" {
		entries = append([]string{filepath.Join(workspaceRoot, "node_modules", ".bin")}, entries...)
	}
	return strings.Join(entries, string(os.PathListSeparator))
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

// killChildGroup sends SIGTERM to the child's process group so no
// grandchild is orphaned when the orchestrator is canceled.
func killChildGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
}
