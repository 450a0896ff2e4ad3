// ABOUTME: Build Orchestrator: runs check/compile/lint/script/serve for one package
// ABOUTME: The five subordinates run concurrently under an errgroup; overall success is their AND

package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/depot-go/depot/internal/logger"
	"github.com/depot-go/depot/internal/process"
	"github.com/depot-go/depot/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// Options configures one package's build invocation.
type Options struct {
	Watch   bool
	Release bool
}

// Orchestrator runs the build subordinates for packages, writing every
// subordinate's output through a shared Logger.
type Orchestrator struct {
	Bundler Bundler
	Logger  logger.Logger

	TypeCheckBin string // defaults to "tsc"
	LintBin      string // defaults to "eslint"
	SiteBuildBin string // defaults to "vite"
	NodeBin      string // defaults to "node"
	ServePort    int    // defaults to 8000, overridden by WorkspaceConfig.ServePort
}

// RunPackage builds one package: ensures dist exists, then runs check,
// compile, lint, script, and (conditionally) serve concurrently,
// ANDing their boolean success. A package is reported as parallel-safe
// to the task scheduler iff opts.Watch is set, so watch mode brings up
// every package's panes live at once; see ParallelSafe.
func (o *Orchestrator) RunPackage(ctx context.Context, pkg *workspace.Package, opts Options) error {
	distDir := pkg.Path("dist")
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("creating dist directory for %s: %w", pkg.Name, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return o.runCheck(gctx, pkg, opts) })
	g.Go(func() error { return o.runCompile(gctx, pkg, opts, distDir) })
	g.Go(func() error { return o.runLint(gctx, pkg, opts) })
	g.Go(func() error { return o.runScript(gctx, pkg, opts) })

	if pkg.Platform == workspace.PlatformBrowser && pkg.Target == workspace.TargetBin && opts.Watch {
		g.Go(func() error { return o.runServe(gctx, pkg, distDir) })
	}

	return g.Wait()
}

// ParallelSafe reports whether the task scheduler should run every
// targeted package's build concurrently rather than waving through the
// dependency graph.
func ParallelSafe(opts Options) bool {
	return opts.Watch
}

func (o *Orchestrator) runCheck(ctx context.Context, pkg *workspace.Package, opts Options) error {
	bin := o.TypeCheckBin
	if bin == "" {
		bin = "tsc"
	}
	args := []string{"--emitDeclarationOnly"}
	if opts.Watch {
		args = append(args, "-w")
	}
	return o.runPane(ctx, pkg, "check", bin, args)
}

func (o *Orchestrator) runLint(ctx context.Context, pkg *workspace.Package, opts Options) error {
	bin := o.LintBin
	if bin == "" {
		bin = "eslint"
	}
	args := []string{"src", "--ext", ".js,.ts,.tsx"}

	if !opts.Watch {
		_ = o.runPane(ctx, pkg, "lint", bin, args)
		// Lint exit code is currently ignored for success determination
		// (observed behavior in the original orchestrator).
		return nil
	}

	return o.watchLint(ctx, pkg, bin, args)
}

func (o *Orchestrator) runScript(ctx context.Context, pkg *workspace.Package, opts Options) error {
	scriptPath := pkg.Path("build.mjs")
	if _, err := os.Stat(scriptPath); err != nil {
		return nil
	}
	bin := o.NodeBin
	if bin == "" {
		bin = "node"
	}
	args := []string{scriptPath}
	if opts.Watch {
		args = append(args, "-w")
	}
	return o.runPane(ctx, pkg, "script", bin, args)
}

func (o *Orchestrator) runCompile(ctx context.Context, pkg *workspace.Package, opts Options, distDir string) error {
	switch pkg.Platform {
	case workspace.PlatformNode:
		return o.runCompileNode(ctx, pkg, opts, distDir)
	case workspace.PlatformBrowser:
		return o.runCompileBrowser(ctx, pkg, opts)
	default:
		return fmt.Errorf("package %s: unknown platform %q", pkg.Name, pkg.Platform)
	}
}

func (o *Orchestrator) runCompileNode(ctx context.Context, pkg *workspace.Package, opts Options, distDir string) error {
	bundleOpts := BundleOptions{
		EntryPoint: pkg.EntryPoint,
		OutDir:     distDir,
		External:   externalsFor(pkg),
		Bundle:     true,
		Sourcemap:  !opts.Release,
		Minify:     opts.Release,
		Watch:      opts.Watch,
		Format:     "esm",
	}

	result, err := o.Bundler.Bundle(ctx, bundleOpts, func(ev BundleEvent) {
		o.emitBundleEvent(pkg, ev)
	})
	if err != nil {
		o.log(pkg, "build", fmt.Sprintf("✗ %s: %v\n", pkg.Name, err))
		return err
	}
	if !result.Success {
		return fmt.Errorf("package %s: bundle failed", pkg.Name)
	}
	return nil
}

func (o *Orchestrator) emitBundleEvent(pkg *workspace.Package, ev BundleEvent) {
	switch ev.Kind {
	case BundleEventStart:
		o.log(pkg, "build", fmt.Sprintf("building %s...\n", pkg.Name))
	case BundleEventEnd:
		o.log(pkg, "build", fmt.Sprintf("built %s\n", pkg.Name))
	case BundleEventError:
		o.log(pkg, "build", formatBundleError(ev.Error))
	}
}

func formatBundleError(e BundleError) string {
	if e.File != "" {
		return fmt.Sprintf("✗ %s:%d:%d: %s\n", e.File, e.Line, e.Column, e.Text)
	}
	return fmt.Sprintf("✗ %s\n", e.Text)
}

func (o *Orchestrator) runCompileBrowser(ctx context.Context, pkg *workspace.Package, opts Options) error {
	bin := o.SiteBuildBin
	if bin == "" {
		bin = "vite"
	}
	args := []string{"build", "--minify=false"}
	if opts.Watch {
		args = append(args, "-w")
	}
	return o.runPane(ctx, pkg, "build", bin, args)
}

// runPane runs one external process under the process runner, piping its
// pty output into the named pane.
func (o *Orchestrator) runPane(ctx context.Context, pkg *workspace.Package, pane, bin string, args []string) error {
	o.Logger.Register(pkg.Name, pane)
	spawnOpts := pkg.Spawn(bin, args)
	spawnOpts.OnData = func(chunk []byte) { o.Logger.Log(pkg.Name, pane, chunk) }
	result, err := process.Run(ctx, spawnOpts)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("package %s: %s exited with code %d", pkg.Name, pane, result.ExitCode)
	}
	return nil
}

func (o *Orchestrator) log(pkg *workspace.Package, pane, line string) {
	o.Logger.Register(pkg.Name, pane)
	o.Logger.Log(pkg.Name, pane, []byte(line))
}

// pkgSrcDir is a small helper kept distinct from Package.Path so the
// lint watcher can name exactly the directory it watches in error
// messages.
func pkgSrcDir(pkg *workspace.Package) string {
	return filepath.Join(pkg.Dir, "src")
}
