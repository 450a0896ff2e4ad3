// ABOUTME: Bundler: the in-process bundling step invoked by the compile subordinate
// ABOUTME: A real esbuild-backed implementation and a fake for tests both satisfy this interface

package build

import (
	"context"

	"github.com/depot-go/depot/internal/workspace"
)

// BundleOptions carries every knob the compile subordinate derives for
// the node platform.
type BundleOptions struct {
	EntryPoint string
	OutDir     string
	External   []string // union of peerDependencies and dependencies keys
	Bundle     bool
	Sourcemap  bool // !release
	Minify     bool // release
	Watch      bool
	Format     string // always "esm"
}

// BundleResult is what a Bundler reports back per invocation (and, under
// watch, per rebuild).
type BundleResult struct {
	Success  bool
	Errors   []BundleError
	Duration string
}

// BundleError is one bundler-reported diagnostic, shaped so the logging
// plugin can render it with a location when one is present.
type BundleError struct {
	Text   string
	File   string
	Line   int
	Column int
}

// Bundler is the seam the compile subordinate calls through. The
// production implementation wraps an embedded bundler library;
// tests substitute a fake that returns canned results without doing
// any real file I/O. When opts.Watch is set, Bundle doesn't return
// until ctx is canceled, emitting a fresh BundleEvent sequence on
// every rebuild.
type Bundler interface {
	Bundle(ctx context.Context, opts BundleOptions, onEvent func(BundleEvent)) (BundleResult, error)
}

// BundleEvent is emitted by a Bundler as it works: build start/end/error
// notifications tagged onto the build pane.
type BundleEvent struct {
	Kind  BundleEventKind
	Error BundleError
}

type BundleEventKind int

const (
	BundleEventStart BundleEventKind = iota
	BundleEventEnd
	BundleEventError
)

// externalsFor computes the compile subordinate's external-module set:
// the union of a package's peerDependencies and dependencies key sets.
func externalsFor(pkg *workspace.Package) []string {
	names := pkg.Manifest.ExternalNames()
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	return out
}
