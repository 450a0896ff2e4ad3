// ABOUTME: DefaultBundler: the node-platform compile step, wrapping esbuild in-process
// ABOUTME: Installs the stylesheet, files (?url/?raw), and logging plugins the compile subordinate needs

package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// DefaultBundler is the production Bundler, backed by esbuild's Go API
// rather than a shelled-out CLI invocation, matching "invoke the
// bundler library in-process."
type DefaultBundler struct{}

func (DefaultBundler) Bundle(ctx context.Context, opts BundleOptions, onEvent func(BundleEvent)) (BundleResult, error) {
	buildOpts := api.BuildOptions{
		EntryPoints:       []string{opts.EntryPoint},
		Outdir:            opts.OutDir,
		Bundle:            opts.Bundle,
		Format:            api.FormatESModule,
		Sourcemap:         sourcemapMode(opts.Sourcemap),
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		External:          opts.External,
		Write:             true,
		Plugins: []api.Plugin{
			stylesheetPlugin(),
			filesPlugin(opts.OutDir),
			notifyPlugin(onEvent),
		},
	}

	if !opts.Watch {
		result := api.Build(buildOpts)
		return resultFromBuild(result), nil
	}

	buildCtx, err := api.Context(buildOpts)
	if err != nil {
		return BundleResult{}, err
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return BundleResult{}, err
	}

	// esbuild's own file watcher now rebuilds in the background on every
	// source change, reporting each rebuild through notifyPlugin; this
	// just holds the subordinate open until the caller cancels, the same
	// way runPane blocks on a `tsc -w` child until its context is done.
	<-ctx.Done()

	return BundleResult{Success: true}, nil
}

func resultFromBuild(result api.BuildResult) BundleResult {
	var errs []BundleError
	for _, msg := range result.Errors {
		be := BundleError{Text: msg.Text}
		if msg.Location != nil {
			be.File = msg.Location.File
			be.Line = msg.Location.Line
			be.Column = msg.Location.Column
		}
		errs = append(errs, be)
	}
	return BundleResult{Success: len(errs) == 0, Errors: errs}
}

// notifyPlugin reports every build esbuild performs — the initial one
// and, under Watch, every rebuild it triggers — as a BundleEvent
// sequence, so the compile subordinate's pane sees live rebuild output
// the same way it would from a CLI tool's own watch mode.
func notifyPlugin(onEvent func(BundleEvent)) api.Plugin {
	return api.Plugin{
		Name: "notify",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				onEvent(BundleEvent{Kind: BundleEventStart})
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				for _, msg := range result.Errors {
					be := BundleError{Text: msg.Text}
					if msg.Location != nil {
						be.File = msg.Location.File
						be.Line = msg.Location.Line
						be.Column = msg.Location.Column
					}
					onEvent(BundleEvent{Kind: BundleEventError, Error: be})
				}
				onEvent(BundleEvent{Kind: BundleEventEnd})
				return api.OnEndResult{}, nil
			})
		},
	}
}

func sourcemapMode(enabled bool) api.SourceMap {
	if enabled {
		return api.SourceMapLinked
	}
	return api.SourceMapNone
}

// stylesheetPlugin resolves .css imports through esbuild's native CSS
// loader rather than leaving them to a bare JS loader.
func stylesheetPlugin() api.Plugin {
	return api.Plugin{
		Name: "stylesheet",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.css$`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				contents, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}
				text := string(contents)
				return api.OnLoadResult{Contents: &text, Loader: api.LoaderCSS}, nil
			})
		},
	}
}

// filesPlugin recognises the "?url" and "?raw" import-path suffixes: a
// "?url" import copies the referenced file into outDir and resolves to
// a module exporting its output-relative URL; a "?raw" import inlines
// the file's contents as a string export.
func filesPlugin(outDir string) api.Plugin {
	return api.Plugin{
		Name: "files",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `\?(url|raw)$`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				return api.OnResolveResult{Path: args.Path, Namespace: "depot-file"}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "depot-file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				raw := strings.HasSuffix(args.Path, "?raw")
				realPath := strings.TrimSuffix(strings.TrimSuffix(args.Path, "?raw"), "?url")

				contents, err := os.ReadFile(realPath)
				if err != nil {
					return api.OnLoadResult{}, err
				}

				if raw {
					text := string(contents)
					js := "export default " + jsonQuote(text) + ";"
					return api.OnLoadResult{Contents: &js, Loader: api.LoaderJS}, nil
				}

				base := filepath.Base(realPath)
				if err := os.WriteFile(filepath.Join(outDir, base), contents, 0o644); err != nil {
					return api.OnLoadResult{}, err
				}
				js := "export default " + jsonQuote("./"+base) + ";"
				return api.OnLoadResult{Contents: &js, Loader: api.LoaderJS}, nil
			})
		},
	}
}

func jsonQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
