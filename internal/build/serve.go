// ABOUTME: serve subordinate: a static file server over a package's dist directory, watch-mode only
// ABOUTME: Torn down when the owning goroutine's context is canceled; never gates build success

package build

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/depot-go/depot/internal/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultServePort = 8000

var (
	serveRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_serve_requests_total",
		Help: "Static file requests served per package.",
	}, []string{"package"})

	serveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "depot_serve_request_duration_seconds",
		Help: "Static file request latency per package.",
	}, []string{"package"})
)

// runServe starts a static file server rooted at distDir and a /metrics
// endpoint alongside it, until ctx is canceled. Failures here are logged
// but never fail the overall package build: serve is additive.
func (o *Orchestrator) runServe(ctx context.Context, pkg *workspace.Package, distDir string) error {
	port := o.ServePort
	if port == 0 {
		port = defaultServePort
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", instrument(pkg.Name, http.FileServer(http.Dir(distDir))))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		o.log(pkg, "build", fmt.Sprintf("serve: %v\n", err))
		return nil
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	o.log(pkg, "build", fmt.Sprintf("serving %s on %s\n", distDir, srv.Addr))
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		o.log(pkg, "build", fmt.Sprintf("serve: %v\n", err))
	}
	return nil
}

func instrument(pkgName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		serveRequests.WithLabelValues(pkgName).Inc()
		serveDuration.WithLabelValues(pkgName).Observe(time.Since(start).Seconds())
	})
}
