package build

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeTCPPort asks the OS for an ephemeral port, then immediately
// releases it so runServe's own net.Listen can bind it.
func freeTCPPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func addrFor(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// waitForServer polls until something accepts connections on port, or
// fails the test after a short timeout.
func waitForServer(t *testing.T, port int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("server on port %d did not come up in time", port)
}

func TestInstrument_DelegatesToWrappedHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	instrument("pkg-a", inner).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRunServe_ServesDistDirectoryAndMetrics(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello"), 0o644))

	pkg := nodePackage(t, t.TempDir())
	lg := newFakeLogger()

	o := &Orchestrator{Logger: lg, ServePort: freeTCPPort(t)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.runServe(ctx, pkg, dir) }()

	waitForServer(t, o.ServePort)

	resp, err := http.Get(addrFor(o.ServePort) + "/index.html")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "hello", string(body))

	metricsResp, err := http.Get(addrFor(o.ServePort) + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	metricsResp.Body.Close()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not shut down after context cancellation")
	}
}
