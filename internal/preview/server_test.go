package preview

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercemesh/cmpsite/internal/metrics"
	"github.com/commercemesh/cmpsite/internal/plugin/livereload"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestServer(t *testing.T, build BuildFunc) (*Server, string) {
	t.Helper()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("<html><body>hello</body></html>"), 0o644))
	reg := prom.NewRegistry()
	metrics.NewPrometheusRecorder(reg).IncBuildOutcome(metrics.OutcomeSuccess)
	return New(Options{OutputDir: out, Metrics: reg, Logger: quietLogger()}, build), out
}

func okBuild(id string) BuildFunc {
	return func(context.Context) (string, error) { return id, nil }
}

func decodeHealth(t *testing.T, body io.Reader) healthResponse {
	t.Helper()
	var h healthResponse
	require.NoError(t, json.NewDecoder(body).Decode(&h))
	return h
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, okBuild("b-1"))
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "starting", decodeHealth(t, rec.Body).Status)

	require.NoError(t, s.Rebuild(context.Background()))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec.Body)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "b-1", resp.BuildID)
}

func TestFailedBuildKeepsServingPreviousOutput(t *testing.T) {
	var fail atomic.Bool
	s, _ := newTestServer(t, func(context.Context) (string, error) {
		if fail.Load() {
			return "", errors.New("bad front matter")
		}
		return "b-1", nil
	})
	h := s.Handler()
	require.NoError(t, s.Rebuild(context.Background()))

	fail.Store(true)
	require.Error(t, s.Rebuild(context.Background()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec.Body)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "bad front matter")
}

func TestInitialBuildFailureShowsError(t *testing.T) {
	s, _ := newTestServer(t, func(context.Context) (string, error) {
		return "", errors.New("boom")
	})
	require.Error(t, s.Rebuild(context.Background()))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, okBuild("b-1"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cmpsite_build_outcomes_total")
}

func TestLiveReloadStream(t *testing.T) {
	s, _ := newTestServer(t, okBuild("b-42"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Hub().Shutdown()

	resp, err := http.Get(ts.URL + livereload.DefaultEndpoint)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return s.Hub().Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Rebuild(context.Background()))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}
	assert.Equal(t, "data: b-42\n", line)
}

func TestHubShutdownRejectsClients(t *testing.T) {
	hub := NewHub(quietLogger())
	hub.Shutdown()
	hub.Broadcast("ignored")

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, livereload.DefaultEndpoint, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestRebuildCoalesces(t *testing.T) {
	s, _ := newTestServer(t, okBuild("b-1"))
	s.RequestRebuild()
	s.RequestRebuild()
	assert.Len(t, s.rebuildReq, 1)
}

func TestRunRebuildsOnChangeAndStops(t *testing.T) {
	src := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(src, []byte("site: {}\n"), 0o644))

	var builds atomic.Int32
	build := func(context.Context) (string, error) {
		return fmt.Sprintf("b-%d", builds.Add(1)), nil
	}
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("<html><body>hi</body></html>"), 0o644))
	s := New(Options{
		Addr:       "127.0.0.1:0",
		OutputDir:  out,
		WatchFiles: []string{src},
		Debounce:   20 * time.Millisecond,
		Logger:     quietLogger(),
	}, build)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "127.0.0.1:0" }, 2*time.Second, 10*time.Millisecond)
	base := "http://" + s.Addr()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	h := decodeHealth(t, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "b-1", h.BuildID)

	stream, err := http.Get(base + livereload.DefaultEndpoint)
	require.NoError(t, err)
	defer func() { _ = stream.Body.Close() }()
	reader := bufio.NewReader(stream.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	events := make(chan string, 4)
	go func() {
		for {
			l, err := reader.ReadString('\n')
			if err != nil {
				close(events)
				return
			}
			if strings.HasPrefix(l, "data: ") {
				events <- strings.TrimSpace(strings.TrimPrefix(l, "data: "))
			}
		}
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(src, []byte("site: {title: changed}\n"), 0o644)
		return builds.Load() >= 2
	}, 3*time.Second, 50*time.Millisecond)

	select {
	case id := <-events:
		assert.True(t, strings.HasPrefix(id, "b-"), id)
		assert.NotEqual(t, "b-1", id)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload event after change")
	}

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
