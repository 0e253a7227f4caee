package server

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/events"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *events.Bus) {
	t.Helper()

	siteDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte("<h1>docs</h1>"), 0o644); err != nil {
		t.Fatalf("write site file: %v", err)
	}

	domain := directives.NewDomain()
	if err := domain.RegisterDirective(directives.Confval()); err != nil {
		t.Fatalf("register confval: %v", err)
	}
	domain.AddObject("confval", "site_title = 'Docs'", "config.md")

	bus := events.New()
	srv := NewServer(&Options{
		SiteDir: siteDir,
		Title:   "Test Docs",
		Bus:     bus,
		Domain:  domain,
	})

	ts := httptest.NewServer(srv.mux)
	t.Cleanup(ts.Close)
	return srv, ts, bus
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var health HealthData
	getJSON(t, ts.URL+"/api/health", &health)
	if health.Status != "ok" {
		t.Errorf("expected status ok, got %q", health.Status)
	}
}

func TestVersionEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var info map[string]any
	getJSON(t, ts.URL+"/api/version", &info)
	if info["version"] == "" {
		t.Error("expected a version string")
	}
	if info["platform"] == "" {
		t.Error("expected a platform string")
	}
}

func TestObjectsEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var data ObjectsData
	getJSON(t, ts.URL+"/api/objects", &data)
	if data.Count != 1 {
		t.Fatalf("expected 1 object, got %d", data.Count)
	}
	obj := data.Objects[0]
	if obj.Kind != "confval" || obj.Name != "site_title" || obj.Page != "config.md" {
		t.Errorf("unexpected object %+v", obj)
	}
}

func TestStaticSiteServing(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET index.html: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	if !strings.Contains(string(buf[:n]), "<h1>docs</h1>") {
		t.Error("expected site content")
	}
}

func TestUnknownAPIPathIs404(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEventStreamDeliversBuildEvents(t *testing.T) {
	_, ts, bus := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/events/stream")
	if err != nil {
		t.Fatalf("connect SSE: %v", err)
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("expected SSE content type, got %s", resp.Header.Get("Content-Type"))
	}

	lines := make(chan string, 32)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// The connection confirmation (a reload event) arrives first.
	waitForLine(t, lines, "data:")

	// Give the SSE handler time to subscribe before publishing.
	time.Sleep(100 * time.Millisecond)
	bus.Publish(events.BuildFinishedEvent{Pages: 3, Duration: "10ms"})

	line := waitForLine(t, lines, `"pages":3`)
	if !strings.Contains(line, `"duration":"10ms"`) {
		t.Errorf("unexpected event line %q", line)
	}
}

func waitForLine(t *testing.T, lines <-chan string, substr string) string {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before seeing %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %q", substr)
		}
	}
}
