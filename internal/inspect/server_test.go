package inspect

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/watch"
	"github.com/vango-dev/fsroutes/pkg/project"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *project.Project, string) {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{
		"pages/index.vue",
		"pages/users.vue",
		"pages/users/[id].vue",
		"pages/docs/[...slug].vue",
		"server/api/users/[id].get.ts",
		"server/api/users/[id].delete.ts",
		"server/routes/health.ts",
	} {
		writeFile(t, filepath.Join(root, rel))
	}

	cfg := config.New()
	cfg.SetRoot(root)
	p := project.New(cfg)
	return New(p, opts...), p, root
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("export default {}"), 0644); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: invalid JSON: %v\n%s", target, err, rec.Body.String())
		}
	}
	return rec, body
}

func TestPages(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec, body := get(t, s.Handler(), "/_routes/pages")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	pages, ok := body["pages"].([]any)
	if !ok || len(pages) != 3 {
		t.Fatalf("pages = %v, want 3 top-level routes", body["pages"])
	}

	var users map[string]any
	for _, p := range pages {
		if m := p.(map[string]any); m["pattern"] == "/users" {
			users = m
		}
	}
	if users == nil {
		t.Fatal("/users missing")
	}
	children, _ := users["children"].([]any)
	if len(children) != 1 || children[0].(map[string]any)["pattern"] != ":id" {
		t.Errorf("/users children = %v", users["children"])
	}
}

func TestEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec, body := get(t, s.Handler(), "/_routes/endpoints")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	endpoints, _ := body["endpoints"].([]any)
	if len(endpoints) != 3 {
		t.Errorf("endpoints = %v, want 3", body["endpoints"])
	}
	first := endpoints[0].(map[string]any)
	if first["kind"] == nil || first["sourcePath"] == nil {
		t.Errorf("endpoint record = %v", first)
	}
}

func TestMatch(t *testing.T) {
	s, _, root := newTestServer(t)
	h := s.Handler()

	rec, body := get(t, h, "/_routes/match?path=/users/42")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["pattern"] != "/users/:id" {
		t.Errorf("pattern = %v", body["pattern"])
	}
	if body["sourcePath"] != filepath.Join(root, "pages", "users", "[id].vue") {
		t.Errorf("sourcePath = %v", body["sourcePath"])
	}
	params := body["params"].(map[string]any)
	if params["id"] != "42" {
		t.Errorf("params = %v", params)
	}
	if chain := body["chain"].([]any); len(chain) != 1 {
		t.Errorf("chain = %v, want the /users layout", chain)
	}

	_, body = get(t, h, "/_routes/match?path=/docs/a/b")
	slug, _ := body["params"].(map[string]any)["slug"].([]any)
	if len(slug) != 2 || slug[0] != "a" || slug[1] != "b" {
		t.Errorf("slug = %v, want [a b]", slug)
	}

	rec, body = get(t, h, "/_routes/match?path=/nope/deeper")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unmatched status = %d, want 404", rec.Code)
	}
	if e, _ := body["error"].(map[string]any); e["code"] != "R141" {
		t.Errorf("error = %v", body["error"])
	}

	rec, _ = get(t, h, "/_routes/match")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing path status = %d, want 400", rec.Code)
	}
}

func TestEndpointMatch(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Handler()

	rec, body := get(t, h, "/_routes/endpoint?path=/api/users/7&method=delete")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["method"] != "delete" || body["kind"] != "api" {
		t.Errorf("body = %v", body)
	}
	if body["params"].(map[string]any)["id"] != "7" {
		t.Errorf("params = %v", body["params"])
	}

	rec, _ = get(t, h, "/_routes/endpoint?path=/api/users/7")
	if rec.Code != http.StatusOK {
		t.Errorf("default method GET status = %d, want 200", rec.Code)
	}

	rec, body = get(t, h, "/_routes/endpoint?path=/api/users/7&method=PUT")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "DELETE, GET" {
		t.Errorf("Allow = %q, want %q", got, "DELETE, GET")
	}
	if e, _ := body["error"].(map[string]any); e["code"] != "R142" {
		t.Errorf("error = %v", body["error"])
	}

	rec, _ = get(t, h, "/_routes/endpoint?path=/api/unknown")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec, _ = get(t, h, "/_routes/endpoint?path=/health&method=PATCH")
	if rec.Code != http.StatusOK {
		t.Errorf("any-method endpoint status = %d, want 200", rec.Code)
	}
}

func TestDiagnostics(t *testing.T) {
	s, p, root := newTestServer(t)
	h := s.Handler()

	_, body := get(t, h, "/_routes/diagnostics")
	if d, _ := body["diagnostics"].([]any); len(d) != 0 {
		t.Fatalf("diagnostics = %v, want none", d)
	}

	writeFile(t, filepath.Join(root, "server", "api", "users", "[id].GET.js"))
	p.Invalidate(project.TableEndpoints)

	_, body = get(t, h, "/_routes/diagnostics")
	d, _ := body["diagnostics"].([]any)
	if len(d) != 1 {
		t.Fatalf("diagnostics = %v, want one", d)
	}
	if code := d[0].(map[string]any)["code"]; code != "R101" {
		t.Errorf("code = %v, want R101", code)
	}
}

func TestInvalidateEndpoint(t *testing.T) {
	s, _, root := newTestServer(t)
	h := s.Handler()

	if rec, _ := get(t, h, "/_routes/match?path=/"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	writeFile(t, filepath.Join(root, "pages", "about.vue"))
	if rec, _ := get(t, h, "/_routes/match?path=/about"); rec.Code != http.StatusNotFound {
		t.Fatalf("cached table status = %d, want 404", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/_routes/invalidate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	_, body := get(t, h, "/_routes/match?path=/about")
	if body["sourcePath"] != filepath.Join(root, "pages", "about.vue") {
		t.Errorf("after invalidate sourcePath = %v", body["sourcePath"])
	}
}

func TestInvalidateTable(t *testing.T) {
	s, p, _ := newTestServer(t)
	h := s.Handler()

	var got []project.Invalidation
	p.OnInvalidate(func(inv project.Invalidation) { got = append(got, inv) })

	if _, err := p.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/_routes/invalidate?table=endpoints", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(got) != 1 || got[0].Table != project.TableEndpoints {
		t.Errorf("invalidations = %+v, want endpoints only", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/_routes/invalidate?table=layouts", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown table status = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"}))

	s, _, _ := newTestServer(t, WithGatherer(reg))
	rec, _ := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "test_total") {
		t.Errorf("/metrics = %d:\n%s", rec.Code, rec.Body.String())
	}

	s2, _, _ := newTestServer(t)
	if rec, _ := get(t, s2.Handler(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without gatherer = %d, want 404", rec.Code)
	}
}

func dialEvents(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/_routes/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if msg := readMessage(t, conn); msg.Type != MessageHello {
		t.Fatalf("first message = %+v, want hello", msg)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	return msg
}

func TestEventsStream(t *testing.T) {
	s, p, root := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialEvents(t, srv)
	if s.Hub().ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", s.Hub().ClientCount())
	}

	path := filepath.Join(root, "pages", "new.vue")
	p.HandleEvent(watch.Event{Path: path, Op: watch.OpAdd})

	msg := readMessage(t, conn)
	if msg.Type != MessageInvalidate || msg.Table != "pages" || msg.Path != path {
		t.Errorf("message = %+v", msg)
	}
}

func TestRunServesAndWatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "index.vue"))

	cfg := config.New()
	cfg.SetRoot(root)
	cfg.Watch.Interval = "10ms"
	p := project.New(cfg)

	s := New(p, WithWatcher(watch.FromConfig(cfg)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	var conn *websocket.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, _, err = websocket.DefaultDialer.Dial("ws://"+addr+"/_routes/events", nil)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer conn.Close()
	if msg := readMessage(t, conn); msg.Type != MessageHello {
		t.Fatalf("first message = %+v", msg)
	}

	// Give the watcher time to prime before the new file appears.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(root, "pages", "about.vue"))

	msg := readMessage(t, conn)
	if msg.Type != MessageInvalidate || msg.Table != "pages" {
		t.Errorf("message = %+v", msg)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v", err)
	}
}
