package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/errors"
)

func newTestProject(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("export default {}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var sampleFiles = []string{
	"pages/index.vue",
	"pages/users.vue",
	"pages/users/[id].vue",
	"pages/docs/[...slug].vue",
	"server/api/users/[id].get.ts",
	"server/api/users/[id].delete.ts",
	"server/routes/health.ts",
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestRoutesCommand(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	out, err := run(t, "routes", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"/users/:id", "pages/users/[id].vue", "/docs/:slug+"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "  /users/:id") {
		t.Errorf("nested route not indented:\n%s", out)
	}
}

func TestRoutesCommandJSON(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	out, err := run(t, "routes", "--json", "-C", root)
	if err != nil {
		t.Fatal(err)
	}

	var routes []struct {
		Pattern  string `json:"pattern"`
		Children []struct {
			Pattern string `json:"pattern"`
		} `json:"children"`
	}
	if err := json.Unmarshal([]byte(out), &routes); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	var found bool
	for _, r := range routes {
		if r.Pattern == "/users" {
			found = true
			if len(r.Children) != 1 || r.Children[0].Pattern != ":id" {
				t.Errorf("/users children = %+v", r.Children)
			}
		}
	}
	if !found {
		t.Errorf("no /users route in %s", out)
	}
}

func TestRoutesCommandEmpty(t *testing.T) {
	root := newTestProject(t)

	out, err := run(t, "routes", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No page routes found") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, "routes", "--json", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty JSON = %q, want []", out)
	}
}

func TestEndpointsCommand(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	out, err := run(t, "endpoints", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"GET", "DELETE", "/api/users/:id", "*", "/health"} {
		if !strings.Contains(out, want) {
			t.Errorf("endpoints output missing %q:\n%s", want, out)
		}
	}
}

func TestMatchCommand(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	out, err := run(t, "match", "/users/42?tab=posts", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Pattern: /users/:id", "Layout:  pages/users.vue", "Param:   id = 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("match output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "match", "/docs/a/b", "--json", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	var m struct {
		Pattern string              `json:"pattern"`
		Params  map[string][]string `json:"params"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if m.Pattern != "/docs/:slug+" {
		t.Errorf("pattern = %q", m.Pattern)
	}
	if got := m.Params["slug"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("slug = %v, want [a b]", got)
	}
}

func TestMatchCommandNoMatch(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	_, err := run(t, "match", "/nope/deeper", "-C", root)
	if !errors.HasCode(err, "R141") {
		t.Errorf("err = %v, want R141", err)
	}
}

func TestMatchEndpointCommand(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	out, err := run(t, "match-endpoint", "/api/users/7", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "GET /api/users/:id") || !strings.Contains(out, "id = 7") {
		t.Errorf("output:\n%s", out)
	}

	out, err = run(t, "match-endpoint", "/health", "-X", "PATCH", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* /health") {
		t.Errorf("output:\n%s", out)
	}
}

func TestMatchEndpointCommandErrors(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	_, err := run(t, "match-endpoint", "/api/users/7", "-X", "put", "-C", root)
	if !errors.HasCode(err, "R142") {
		t.Fatalf("err = %v, want R142", err)
	}
	e := errors.FromError(err, "")
	if !strings.Contains(e.Suggestion, "DELETE, GET") {
		t.Errorf("suggestion = %q", e.Suggestion)
	}

	_, err = run(t, "match-endpoint", "/api/nothing", "-C", root)
	if !errors.HasCode(err, "R141") {
		t.Errorf("err = %v, want R141", err)
	}
}

func TestCheckCommand(t *testing.T) {
	root := newTestProject(t, sampleFiles...)

	out, err := run(t, "check", "--strict", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No route problems found") {
		t.Errorf("output:\n%s", out)
	}
}

func TestCheckCommandFindings(t *testing.T) {
	root := newTestProject(t, "pages/about.vue", "pages/about.tsx")

	out, err := run(t, "check", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"R100", "pages/about.vue", "pages/about.tsx", "1 route problem(s) found"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}

	_, err = run(t, "check", "--strict", "-C", root)
	if !errors.HasCode(err, "R143") {
		t.Errorf("err = %v, want R143", err)
	}
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()

	out, err := run(t, "init", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, config.ConfigFileName) {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PagesDir != "pages" {
		t.Errorf("PagesDir = %q", cfg.PagesDir)
	}

	_, err = run(t, "init", "--yaml", "-C", root)
	if !errors.HasCode(err, "R140") {
		t.Errorf("second init err = %v, want R140", err)
	}
	if _, err := os.Stat(filepath.Join(root, config.YAMLConfigFileName)); !os.IsNotExist(err) {
		t.Errorf("yaml config written despite existing config")
	}
}

func TestInitCommandYAML(t *testing.T) {
	root := t.TempDir()

	if _, err := run(t, "init", "--yaml", "-C", root); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(filepath.Join(root, config.YAMLConfigFileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inspect.Port != 3100 {
		t.Errorf("Inspect.Port = %d", cfg.Inspect.Port)
	}
}

func TestConfigFromProject(t *testing.T) {
	root := newTestProject(t, "views/home.vue", "pages/ignored.vue")
	if err := os.WriteFile(filepath.Join(root, config.ConfigFileName), []byte(`{"pagesDir": "views"}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "routes", "-C", root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "views/home.vue") || strings.Contains(out, "ignored") {
		t.Errorf("output:\n%s", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	root := newTestProject(t)
	if err := os.WriteFile(filepath.Join(root, config.ConfigFileName), []byte(`{"inspect": {"port": 70000}}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "routes", "-C", root)
	if !errors.HasCode(err, "R122") {
		t.Errorf("err = %v, want R122", err)
	}
}
