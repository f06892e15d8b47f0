package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/app"
	"github.com/tnt-dev/tnt/pkg/dom"
)

const page = `<html><body><div id="app"><ul><t-for data="item in todo.items"><li><v data="item"></v></li></t-for></ul></div></body></html>`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestReadData(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"state.yaml": "todo:\n  items: [a, b]\ntitle: hi\n",
		"state.json": `{"todo": {"items": ["a", "b"]}, "title": "hi"}`,
		"bad.json":   `{"todo":`,
	})
	want := map[string]any{
		"todo":  map[string]any{"items": []any{"a", "b"}},
		"title": "hi",
	}

	for _, name := range []string{"state.yaml", "state.json"} {
		got, err := readData(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("readData(%s): %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("readData(%s) (-want +got):\n%s", name, diff)
		}
	}

	_, err := readData(filepath.Join(dir, "bad.json"))
	if !errors.Is(err, tnterrors.New("E008")) {
		t.Errorf("bad data error = %v, want E008", err)
	}
}

func TestLoadProjectMissingContainer(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"tnt.json":   `{"container": "root"}`,
		"index.html": page,
	})
	_, err := loadProject(projectFlags{config: filepath.Join(dir, "tnt.json")})
	if !errors.Is(err, tnterrors.New("E007")) {
		t.Errorf("error = %v, want E007", err)
	}
}

func TestRenderToStdout(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"tnt.json":   `{"data": "state.yaml", "log": {"level": "error"}}`,
		"index.html": page,
		"state.yaml": "todo:\n  items: [a, b]\n",
	})
	p, err := loadProject(projectFlags{config: filepath.Join(dir, "tnt.json")})
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}

	var out bytes.Buffer
	if err := runRender(context.Background(), p, "", &out); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if got := strings.Count(out.String(), "<li>"); got != 2 {
		t.Errorf("rendered %d items: %s", got, out.String())
	}
	if !strings.Contains(out.String(), `<v data="item">a</v>`) {
		t.Errorf("items not rendered: %s", out.String())
	}
}

func TestRenderToDirectory(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"page.html": page,
		"data.json": `{"todo": {"items": ["x"]}}`,
	})
	outDir := t.TempDir()
	p, err := loadProject(projectFlags{
		template: filepath.Join(dir, "page.html"),
		data:     filepath.Join(dir, "data.json"),
	})
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}

	if err := runRender(context.Background(), p, outDir, &bytes.Buffer{}); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	body, err := os.ReadFile(filepath.Join(outDir, "page.html"))
	if err != nil {
		t.Fatalf("published file: %v", err)
	}
	if !strings.Contains(string(body), "x</v>") {
		t.Errorf("published = %s", body)
	}
}

func TestReloadData(t *testing.T) {
	a := app.New()
	registerData(a, map[string]any{
		"state": map[string]any{"title": "old", "n": 1},
		"tag":   "x",
	})
	doc := dom.MustParseString(`<div id="app"><p><v data="state.title"></v>-<v data="tag"></v>-<v data="extra.k"></v></p></div>`)
	if err := a.Mount(doc, doc.ElementByID("app")); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	err := reloadData(a, map[string]any{
		"state": map[string]any{"title": "new", "n": 1},
		"tag":   "y",
		"extra": map[string]any{"k": "v"},
	})
	if err != nil {
		t.Fatalf("reloadData: %v", err)
	}
	if got := dom.TextContent(doc.ElementByID("app")); got != "new-y-v" {
		t.Errorf("text = %q, want %q", got, "new-y-v")
	}
	if diff := cmp.Diff([]string{"extra", "state", "tag"}, a.Bindings()); diff != "" {
		t.Errorf("Bindings (-want +got):\n%s", diff)
	}
}
