package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tnt-dev/tnt/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	want := &Config{
		Template:   DefaultTemplate,
		Container:  DefaultContainer,
		Dev:        DevConfig{Host: DefaultHost, Port: DefaultPort},
		Reactivity: ReactivityConfig{MaxDepth: DefaultMaxDepth},
		Eval:       EvalConfig{CacheSize: DefaultCacheSize},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("New() (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); !stderrors.Is(err, errors.New("E008")) {
		t.Fatalf("missing config error = %v, want E008", err)
	}

	writeFile(t, dir, ConfigFileName, `{
  "template": "page.html",
  "data": "state.yaml",
  "dev": {"port": 8080},
  "reactivity": {"retainNested": true},
  "publish": {"target": "out"},
  "log": {"level": "debug", "format": "json"}
}`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Template != "page.html" || cfg.Container != DefaultContainer {
		t.Errorf("template/container = %q/%q", cfg.Template, cfg.Container)
	}
	if cfg.Dev.Port != 8080 || cfg.Dev.Host != DefaultHost {
		t.Errorf("dev = %+v", cfg.Dev)
	}
	if !cfg.Reactivity.RetainNested || cfg.Reactivity.MaxDepth != DefaultMaxDepth {
		t.Errorf("reactivity = %+v", cfg.Reactivity)
	}
	if got := cfg.Resolve(cfg.Data); got != filepath.Join(dir, "state.yaml") {
		t.Errorf("Resolve(data) = %q", got)
	}
	if cfg.DevAddress() != "localhost:8080" {
		t.Errorf("DevAddress() = %q", cfg.DevAddress())
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `{"dev": {"port": 8080}, "publish": {"target": "out"}}`)
	writeFile(t, dir, EnvFileName, "TNT_PORT=9000\nTNT_PUBLISH_TARGET=s3://from-dotenv/site\nTNT_MAX_EFFECT_DEPTH=7\n")
	t.Setenv(EnvPublishTarget, "s3://from-process/site")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dev.Port != 9000 {
		t.Errorf(".env should override the file port, got %d", cfg.Dev.Port)
	}
	if cfg.Publish.Target != "s3://from-process/site" {
		t.Errorf("process env should win over .env, got %q", cfg.Publish.Target)
	}
	if cfg.Reactivity.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d, want 7", cfg.Reactivity.MaxDepth)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
		env    string
	}{
		{"bad json", `{`, ""},
		{"port range", `{"dev": {"port": 70000}}`, ""},
		{"log level", `{"log": {"level": "loud"}}`, ""},
		{"log format", `{"log": {"format": "xml"}}`, ""},
		{"negative depth", `{"reactivity": {"maxDepth": -1}}`, ""},
		{"env port", `{}`, "TNT_PORT=abc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ConfigFileName, tt.config)
			if tt.env != "" {
				writeFile(t, dir, EnvFileName, tt.env)
			}
			_, err := Load(dir)
			if !stderrors.Is(err, errors.New("E008")) {
				t.Errorf("Load error = %v, want E008", err)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := New()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "code", "E009")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"code":"E009"`) {
		t.Errorf("json output = %s", out)
	}
}

func TestSaveAndFindProjectRoot(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Dev.Port = 4000
	if err := cfg.SaveTo(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	if root != dir {
		t.Errorf("root = %q, want %q", root, dir)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Dev.Port != 4000 {
		t.Errorf("saved port = %d", loaded.Dev.Port)
	}
}
