package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/tnt-dev/tnt/internal/config"
	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/app"
	"github.com/tnt-dev/tnt/pkg/dom"
)

// projectFlags are shared by render and serve.
type projectFlags struct {
	config   string
	template string
	data     string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "Path to tnt.json (default: ./tnt.json when present)")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Template document (default from tnt.json)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "JSON or YAML data file (default from tnt.json)")
}

// project is a loaded template ready to mount.
type project struct {
	cfg          *config.Config
	templatePath string
	dataPath     string
	logger       *slog.Logger
	doc          *dom.Document
	container    *html.Node
	data         map[string]any
}

// loadProject reads the configuration, the template document and the data
// file. Flag values override the configuration.
func loadProject(f projectFlags) (*project, error) {
	var cfg *config.Config
	var err error
	switch {
	case f.config != "":
		cfg, err = config.LoadFile(f.config)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	templatePath := cfg.Resolve(cfg.Template)
	if f.template != "" {
		templatePath = f.template
	}
	dataPath := ""
	if cfg.Data != "" {
		dataPath = cfg.Resolve(cfg.Data)
	}
	if f.data != "" {
		dataPath = f.data
	}

	p := &project{cfg: cfg, templatePath: templatePath, dataPath: dataPath, logger: cfg.Logger(os.Stderr)}

	file, err := os.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}
	defer file.Close()
	if p.doc, err = dom.Parse(file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", templatePath, err)
	}
	p.container = p.doc.ElementByID(cfg.Container)
	if p.container == nil {
		return nil, tnterrors.New("E007").
			WithDetailf("no element with id %q in %s", cfg.Container, templatePath).
			WithSuggestion("Set \"container\" in tnt.json to the id of the mount element")
	}

	if dataPath != "" {
		if p.data, err = readData(dataPath); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// newApp creates an app configured from the project and registers its data.
func (p *project) newApp(opts ...app.Option) *app.App {
	base := []app.Option{
		app.WithLogger(p.logger),
		app.WithMaxDepth(p.cfg.Reactivity.MaxDepth),
		app.WithCacheSize(p.cfg.Eval.CacheSize),
	}
	if p.cfg.Reactivity.RetainNested {
		base = append(base, app.WithRetainNested())
	}
	a := app.New(append(base, opts...)...)
	registerData(a, p.data)
	return a
}

// readData decodes a JSON or YAML file into its top-level bindings. YAML is
// chosen by the .yaml and .yml extensions.
func readData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	data := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, tnterrors.New("E008").
			WithDetailf("data file %s: %v", path, err).
			Wrap(err)
	}
	return data, nil
}

// registerData binds every top-level key in name order. Objects become data
// objects and other values become refs, so a reload can replace them.
func registerData(a *app.App, data map[string]any) {
	for _, name := range sortedKeys(data) {
		if m, ok := data[name].(map[string]any); ok {
			a.Data(name, m)
			continue
		}
		a.Ref(name, data[name])
	}
}

// reloadData writes data into an app that is already mounted. Fields of
// existing data objects are set one by one so only the changed ones trigger
// effects. Unknown names are registered.
func reloadData(a *app.App, data map[string]any) error {
	var errs []error
	for _, name := range sortedKeys(data) {
		value := data[name]
		if _, err := a.GetPath(name); err != nil {
			registerData(a, map[string]any{name: value})
			continue
		}
		m, ok := value.(map[string]any)
		if !ok {
			errs = append(errs, a.SetPath(name, value))
			continue
		}
		for _, field := range sortedKeys(m) {
			errs = append(errs, a.SetPath(name+"."+field, m[field]))
		}
	}
	return errors.Join(errs...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
