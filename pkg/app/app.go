package app

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/net/html"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/directive"
	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/reactive"
	"github.com/tnt-dev/tnt/pkg/template"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// Render phases reported to Hooks.StartRender.
const (
	PhaseMount = "mount"
	PhasePatch = "patch"
)

// Hooks receive lifecycle notifications. Every field is optional.
type Hooks struct {
	// StartRender is called before a render pass and returns the function
	// that is called with the pass result.
	StartRender func(phase string) func(err error)

	// OnEffectRun is called before every effect run.
	OnEffectRun func()

	// OnEffectDrop is called when the depth guard drops an effect.
	OnEffectDrop func(depth int)

	// OnEvalError is called for every failed expression evaluation.
	OnEvalError func(expr string, err error)
}

func (h Hooks) startRender(phase string) func(error) {
	if h.StartRender == nil {
		return func(error) {}
	}
	if done := h.StartRender(phase); done != nil {
		return done
	}
	return func(error) {}
}

// Config holds the settings an App is built with.
type Config struct {
	// MaxDepth bounds nested effect triggers. Zero uses reactive.DefaultMaxDepth.
	MaxDepth int

	// RetainNested keeps nested effects alive across parent runs.
	RetainNested bool

	// CacheSize bounds the compiled-expression cache. Zero uses eval.DefaultCacheSize.
	CacheSize int

	// Renderers is the directive registry. Nil uses directive.Default().
	Renderers *directive.Registry

	// Hooks receive lifecycle notifications.
	Hooks Hooks

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures an App.
type Option func(*Config)

// WithMaxDepth sets how deeply triggered effects may nest.
func WithMaxDepth(n int) Option {
	return func(c *Config) { c.MaxDepth = n }
}

// WithRetainNested keeps nested effects alive when their parent re-runs.
func WithRetainNested() Option {
	return func(c *Config) { c.RetainNested = true }
}

// WithCacheSize sets the compiled-expression cache size.
func WithCacheSize(n int) Option {
	return func(c *Config) { c.CacheSize = n }
}

// WithRenderers replaces the directive registry.
func WithRenderers(r *directive.Registry) Option {
	return func(c *Config) { c.Renderers = r }
}

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(c *Config) { c.Hooks = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// bindingsKey is tracked by every render pass and triggered when a name is
// added to the root environment.
const bindingsKey = "$bindings"

// App owns a reactive registry, an expression environment and the render
// loop that keeps a container in sync with its template.
// An App is not safe for concurrent use.
type App struct {
	config  Config
	logger  *slog.Logger
	effects *reactive.Registry
	eval    *eval.Evaluator
	env     *eval.Env

	// bound maps registered names to their reactive values.
	bound map[string]any

	mounted []func()

	doc       *dom.Document
	container *html.Node
	template  *html.Node
	builder   *template.Builder
	engine    *vdom.Engine
	root      *reactive.Effect
	tree      *vdom.VNode

	passes int
	err    error
}

// New creates an App. Built-in mutation functions are registered in the
// root environment.
func New(opts ...Option) *App {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Renderers == nil {
		cfg.Renderers = directive.Default()
	}

	hooks := cfg.Hooks
	ropts := []reactive.Option{
		reactive.WithMaxDepth(cfg.MaxDepth),
		reactive.WithLogger(cfg.Logger),
	}
	if cfg.RetainNested {
		ropts = append(ropts, reactive.WithRetainNested())
	}
	if hooks.OnEffectRun != nil {
		ropts = append(ropts, reactive.WithRunHook(func(*reactive.Effect) { hooks.OnEffectRun() }))
	}
	if hooks.OnEffectDrop != nil {
		ropts = append(ropts, reactive.WithDropHook(func(_ *reactive.Effect, depth int) { hooks.OnEffectDrop(depth) }))
	}

	eopts := []eval.Option{eval.WithLogger(cfg.Logger)}
	if cfg.CacheSize > 0 {
		eopts = append(eopts, eval.WithCacheSize(cfg.CacheSize))
	}
	if hooks.OnEvalError != nil {
		eopts = append(eopts, eval.WithErrorHook(hooks.OnEvalError))
	}

	a := &App{
		config:  cfg,
		logger:  cfg.Logger,
		effects: reactive.NewRegistry(ropts...),
		eval:    eval.New(eopts...),
		env:     eval.NewEnv(),
		bound:   make(map[string]any),
	}
	a.registerBuiltins()
	return a
}

// Data registers value as a reactive object under name.
func (a *App) Data(name string, value map[string]any) *reactive.Object {
	if value == nil {
		value = map[string]any{}
	}
	obj := a.effects.Object(value)
	a.Bind(name, obj)
	return obj
}

// Ref registers a reactive cell under name.
func (a *App) Ref(name string, initial any) *reactive.Ref[any] {
	ref := reactive.NewRef[any](a.effects, initial)
	a.Bind(name, ref)
	return ref
}

// Computed registers a value derived from fn under name. It is recomputed
// whenever something fn read changes.
func (a *App) Computed(name string, fn func() any) *reactive.Ref[any] {
	ref := reactive.Computed(a.effects, fn)
	a.Bind(name, ref)
	return ref
}

// Bind registers an already reactive value under name. Plain maps and slices
// are wrapped with the App's registry first.
func (a *App) Bind(name string, v any) {
	v = a.effects.Reactive(v)
	a.bound[name] = v
	a.env.Set(name, v)
	a.effects.Trigger(a, bindingsKey)
}

// Method registers fn as a function callable from expressions.
func (a *App) Method(name string, fn eval.Func) {
	a.env.SetFunc(name, fn)
	a.effects.Trigger(a, bindingsKey)
}

// Watch runs fn now and again whenever something it reads changes. deps name
// the bindings fn is expected to read; names that are not registered are
// reported as warnings.
func (a *App) Watch(fn func(), deps ...string) *reactive.Effect {
	for _, dep := range deps {
		if _, ok := a.lookupRoot(dep); !ok {
			a.logger.Warn("app: watch dependency is not registered",
				"code", "E009",
				"name", dep,
			)
		}
	}
	return a.effects.Effect(fn)
}

// OnMounted registers fn to run once after the first successful render.
func (a *App) OnMounted(fn func()) {
	a.mounted = append(a.mounted, fn)
}

// Mount lifts the first element child of container out as the template and
// renders it back into container. Later changes to registered data re-render
// automatically. The returned error is the first pass's error.
func (a *App) Mount(doc *dom.Document, container *html.Node) error {
	if a.root != nil {
		return fmt.Errorf("app: already mounted")
	}
	tmpl := dom.FirstElementChild(container)
	if tmpl == nil {
		err := tnterrors.New("E007")
		if container != nil {
			err = err.WithNode(dom.Path(container))
		}
		a.fail(PhaseMount, err)
		return err
	}
	doc.Detach(tmpl)

	a.doc = doc
	a.container = container
	a.template = tmpl
	a.builder = template.New(a.effects, a.eval, doc,
		template.WithRegistry(a.config.Renderers),
		template.WithLogger(a.logger),
	)
	a.engine = vdom.NewEngine(doc, a.effects, a.eval, a.logger)
	a.root = a.effects.Effect(a.render)

	if a.tree == nil {
		return a.err
	}
	for _, fn := range a.mounted {
		fn()
	}
	return nil
}

// render is the body of the root effect: rebuild the tree from the template
// and mount it on the first pass, patch it on later ones.
func (a *App) render() {
	phase := PhasePatch
	if a.tree == nil {
		phase = PhaseMount
	}
	done := a.config.Hooks.startRender(phase)
	start := time.Now()

	// Names registered after mount may resolve expressions that failed.
	a.effects.Track(a, bindingsKey)

	next, err := a.builder.BuildRoot(a.template, a.env)
	if err == nil {
		if a.tree == nil {
			err = a.engine.Mount(next, a.container)
		} else {
			err = a.engine.Patch(a.tree, next)
		}
	}
	done(err)
	if err != nil {
		a.fail(phase, err)
		return
	}

	a.tree = next
	a.err = nil
	a.passes++
	a.logger.Debug("app: rendered",
		"phase", phase,
		"pass", a.passes,
		"duration", time.Since(start),
	)
}

// fail records err. Mutations already applied to the document stay.
func (a *App) fail(phase string, err error) {
	a.err = err
	a.logger.Error("app: render failed",
		"phase", phase,
		"code", tnterrors.Code(err),
		"error", err,
	)
}

// Unmount stops re-rendering. The document keeps its current content.
func (a *App) Unmount() {
	a.root.Dispose()
}

// Err returns the error of the latest render pass, or nil.
func (a *App) Err() error {
	return a.err
}

// Registry returns the App's reactive registry.
func (a *App) Registry() *reactive.Registry {
	return a.effects
}

// Env returns the root expression environment.
func (a *App) Env() *eval.Env {
	return a.env
}

// Evaluator returns the App's expression evaluator.
func (a *App) Evaluator() *eval.Evaluator {
	return a.eval
}

// Document returns the mounted document, or nil before Mount.
func (a *App) Document() *dom.Document {
	return a.doc
}

// Tree returns the VNode tree of the latest successful pass.
func (a *App) Tree() *vdom.VNode {
	return a.tree
}

// Passes returns how many render passes have succeeded.
func (a *App) Passes() int {
	return a.passes
}

// Bindings returns the registered names in sorted order.
func (a *App) Bindings() []string {
	names := make([]string, 0, len(a.bound))
	for name := range a.bound {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
