package eval

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// DefaultCacheSize is the number of compiled expressions kept by default.
const DefaultCacheSize = 512

// compiled is a parsed expression plus the variable shapes it reads.
type compiled struct {
	expr   hclsyntax.Expression
	shapes map[string]*shape
	names  []string
	err    error
}

// Evaluator compiles and evaluates expressions. Compiled expressions are
// cached by source text. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	cache   *lru.Cache[string, *compiled]
	root    *hcl.EvalContext
	logger  *slog.Logger
	onError func(expr string, err error)
}

// Option configures an Evaluator.
type Option func(*evalConfig)

type evalConfig struct {
	cacheSize int
	funcs     map[string]function.Function
	logger    *slog.Logger
	onError   func(expr string, err error)
}

// WithCacheSize bounds the compiled-expression cache.
func WithCacheSize(n int) Option {
	return func(c *evalConfig) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// WithFunctions adds functions to the default table, replacing any with the
// same name.
func WithFunctions(funcs map[string]function.Function) Option {
	return func(c *evalConfig) {
		for name, fn := range funcs {
			c.funcs[name] = fn
		}
	}
}

// WithLogger sets the logger used for evaluation failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *evalConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHook is called whenever Evaluate swallows an error.
func WithErrorHook(fn func(expr string, err error)) Option {
	return func(c *evalConfig) {
		c.onError = fn
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	cfg := &evalConfig{
		cacheSize: DefaultCacheSize,
		funcs:     DefaultFunctions(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	cache, err := lru.New[string, *compiled](cfg.cacheSize)
	if err != nil {
		// Only returned for a non-positive size, which the option rejects.
		panic(err)
	}
	return &Evaluator{
		cache:   cache,
		root:    &hcl.EvalContext{Functions: cfg.funcs},
		logger:  cfg.logger,
		onError: cfg.onError,
	}
}

// Evaluate evaluates expr in env. It never fails: on error it returns the
// error's description as a string.
func (ev *Evaluator) Evaluate(expr string, env *Env) any {
	v, err := ev.Eval(expr, env)
	if err != nil {
		ev.logger.Debug("eval: expression failed", "code", "E001", "expr", expr, "error", err)
		if ev.onError != nil {
			ev.onError(expr, err)
		}
		return err.Error()
	}
	return v
}

// Eval evaluates expr in env and reports failures as errors. A nil env is
// treated as empty.
func (ev *Evaluator) Eval(expr string, env *Env) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	c := ev.compile(expr)
	if c.err != nil {
		return nil, c.err
	}
	if env == nil {
		env = NewEnv()
	}

	ctx := ev.root.NewChild()
	ctx.Variables = make(map[string]cty.Value, len(c.names))
	for _, name := range c.names {
		if v, ok := env.Lookup(name); ok {
			ctx.Variables[name] = resolve(v, c.shapes[name])
		}
	}
	ctx.Functions = env.functions()

	val, diags := c.expr.Value(ctx)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}
	return fromCty(val), nil
}

// Check parses expr without evaluating it.
func (ev *Evaluator) Check(expr string) error {
	return ev.compile(expr).err
}

// Variables returns the root names expr references, sorted.
func (ev *Evaluator) Variables(expr string) ([]string, error) {
	c := ev.compile(expr)
	if c.err != nil {
		return nil, c.err
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out, nil
}

// CacheLen returns the number of cached compiled expressions.
func (ev *Evaluator) CacheLen() int {
	return ev.cache.Len()
}

func (ev *Evaluator) compile(src string) *compiled {
	if c, ok := ev.cache.Get(src); ok {
		return c
	}
	c := &compiled{}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "expr", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		c.err = diagError(diags)
	} else {
		c.expr = expr
		c.shapes = shapesOf(expr.Variables())
		for name := range c.shapes {
			c.names = append(c.names, name)
		}
		sort.Strings(c.names)
	}
	ev.cache.Add(src, c)
	return c
}

// diagError reduces diagnostics to their first error.
func diagError(diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Detail != "" {
			return fmt.Errorf("%s: %s", d.Summary, d.Detail)
		}
		return errors.New(d.Summary)
	}
	return diags
}
