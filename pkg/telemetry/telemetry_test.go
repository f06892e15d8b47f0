package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/app"
	"github.com/tnt-dev/tnt/pkg/dom"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRenderPasses(t *testing.T) {
	tel := New(WithRegistry(prometheus.NewRegistry()))

	tel.StartRender(app.PhaseMount)(nil)
	tel.StartRender(app.PhasePatch)(nil)
	tel.StartRender(app.PhasePatch)(tnterrors.New("E005"))

	if got := counterValue(t, tel.m.renders.WithLabelValues("mount", "success")); got != 1 {
		t.Errorf("mount success = %v, want 1", got)
	}
	if got := counterValue(t, tel.m.renders.WithLabelValues("patch", "error")); got != 1 {
		t.Errorf("patch error = %v, want 1", got)
	}
	if got := histogramCount(t, tel.m.renderDuration.WithLabelValues("patch")); got != 2 {
		t.Errorf("patch duration samples = %d, want 2", got)
	}
}

func TestAppWiring(t *testing.T) {
	tel := New(WithRegistry(prometheus.NewRegistry()))
	a := app.New(app.WithHooks(tel.Hooks()), app.WithLogger(discard()))
	state := a.Data("state", map[string]any{"n": 1})

	doc := dom.MustParseString(`<div id="app"><p><v data="state.n"></v><v data="missing"></v></p></div>`)
	stop := tel.ObserveDocument(doc)
	defer stop()

	if err := a.Mount(doc, doc.ElementByID("app")); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	state.Set("n", 2)

	if got := counterValue(t, tel.m.renders.WithLabelValues("patch", "success")); got != 1 {
		t.Errorf("patch passes = %v, want 1", got)
	}
	if got := counterValue(t, tel.m.effectRuns); got == 0 {
		t.Error("effect runs not counted")
	}
	if got := counterValue(t, tel.m.evalErrors); got == 0 {
		t.Error("eval errors not counted")
	}
	if got := counterValue(t, tel.m.mutations.WithLabelValues(dom.MutationInsertNode.String())); got != 1 {
		t.Errorf("insert mutations = %v, want 1", got)
	}
	if got := counterValue(t, tel.m.mutations.WithLabelValues(dom.MutationSetText.String())); got != 1 {
		t.Errorf("text mutations = %v, want 1", got)
	}
}

func TestEventsAndServerCounters(t *testing.T) {
	tel := New(WithRegistry(prometheus.NewRegistry()))

	ctx, done := tel.StartEvent(context.Background(), "click", "h1")
	if ctx == nil {
		t.Fatal("StartEvent returned a nil context")
	}
	done(nil)
	_, done = tel.StartEvent(context.Background(), "click", "h2")
	done(errors.New("boom"))

	tel.ClientConnected(true)
	tel.ClientConnected(true)
	tel.ClientConnected(false)
	tel.WebSocketError("read")
	tel.Published(nil)
	tel.EffectDropped(100)

	checks := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"click success", tel.m.events.WithLabelValues("click", "success"), 1},
		{"click error", tel.m.events.WithLabelValues("click", "error"), 1},
		{"ws read", tel.m.wsErrors.WithLabelValues("read"), 1},
		{"publish", tel.m.publishes.WithLabelValues("success"), 1},
		{"dropped", tel.m.effectsDropped, 1},
	}
	for _, c := range checks {
		if got := counterValue(t, c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
	if got := gaugeValue(t, tel.m.clients); got != 1 {
		t.Errorf("clients = %v, want 1", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	tel := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("demo"))
	tel.EffectRun()

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "demo_effect_runs_total 1") {
		t.Errorf("metrics body missing effect runs:\n%s", body)
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
