package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/app"
	"github.com/tnt-dev/tnt/pkg/dom"
)

const defaultTracerName = "tnt"

// Telemetry records metrics and trace spans for render passes, effects,
// DOM mutations and preview-server traffic.
type Telemetry struct {
	m        *metrics
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
}

// New creates the collectors and registers them. Registering twice with the
// same registerer panics, as with promauto.
func New(opts ...Option) *Telemetry {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	return &Telemetry{
		m:        newMetrics(config),
		gatherer: config.Gatherer,
		// The tracer uses the global OpenTelemetry provider, which is a no-op
		// until the program installs one.
		tracer: otel.Tracer(config.TracerName),
	}
}

// Hooks returns app hooks that feed this collector.
func (t *Telemetry) Hooks() app.Hooks {
	return app.Hooks{
		StartRender:  t.StartRender,
		OnEffectRun:  t.EffectRun,
		OnEffectDrop: t.EffectDropped,
		OnEvalError:  t.EvalError,
	}
}

// StartRender opens a span for a render pass and returns the function that
// closes it and records the pass.
func (t *Telemetry) StartRender(phase string) func(error) {
	start := time.Now()
	_, span := t.tracer.Start(context.Background(), "tnt.render",
		trace.WithAttributes(attribute.String("tnt.phase", phase)),
		trace.WithTimestamp(start),
	)
	return func(err error) {
		t.m.renderDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
		t.m.renders.WithLabelValues(phase, status(err)).Inc()
		endSpan(span, err)
	}
}

// StartEvent opens a span for a client event and returns the function that
// closes it and counts the event.
func (t *Telemetry) StartEvent(ctx context.Context, typ, target string) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "tnt.event."+typ,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("tnt.event_type", typ),
			attribute.String("tnt.event_target", target),
		),
	)
	return ctx, func(err error) {
		t.m.events.WithLabelValues(typ, status(err)).Inc()
		endSpan(span, err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := tnterrors.Code(err); code != "" {
			span.SetAttributes(attribute.String("tnt.error_code", code))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveDocument counts every mutation of doc by kind. The returned
// function stops observing.
func (t *Telemetry) ObserveDocument(doc *dom.Document) func() {
	return doc.Observe(func(m dom.Mutation) {
		t.m.mutations.WithLabelValues(m.Kind.String()).Inc()
	})
}

// EffectRun counts one effect run.
func (t *Telemetry) EffectRun() {
	t.m.effectRuns.Inc()
}

// EffectDropped counts one effect dropped by the depth guard.
func (t *Telemetry) EffectDropped(int) {
	t.m.effectsDropped.Inc()
}

// EvalError counts one failed evaluation.
func (t *Telemetry) EvalError(string, error) {
	t.m.evalErrors.Inc()
}

// ClientConnected adjusts the connected-client gauge.
func (t *Telemetry) ClientConnected(connected bool) {
	if connected {
		t.m.clients.Inc()
	} else {
		t.m.clients.Dec()
	}
}

// WebSocketError counts a websocket failure of the given kind.
func (t *Telemetry) WebSocketError(kind string) {
	t.m.wsErrors.WithLabelValues(kind).Inc()
}

// Published records the outcome of a snapshot publish.
func (t *Telemetry) Published(err error) {
	t.m.publishes.WithLabelValues(status(err)).Inc()
}
