// Package telemetry collects Prometheus metrics and OpenTelemetry spans for
// a running app.
//
// Metrics collected (namespace "tnt" by default):
//   - tnt_render_passes_total: render passes by phase and status
//   - tnt_render_duration_seconds: render pass duration by phase
//   - tnt_dom_mutations_total: live DOM mutations by kind
//   - tnt_effect_runs_total, tnt_effects_dropped_total: reactive effect activity
//   - tnt_eval_errors_total: failed expression evaluations
//   - tnt_events_total: client events by type and status
//   - tnt_preview_clients, tnt_websocket_errors_total: preview server
//   - tnt_publishes_total: snapshot publishes by status
//
// Wire it into an app through its hooks:
//
//	tel := telemetry.New(telemetry.WithRegistry(reg))
//	a := app.New(app.WithHooks(tel.Hooks()))
//	stop := tel.ObserveDocument(doc)
//
// Spans use the global OpenTelemetry tracer provider. Configure it in main()
// to export them.
package telemetry
