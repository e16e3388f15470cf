// Package otel provides OpenTelemetry metric exporter bindings for authcore
// counters and histograms.
//
// [NewExporter] registers Int64ObservableCounter instruments for each
// authcore metric and Int64ObservableGauge per histogram bucket. A single
// callback reads [authcore.Engine.MetricsSnapshot] on each collection cycle.
//
// Callers supply the Meter; this package never owns the MeterProvider.
package otel
