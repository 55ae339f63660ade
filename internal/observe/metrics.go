// Package observe holds orbviz's OpenTelemetry instruments and the optional
// Prometheus bridge that exposes them on /metrics.
//
// Tests should build their own [Metrics] with [NewMetrics] and a
// ManualReader-backed provider. A nil *Metrics is valid and records nothing.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/olivier-w/orbviz"

// Metrics holds every instrument the application records.
type Metrics struct {
	// FramesRendered counts rendered visualizer frames. Attribute: mode.
	FramesRendered metric.Int64Counter

	// FrameDuration tracks the time spent building one frame.
	FrameDuration metric.Float64Histogram

	// SessionStarts counts sessions that became active. Attribute: kind.
	SessionStarts metric.Int64Counter

	// SessionFailures counts start attempts that failed. Attribute: kind.
	SessionFailures metric.Int64Counter

	// SessionAborts counts superseded or cancelled start attempts.
	SessionAborts metric.Int64Counter

	// ActiveSessions is 1 while a session is active.
	ActiveSessions metric.Int64UpDownCounter
}

// frameBuckets are in seconds, sized around a 33ms frame budget.
var frameBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1,
}

// NewMetrics creates all instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesRendered, err = m.Int64Counter("orbviz.frames",
		metric.WithDescription("Rendered visualizer frames by mode."),
	); err != nil {
		return nil, err
	}
	if met.FrameDuration, err = m.Float64Histogram("orbviz.frame.duration",
		metric.WithDescription("Time spent sampling and drawing one frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(frameBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SessionStarts, err = m.Int64Counter("orbviz.session.starts",
		metric.WithDescription("Sessions that became active, by source kind."),
	); err != nil {
		return nil, err
	}
	if met.SessionFailures, err = m.Int64Counter("orbviz.session.failures",
		metric.WithDescription("Session start attempts that failed, by source kind."),
	); err != nil {
		return nil, err
	}
	if met.SessionAborts, err = m.Int64Counter("orbviz.session.aborts",
		metric.WithDescription("Session start attempts superseded or cancelled."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("orbviz.session.active",
		metric.WithDescription("Number of active playback sessions."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance built on the global
// provider. Call it after InitProvider so the instruments reach the exporter.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordFrame records one rendered frame.
func (m *Metrics) RecordFrame(ctx context.Context, mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.FramesRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	m.FrameDuration.Record(ctx, d.Seconds())
}

// RecordSessionStart records a session becoming active.
func (m *Metrics) RecordSessionStart(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.SessionStarts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	m.ActiveSessions.Add(ctx, 1)
}

// RecordSessionEnd records an active session being released.
func (m *Metrics) RecordSessionEnd(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
}

// RecordSessionFailure records a failed start.
func (m *Metrics) RecordSessionFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.SessionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordSessionAbort records a superseded or cancelled start.
func (m *Metrics) RecordSessionAbort(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.SessionAborts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
