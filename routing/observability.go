// Copyright 2025 The Mojo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this library in trace data.
const instrumentationName = "github.com/avnit/mojo/routing"

// observability bundles the optional tracing and metrics hooks of a
// dispatcher. A nil *observability disables everything; the hot path pays
// only a nil check.
type observability struct {
	tracer trace.Tracer

	dispatches *prometheus.CounterVec
	misses     prometheus.Counter
	duration   prometheus.Histogram
}

func (d *Dispatcher) observability() *observability {
	if d.obs == nil {
		d.obs = &observability{}
	}

	return d.obs
}

// WithTracing enables OpenTelemetry tracing using the globally registered
// tracer provider. One span per dispatch, annotated with the matched route
// name and pattern so trace cardinality stays bounded by the route table.
func WithTracing() DispatcherOption {
	return func(d *Dispatcher) {
		d.observability().tracer = otel.Tracer(instrumentationName)
	}
}

// WithTracerProvider enables OpenTelemetry tracing with an explicit
// provider, mainly for tests.
func WithTracerProvider(tp trace.TracerProvider) DispatcherOption {
	return func(d *Dispatcher) {
		d.observability().tracer = tp.Tracer(instrumentationName)
	}
}

// WithMetrics registers dispatch metrics with a Prometheus registerer:
// a counter of dispatches by route, method and status code, a counter of
// unmatched requests, and a histogram of dispatch duration. Registration
// conflicts panic, surfacing configuration mistakes at startup.
func WithMetrics(reg prometheus.Registerer) DispatcherOption {
	return func(d *Dispatcher) {
		o := d.observability()
		o.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mojo_dispatches_total",
			Help: "Dispatched requests by route, method and status code.",
		}, []string{"route", "method", "code"})
		o.misses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mojo_match_misses_total",
			Help: "Requests that matched no route.",
		})
		o.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mojo_dispatch_duration_seconds",
			Help:    "Time from match start to response completion.",
			Buckets: prometheus.DefBuckets,
		})
		reg.MustRegister(o.dispatches, o.misses, o.duration)
	}
}

// startSpan begins the dispatch span and attaches it to the request
// context. Returns the request unchanged when tracing is disabled.
func (o *observability) startSpan(req *http.Request) (*http.Request, trace.Span) {
	if o == nil || o.tracer == nil {
		return req, nil
	}
	ctx, span := o.tracer.Start(req.Context(), "mojo.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)

	return req.WithContext(ctx), span
}

// finish records the dispatch outcome on the span and metrics. It tolerates
// a nil observability and a nil span so callers need no guards.
func (o *observability) finish(span trace.Span, route, pattern, method string, status int, elapsed time.Duration, miss bool) {
	if o == nil {
		return
	}
	if span != nil {
		if route != "" {
			span.SetAttributes(
				attribute.String("route.name", route),
				attribute.String("route.pattern", pattern),
			)
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.End()
	}
	if miss {
		if o.misses != nil {
			o.misses.Inc()
		}

		return
	}
	if o.dispatches != nil {
		o.dispatches.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if o.duration != nil {
		o.duration.Observe(elapsed.Seconds())
	}
}
