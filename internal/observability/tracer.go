package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new internal span with the given name and attributes
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartClientSpan creates a new client span (for outbound upstream calls)
func StartClientSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError marks the span as errored
func SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanOK marks the span as successful
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Attribute keys for breed proxy spans
var (
	AttrCacheHit    = attribute.Key("breeds.cache_hit")
	AttrCacheKey    = attribute.Key("breeds.cache_key")
	AttrBreedID     = attribute.Key("breeds.id")
	AttrPage        = attribute.Key("breeds.page")
	AttrLimit       = attribute.Key("breeds.limit")
	AttrSearch      = attribute.Key("breeds.search")
	AttrAttempts    = attribute.Key("breeds.upstream.attempts")
	AttrRecordCount = attribute.Key("breeds.upstream.records")
	AttrShared      = attribute.Key("breeds.upstream.shared")
	AttrRequestID   = attribute.Key("breeds.request_id")
)
