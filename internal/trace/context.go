package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// SpanContext identifies the span that new spans nest under.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if t, ok := lookup[Tracer](ctx, tracerKey{}); ok && t != nil {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; nil detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// CurrentSpan returns the innermost span of ctx, zero when there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	sc, _ := lookup[SpanContext](ctx, spanKey{})
	return sc
}

// WithSpanContext makes sc the parent of spans begun from the result.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, spanKey{}, sc)
}

func lookup[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}
