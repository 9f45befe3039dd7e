package tracing

import "context"

// Tracer starts spans around pipeline stages. Services depend on this
// interface so tests and single-binary deployments can run without an
// exporter wired up.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is a live trace segment. End must be called exactly once.
type Span interface {
	SetTag(key string, value any)
	SetError(err error)
	End()
}

type noopTracer struct{}

type noopSpan struct{}

// Noop returns a tracer whose spans record nothing.
func Noop() Tracer { return noopTracer{} }

func (noopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopSpan) SetTag(string, any) {}
func (noopSpan) SetError(error)     {}
func (noopSpan) End()               {}
