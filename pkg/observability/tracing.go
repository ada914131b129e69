package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps X-Ray subsegments behind an on/off switch, so code can mark
// interesting spans unconditionally and the deployment decides whether they
// go anywhere.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a tracer. When enabled is false every method is a
// pass-through.
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{serviceName: serviceName, enabled: enabled}
}

// Capture runs fn inside a named subsegment, recording its error if any.
func (t *Tracer) Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if t == nil || !t.enabled {
		return fn(ctx)
	}
	return xray.Capture(ctx, t.serviceName+"."+name, fn)
}

// AddAnnotation attaches an indexed annotation to the current segment.
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if t == nil || !t.enabled {
		return
	}
	_ = xray.AddAnnotation(ctx, key, value)
}
