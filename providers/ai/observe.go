package ai

import (
	"context"

	"github.com/leofalp/aimux/providers/observability"
)

// StartCall opens the provider-call span for a non-text capability. The
// returned finish function ends the span, logging err when it is non-nil.
func StartCall(ctx context.Context, provider string, capability Capability, model string) (context.Context, func(err error)) {
	observer := observability.ObserverFromContext(ctx)
	ctx, span := observer.StartSpan(ctx, observability.SpanProviderCall,
		observability.String(observability.AttrProvider, provider),
		observability.String(observability.AttrModel, model),
		observability.String(observability.AttrCapability, capability.String()),
	)
	return ctx, func(err error) {
		defer span.End()
		if err == nil {
			span.SetStatus(observability.StatusOK, "")
			return
		}
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		observer.Error(ctx, capability.String()+" generation failed",
			observability.String(observability.AttrProvider, provider),
			observability.String(observability.AttrModel, model),
			observability.Error(err),
		)
	}
}
