// Package observability defines the logging and tracing abstraction used by
// adapters, the dispatcher and the HTTP helpers.
//
// A [Provider] travels on the [context.Context]: attach it with
// [ContextWithObserver] and fetch it with [ObserverFromContext], which falls
// back to a no-op implementation so callers never nil-check. The active [Span]
// of a provider call is carried the same way with [ContextWithSpan] and
// [SpanFromContext].
//
// semconv.go holds the attribute keys and span names.
package observability
