// Package dispatch routes generation requests to registered provider
// adapters and flattens their results into a provider-agnostic [Envelope].
//
// A request names its target provider explicitly, or leaves it empty and
// lets the dispatcher find the adapter whose catalog contains the requested
// model. When neither resolves, the first registered adapter is used. Every
// call is timed; the elapsed time is reported for observability only.
package dispatch
