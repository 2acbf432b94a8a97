// Package overview tracks what a session of dispatched calls consumed.
// It collects one [Entry] per call and keeps running totals of token usage,
// cost, tool requests and failures.
// Bind an [Overview] to a [context.Context] with [Overview.ToContext] or
// [OverviewFromContext]; the dispatcher records into whichever overview the
// call's context carries. [Overview.Summary] returns a consistent snapshot.
package overview
