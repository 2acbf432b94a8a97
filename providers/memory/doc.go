// Package memory models the conversation state threaded through text
// generation calls.
//
// A [Ref] is one of two shapes. [History] is a client-side message list that
// the adapter replays in full and returns extended by two turns. [Continuation]
// is a server-side response id understood only by providers that keep state;
// [Resolve] downgrades it to an empty History for everyone else.
//
// [Store] holds refs between calls; the in-memory implementation lives in
// [github.com/leofalp/aimux/providers/memory/inmemory].
package memory
