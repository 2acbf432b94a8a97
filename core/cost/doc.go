// Package cost converts token usage into monetary cost.
//
// [Pricing] describes how a single model is billed: either a flat per-token
// rate or a [TieredFunc] whose unit prices depend on volume (see [Threshold]).
// [Calculator] applies a Pricing to a token count and returns a [Record] in
// both USD and KRW, using the process-wide exchange rate it was built with.
// An unpriced or unknown model yields the zero-valued [Unknown] sentinel, never
// an error.
package cost
