// Package jsonschema describes tool parameters with a small JSON Schema model.
//
// Schemas are either built by hand with [Object], [String], [Number] and
// [Integer], or derived from a Go struct with [Generate]. Before a schema is
// sent to a vendor it is rendered into that vendor's dialect with
// [Schema.Sanitized]; for example Gemini needs [StripAdditionalProperties].
package jsonschema
