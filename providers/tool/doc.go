// Package tool implements the registry of user-defined tools that models may
// call during text generation.
//
// A [Registry] maps names to [Definition] values: a description, a JSON
// schema for the parameters and a [Handler]. The same registry is injected
// into every provider adapter. [NewTool] wraps a typed Go function, deriving
// the schema from its input struct.
//
// [Registry.Execute] runs one invocation and turns the handler's return value
// into either text for the model or an [Artifact] that short-circuits the
// round trip.
package tool
