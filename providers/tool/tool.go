package tool

import (
	"context"
	"fmt"

	"github.com/leofalp/aimux/core/parse"
	"github.com/leofalp/aimux/internal/jsonschema"
)

type toolOptions struct {
	description string
	parameters  *jsonschema.Schema
}

// Option configures a tool built with [NewTool].
type Option func(*toolOptions)

// WithDescription sets the description shown to the model.
func WithDescription(description string) Option {
	return func(o *toolOptions) {
		o.description = description
	}
}

// WithParameters overrides the schema derived from the input type.
func WithParameters(schema *jsonschema.Schema) Option {
	return func(o *toolOptions) {
		o.parameters = schema
	}
}

// NewTool builds a Definition around a typed function. The parameter schema
// is derived from I by reflection and the raw argument map is decoded into I
// before fn is called.
//
// NewTool panics if I cannot be described as a JSON schema (for example a
// recursive type) and no schema was supplied with [WithParameters].
//
//	registry.Add(tool.NewTool("weather", getWeather,
//	    tool.WithDescription("Returns the current weather for a city."),
//	))
func NewTool[I, O any](name string, fn func(ctx context.Context, input I) (O, error), options ...Option) Definition {
	opts := &toolOptions{}
	for _, option := range options {
		option(opts)
	}

	parameters := opts.parameters
	if parameters == nil {
		generated, err := jsonschema.Generate[I]()
		if err != nil {
			panic(fmt.Sprintf("tool %q: %v", name, err))
		}
		parameters = generated
	}

	return Definition{
		Name:        name,
		Description: opts.description,
		Parameters:  parameters,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			input, err := parse.Into[I](args)
			if err != nil {
				return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
			}
			return fn(ctx, input)
		},
	}
}
