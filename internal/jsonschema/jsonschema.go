package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema used to describe tool parameters.
//
// All vendors accept the same core vocabulary; the differences between their
// dialects are handled by [Schema.Sanitized].
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
	// AdditionalProperties is either a bool or a *Schema. Gemini rejects it.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
}

// Object returns an object schema with the given properties. Property names
// listed in required are marked as mandatory.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// String returns a string property schema.
func String(description string, enum ...string) *Schema {
	s := &Schema{Type: "string", Description: description}
	for _, v := range enum {
		s.Enum = append(s.Enum, v)
	}
	return s
}

// Number returns a number property schema.
func Number(description string) *Schema {
	return &Schema{Type: "number", Description: description}
}

// Integer returns an integer property schema.
func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

// SanitizeOption rewrites a schema in place during [Schema.Sanitized].
type SanitizeOption func(*Schema)

// StripAdditionalProperties removes the additionalProperties keyword, which the
// Gemini function-declaration dialect does not accept.
func StripAdditionalProperties(s *Schema) {
	s.AdditionalProperties = nil
}

// Sanitized returns a deep copy of s with every option applied to each nested
// schema. The receiver is never modified, so a single registered definition
// can be rendered into several dialects.
func (s *Schema) Sanitized(opts ...SanitizeOption) *Schema {
	if s == nil {
		return nil
	}

	out := *s
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.Sanitized(opts...)
		}
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		out.Enum = append([]any(nil), s.Enum...)
	}
	out.Items = s.Items.Sanitized(opts...)
	if nested, ok := s.AdditionalProperties.(*Schema); ok {
		out.AdditionalProperties = nested.Sanitized(opts...)
	}

	for _, opt := range opts {
		opt(&out)
	}
	return &out
}

// Generate builds a schema from the Go type T by reflection.
//
// Struct fields are named after their json tag. A field is required unless it
// is a pointer or tagged omitempty, or is explicitly tagged
// `jsonschema:"required"`. The jsonschema tag also accepts description=... and
// repeated enum=... entries:
//
//	type Input struct {
//		Op string `json:"op" jsonschema:"description=Operation,enum=add,enum=sub"`
//	}
func Generate[T any]() (*Schema, error) {
	return generate(reflect.TypeFor[T](), map[reflect.Type]bool{})
}

func generate(t reflect.Type, seen map[reflect.Type]bool) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Slice, reflect.Array:
		items, err := generate(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := generate(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		return generateStruct(t, seen)
	default:
		return &Schema{Type: "object"}, nil
	}
}

func generateStruct(t reflect.Type, seen map[reflect.Type]bool) (*Schema, error) {
	if seen[t] {
		return nil, fmt.Errorf("jsonschema: recursive type %s is not supported for tool parameters", t)
	}
	seen[t] = true
	defer delete(seen, t)

	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema, err := generate(field.Type, seen)
		if err != nil {
			return nil, err
		}

		requiredByTag, err := applyTag(field, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: field %s: %w", field.Name, err)
		}

		schema.Properties[name] = fieldSchema
		if requiredByTag || (field.Type.Kind() != reflect.Pointer && !omitEmpty) {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func applyTag(field reflect.StructField, schema *Schema) (bool, error) {
	tag := field.Tag.Get("jsonschema")
	if tag == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		if !hasValue {
			if key == "required" {
				required = true
			}
			continue
		}

		switch key {
		case "description":
			schema.Description = value
		case "enum":
			v, err := enumValue(field.Type, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, v)
		}
	}
	return required, nil
}

func enumValue(t reflect.Type, value string) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseInt(value, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(value, 64)
	case reflect.Bool:
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("enum unsupported for type %v", t)
	}
}

// JSON returns the compact JSON encoding of the schema.
func (s *Schema) JSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(data), nil
}
