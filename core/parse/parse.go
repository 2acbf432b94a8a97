package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrEmptyArguments is returned by [Into] when a typed target is requested but
// the model supplied no arguments at all.
var ErrEmptyArguments = errors.New("parse: empty arguments")

// Arguments decodes the raw argument string of a tool invocation into a map.
//
// Models occasionally emit arguments that are not strictly valid JSON: single
// quotes, unquoted keys, trailing commas, a markdown fence around the object.
// When plain decoding fails the content is passed through jsonrepair and
// decoded again. Values wrapped in a schema-like {"type": ..., "value": ...}
// envelope are unwrapped in both paths.
//
// An empty string (or "null") yields an empty, non-nil map.
//
// Example:
//
//	args, err := parse.Arguments(`{a: 2, b: 3, op: 'add'}`)
//	// args == map[string]any{"a": 2.0, "b": 3.0, "op": "add"}
func Arguments(raw string) (map[string]any, error) {
	content := stripFence(strings.TrimSpace(raw))
	if content == "" || content == "null" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(content), &args); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return nil, fmt.Errorf("decode tool arguments: %w (repair failed: %v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &args); err != nil {
			return nil, fmt.Errorf("decode repaired tool arguments %q: %w", repaired, err)
		}
	}

	if args == nil {
		return map[string]any{}, nil
	}

	unwrapped, _ := unwrap(args).(map[string]any)
	return unwrapped, nil
}

// Into converts a decoded argument map into a typed value by round-tripping
// it through JSON. It is the bridge between the untyped handler signature of
// the tool registry and typed tool inputs.
func Into[T any](args map[string]any) (T, error) {
	var result T
	if args == nil {
		return result, ErrEmptyArguments
	}

	data, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decode arguments as %T: %w", result, err)
	}
	return result, nil
}

// Encode renders tool arguments back to the compact JSON string that vendor
// wire formats expect when echoing a call.
func Encode(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// stripFence removes a surrounding ```json ... ``` block.
func stripFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// unwrap replaces {"type": ..., "value": v} envelopes with v, recursively.
//
//	{"a": {"type": "number", "value": 2}}  ->  {"a": 2}
func unwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return unwrap(value)
			}
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = unwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = unwrap(val)
		}
		return out
	default:
		return data
	}
}
