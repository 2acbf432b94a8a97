package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/observability"
)

// Error codes sent back to the model when a tool cannot produce a result.
const (
	ErrCodeNotFound        = "tool_not_found"
	ErrCodeExecutionFailed = "tool_execution_failed"
)

// ArtifactKind names the type of a rich artifact.
type ArtifactKind string

const ArtifactImage ArtifactKind = "image"

// Artifact is a binary result produced by a tool, such as a generated image.
// Returning one from a handler ends the tool round trip: no follow-up call is
// made and the artifact becomes part of the caller's result, with Cost added
// to the call's cost.
type Artifact struct {
	Kind     ArtifactKind
	Data     []byte
	MimeType string
	Usage    cost.Usage
	Cost     cost.Record
}

// Failure is the JSON payload sent back to the model when a tool is unknown
// or fails.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON encodes the failure.
func (f Failure) JSON() string {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, f.Error)
	}
	return string(data)
}

// Execution is the outcome of running one tool invocation.
type Execution struct {
	Name  string
	Found bool
	// Output is the text sent back to the model.
	Output   string
	Artifact *Artifact
	Err      error
}

// Execute resolves name and runs its handler with args. It never fails: an
// unknown name or a handler error is reported in the returned Execution, with
// Output set to a [Failure] payload the model can read.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Execution {
	span := observability.SpanFromContext(ctx)
	handler, ok := r.Resolve(name)
	if !ok {
		if span != nil {
			span.AddEvent("tool.not_found", observability.String(observability.AttrToolName, name))
		}
		return Execution{
			Name:   name,
			Output: Failure{Error: ErrCodeNotFound, Message: fmt.Sprintf("tool %q is not registered", name)}.JSON(),
		}
	}

	start := time.Now()
	value, err := handler(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		if span != nil {
			span.AddEvent("tool.failed",
				observability.String(observability.AttrToolName, name),
				observability.String(observability.AttrToolError, err.Error()),
				observability.Duration("tool.duration", elapsed),
			)
		}
		return Execution{
			Name:   name,
			Found:  true,
			Output: Failure{Error: ErrCodeExecutionFailed, Message: err.Error()}.JSON(),
			Err:    err,
		}
	}

	if span != nil {
		span.AddEvent("tool.executed",
			observability.String(observability.AttrToolName, name),
			observability.Duration("tool.duration", elapsed),
		)
	}

	if artifact, isArtifact := asArtifact(value); isArtifact {
		return Execution{Name: name, Found: true, Artifact: artifact}
	}
	return Execution{Name: name, Found: true, Output: Stringify(value)}
}

// Stringify converts a handler return value into the text sent back to the
// model: strings are used as-is, fmt.Stringer values via String, nil as an
// empty string and everything else as JSON. Values that cannot be marshaled
// become a JSON error object.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return utils.JSONToString(v)
	}
}

func asArtifact(value any) (*Artifact, bool) {
	switch v := value.(type) {
	case *Artifact:
		return v, v != nil
	case Artifact:
		return &v, true
	default:
		return nil, false
	}
}
