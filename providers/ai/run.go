package ai

import (
	"context"
	"fmt"

	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/observability"
)

// RunText performs a text generation through dialect d, including at most one
// tool round trip:
//
//  1. the model is checked against catalog and the conversation adapted to
//     the dialect;
//  2. requested user tools are looked up in env.Registry, unknown names are
//     dropped with a warning;
//  3. the first call is sent; cost is computed from its usage only;
//  4. every requested invocation is recorded in Tools and executed. An
//     artifact result ends the call at once, its cost added to the total;
//  5. otherwise the tool results are sent in a single follow-up call whose
//     text is appended to the first. Tool calls requested by the follow-up
//     are never serviced.
//
// RunText never panics and reports every failure in the returned result.
func RunText[W any](ctx context.Context, d Dialect[W], env Env, catalog Catalog, request TextRequest) TextResult {
	env = env.withDefaults()
	observer := observability.ObserverFromContext(ctx)

	model, err := catalog.SelectModel(d.Name(), request.Model, CapabilityText)
	if err != nil {
		observer.Warn(ctx, "text generation rejected",
			observability.String(observability.AttrProvider, d.Name()),
			observability.String(observability.AttrModel, request.Model),
			observability.Error(err),
		)
		return FailText(err)
	}
	request.Model = model

	ctx, span := observer.StartSpan(ctx, observability.SpanProviderCall,
		observability.String(observability.AttrProvider, d.Name()),
		observability.String(observability.AttrModel, model),
		observability.String(observability.AttrCapability, CapabilityText.String()),
	)
	defer span.End()

	fail := func(err error) TextResult {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		observer.Error(ctx, "text generation failed",
			observability.String(observability.AttrProvider, d.Name()),
			observability.String(observability.AttrModel, model),
			observability.Error(err),
		)
		return FailText(err)
	}

	conversation, downgraded := memory.Resolve(request.Conversation, d.SupportsContinuation())
	if downgraded {
		observer.Warn(ctx, "continuation not supported, falling back to a fresh history",
			observability.String(observability.AttrProvider, d.Name()),
		)
	}
	request.Conversation = conversation
	if conversation != nil {
		span.SetAttributes(observability.String(observability.AttrConversationKind, conversation.Kind()))
	}

	tools := ToolSet{System: request.SystemTools}
	for _, name := range request.UserTools {
		def, ok := env.Registry.Lookup(name)
		if !ok {
			observer.Warn(ctx, "user tool not registered, skipping",
				observability.String(observability.AttrToolName, name),
			)
			continue
		}
		tools.User = append(tools.User, def)
	}

	wire, err := d.Prepare(request, tools)
	if err != nil {
		return fail(err)
	}

	first := d.Send(ctx, wire)
	if first.Kind == OutcomeFailed {
		return fail(first.Err)
	}

	result := TextResult{
		Model:      model,
		Text:       first.Text,
		Usage:      first.Usage,
		Cost:       catalog.CalculateCost(env.Calculator, model, first.Usage),
		ResponseID: first.ResponseID,
	}

	if first.Kind == OutcomeToolCallRequested && len(first.Invocations) > 0 {
		span.SetAttributes(observability.Int(observability.AttrToolCount, len(first.Invocations)))

		results := make([]ToolResult, 0, len(first.Invocations))
		for _, inv := range first.Invocations {
			result.Tools = append(result.Tools, inv.Name)

			exec := env.Registry.Execute(ctx, inv.Name, inv.Arguments)
			if !exec.Found {
				observer.Warn(ctx, "model requested an unregistered tool",
					observability.String(observability.AttrToolName, inv.Name),
					observability.String(observability.AttrToolCallID, inv.ID),
				)
			}
			if exec.Artifact != nil {
				result.Text = ""
				result.Image = exec.Artifact
				result.Cost = result.Cost.Add(exec.Artifact.Cost)
				result.Conversation = advance(conversation, request.Prompt, "", result.ResponseID)
				logUsage(ctx, observer, span, result)
				return result
			}
			results = append(results, ToolResult{CallID: inv.ID, Name: inv.Name, Output: exec.Output})
		}

		followUp, err := d.FollowUp(wire, first, results)
		if err != nil {
			return fail(fmt.Errorf("building tool result request: %w", err))
		}
		second := d.Send(ctx, followUp)
		if second.Kind == OutcomeFailed {
			return fail(second.Err)
		}
		if second.Kind == OutcomeToolCallRequested {
			observer.Debug(ctx, "follow-up response requested more tools, not serviced",
				observability.Int(observability.AttrToolCount, len(second.Invocations)),
			)
		}

		result.Text += second.Text
		usage := second.Usage
		result.FollowUpUsage = &usage
		if second.ResponseID != "" {
			result.ResponseID = second.ResponseID
		}
	}

	result.Conversation = advance(conversation, request.Prompt, result.Text, result.ResponseID)
	logUsage(ctx, observer, span, result)
	return result
}

// advance returns the conversation state following one exchange. A History
// gains the user and assistant turns; a Continuation points at the latest
// response.
func advance(ref memory.Ref, prompt, reply, responseID string) memory.Ref {
	switch r := ref.(type) {
	case memory.History:
		return r.With(memory.UserMessage(prompt), memory.AssistantMessage(reply))
	case memory.Continuation:
		if responseID == "" {
			return r
		}
		return memory.Continuation{ResponseID: responseID}
	default:
		return ref
	}
}

func logUsage(ctx context.Context, observer observability.Provider, span observability.Span, result TextResult) {
	attrs := []observability.Attribute{
		observability.String(observability.AttrModel, result.Model),
		observability.Int(observability.AttrTokensInput, result.Usage.InputTokens),
		observability.Int(observability.AttrTokensOutput, result.Usage.OutputTokens),
		observability.Int(observability.AttrTokensTotal, result.Usage.TotalTokens),
		observability.Float64(observability.AttrCostUSD, result.Cost.TotalCostUSD),
	}
	if result.ResponseID != "" {
		attrs = append(attrs, observability.String(observability.AttrResponseID, result.ResponseID))
	}
	if len(result.Tools) > 0 {
		attrs = append(attrs, observability.StringSlice("tools", result.Tools))
	}
	span.SetAttributes(attrs...)
	span.SetStatus(observability.StatusOK, "")
	observer.Debug(ctx, "text generation completed", attrs...)
}
