package anthropic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/parse"
	"github.com/leofalp/aimux/internal/jsonschema"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/observability"
)

// dialect translates between ai.TextRequest and the Messages API.
type dialect struct {
	p *AnthropicProvider
}

func (d dialect) Name() string               { return ProviderName }
func (d dialect) SupportsContinuation() bool { return false }

// Prepare builds the first Messages request. System-role turns of the
// history are folded into the top-level system prompt because the Messages
// API only accepts user and assistant roles.
func (d dialect) Prepare(request ai.TextRequest, tools ai.ToolSet) (anthropicRequest, error) {
	req := anthropicRequest{
		Model:     request.Model,
		MaxTokens: defaultMaxTokens,
	}
	if request.MaxTokens > 0 {
		req.MaxTokens = request.MaxTokens
	}
	if request.Temperature > 0 {
		req.Temperature = utils.Ptr(request.Temperature)
	}

	var system []string
	if request.Instructions != "" {
		system = append(system, request.Instructions)
	}
	for _, msg := range ai.ConversationMessages(request.Conversation) {
		if msg.Role == memory.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, textMessage(string(msg.Role), msg.Content))
	}
	req.Messages = append(req.Messages, textMessage("user", request.Prompt))
	req.System = strings.Join(system, "\n\n")

	req.Tools = buildAnthropicTools(tools)
	return req, nil
}

func (d dialect) Send(ctx context.Context, req anthropicRequest) ai.Outcome {
	if err := ai.RequireAPIKey(ProviderName, d.p.apiKey); err != nil {
		return ai.Failed(err)
	}

	observability.ObserverFromContext(ctx).Debug(ctx, "sending messages request",
		observability.String(observability.AttrModel, req.Model),
		observability.Int(observability.AttrToolCount, len(req.Tools)),
	)

	// Pass empty apiKey so DoPostSync does not inject a Bearer token;
	// Anthropic authenticates via x-api-key instead.
	_, resp, err := utils.DoPostSync[anthropicResponse](ctx, d.p.client, d.p.baseURL+messagesEndpoint, "", req, d.p.buildHeaders()...)
	if err != nil {
		return ai.Failed(err)
	}
	if resp == nil {
		return ai.Failed(errors.New("empty response from Anthropic API"))
	}
	return outcomeFromResponse(*resp)
}

// FollowUp appends the assistant turn exactly as received and a user turn
// carrying one tool_result block per tool_use id.
func (d dialect) FollowUp(req anthropicRequest, first ai.Outcome, results []ai.ToolResult) (anthropicRequest, error) {
	blocks, ok := first.Raw.([]responseContentBlock)
	if !ok {
		return req, fmt.Errorf("unexpected raw response type %T", first.Raw)
	}

	assistant := anthropicMessage{Role: "assistant"}
	for _, block := range blocks {
		assistant.Content = append(assistant.Content, block)
	}

	toolResults := anthropicMessage{Role: "user"}
	for _, result := range results {
		toolResults.Content = append(toolResults.Content, anthropicContentBlock{
			Type:      "tool_result",
			ToolUseID: result.CallID,
			Content:   result.Output,
		})
	}

	next := req
	next.Messages = append(slices.Clone(req.Messages), assistant, toolResults)
	return next, nil
}

// buildAnthropicTools converts the tool set into Anthropic tool definitions.
// web_search maps to the versioned server tool; other system tool names have
// no Anthropic equivalent and are dropped. Client tools without a schema get
// an empty object schema since input_schema is mandatory.
func buildAnthropicTools(tools ai.ToolSet) []anthropicTool {
	var out []anthropicTool
	if tools.HasSystem(ai.SystemToolWebSearch) {
		out = append(out, anthropicTool{
			Type:    webSearchToolType,
			Name:    ai.SystemToolWebSearch,
			MaxUses: webSearchMaxUses,
		})
	}
	for _, def := range tools.User {
		schema := def.Parameters
		if schema == nil {
			schema = jsonschema.Object(map[string]*jsonschema.Schema{})
		}
		out = append(out, anthropicTool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		})
	}
	return out
}

// outcomeFromResponse normalizes a Messages response. Tool calls are only
// reported when stop_reason is "tool_use"; server tool blocks (web search)
// are resolved by Anthropic and never surface as invocations.
func outcomeFromResponse(resp anthropicResponse) ai.Outcome {
	if resp.Error != nil {
		return ai.Failed(fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message))
	}

	outcome := ai.Outcome{
		Kind:       ai.OutcomePlainText,
		ResponseID: resp.ID,
		Usage:      cost.NewUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens, 0),
		Raw:        resp.Content,
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if resp.StopReason != "tool_use" {
				continue
			}
			args, err := parse.Arguments(string(block.Input))
			if err != nil {
				args = map[string]any{}
			}
			outcome.Invocations = append(outcome.Invocations, ai.Invocation{
				ID:           block.ID,
				Name:         block.Name,
				Arguments:    args,
				RawArguments: string(block.Input),
			})
		}
	}

	outcome.Text = text.String()
	if len(outcome.Invocations) > 0 {
		outcome.Kind = ai.OutcomeToolCallRequested
	}
	return outcome
}

func textMessage(role, text string) anthropicMessage {
	return anthropicMessage{
		Role:    role,
		Content: []any{anthropicContentBlock{Type: "text", Text: text}},
	}
}
