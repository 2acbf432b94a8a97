package openai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/parse"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/observability"
)

const webSearchTool = "web_search_preview"

// dialect translates between ai.TextRequest and the Responses API.
type dialect struct {
	p *OpenAIProvider
}

func (d dialect) Name() string               { return ProviderName }
func (d dialect) SupportsContinuation() bool { return true }

func (d dialect) Prepare(request ai.TextRequest, tools ai.ToolSet) (responseCreateRequest, error) {
	req := responseCreateRequest{
		Model:              request.Model,
		PreviousResponseID: ai.ContinuationID(request.Conversation),
	}

	if request.Instructions != "" {
		req.Input = append(req.Input, inputMessage{Role: "developer", Content: request.Instructions})
	}
	for _, msg := range ai.ConversationMessages(request.Conversation) {
		req.Input = append(req.Input, inputMessage{Role: roleFromMemory(msg.Role), Content: msg.Content})
	}
	req.Input = append(req.Input, inputMessage{Role: "user", Content: request.Prompt})

	if request.Temperature > 0 {
		req.Temperature = utils.Ptr(request.Temperature)
	}
	if request.MaxTokens > 0 {
		req.MaxOutputTokens = utils.Ptr(request.MaxTokens)
	}

	for _, name := range tools.System {
		if name == ai.SystemToolWebSearch {
			req.Tools = append(req.Tools, responseTool{Type: webSearchTool})
			req.ToolChoice = map[string]string{"type": webSearchTool}
			continue
		}
		req.Tools = append(req.Tools, responseTool{Type: name})
	}
	for _, def := range tools.User {
		req.Tools = append(req.Tools, responseTool{
			Type:        "function",
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}

	return req, nil
}

func (d dialect) Send(ctx context.Context, req responseCreateRequest) ai.Outcome {
	if err := ai.RequireAPIKey(ProviderName, d.p.apiKey); err != nil {
		return ai.Failed(err)
	}

	observability.ObserverFromContext(ctx).Debug(ctx, "sending responses request",
		observability.String(observability.AttrModel, req.Model),
		observability.Int(observability.AttrToolCount, len(req.Tools)),
	)

	_, resp, err := utils.DoPostSync[responseCreateResponse](ctx, d.p.client, d.p.baseURL+responsesEndpoint, d.p.apiKey, req)
	if err != nil {
		return ai.Failed(err)
	}
	if resp == nil {
		return ai.Failed(errors.New("empty response from OpenAI API"))
	}
	return outcomeFromResponse(*resp)
}

// FollowUp echoes the function_call items of the first response and binds
// one function_call_output to each call id.
func (d dialect) FollowUp(req responseCreateRequest, first ai.Outcome, results []ai.ToolResult) (responseCreateRequest, error) {
	items, ok := first.Raw.([]outputItem)
	if !ok {
		return req, fmt.Errorf("unexpected raw response type %T", first.Raw)
	}

	next := req
	next.Input = slices.Clone(req.Input)
	for _, item := range items {
		if item.Type == "function_call" {
			next.Input = append(next.Input, item)
		}
	}
	for _, result := range results {
		next.Input = append(next.Input, functionCallOutput{
			Type:   "function_call_output",
			CallID: result.CallID,
			Output: result.Output,
		})
	}
	return next, nil
}

func outcomeFromResponse(resp responseCreateResponse) ai.Outcome {
	if resp.Error != nil {
		return ai.Failed(fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message))
	}
	if resp.Status == "failed" {
		return ai.Failed(fmt.Errorf("response %s failed", resp.ID))
	}

	outcome := ai.Outcome{
		Kind:       ai.OutcomePlainText,
		ResponseID: resp.ID,
		Raw:        resp.Output,
	}
	if resp.Usage != nil {
		outcome.Usage = cost.NewUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
	}

	var text strings.Builder
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, content := range item.Content {
				if content.Type == "output_text" {
					text.WriteString(content.Text)
				}
			}
		case "function_call":
			if item.Status != "" && item.Status != "completed" {
				continue
			}
			args, err := parse.Arguments(item.Arguments)
			if err != nil {
				args = map[string]any{}
			}
			outcome.Invocations = append(outcome.Invocations, ai.Invocation{
				ID:           item.CallID,
				Name:         item.Name,
				Arguments:    args,
				RawArguments: item.Arguments,
			})
		}
	}

	outcome.Text = text.String()
	if len(outcome.Invocations) > 0 {
		outcome.Kind = ai.OutcomeToolCallRequested
	}
	return outcome
}

func roleFromMemory(role memory.Role) string {
	if role == memory.RoleSystem {
		return "developer"
	}
	return string(role)
}
