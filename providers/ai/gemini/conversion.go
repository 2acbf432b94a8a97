package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/parse"
	"github.com/leofalp/aimux/internal/jsonschema"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/observability"
)

// dialect translates between ai.TextRequest and generateContent.
type dialect struct {
	p *GeminiProvider
}

func (d dialect) Name() string               { return ProviderName }
func (d dialect) SupportsContinuation() bool { return false }

// modelTurn is the Raw payload of an outcome: the candidate content as
// received plus the call ids this adapter had to invent.
type modelTurn struct {
	content     content
	synthesized map[string]bool
}

// Prepare builds the first generateContent request. Instructions and
// system-role history turns become the systemInstruction; assistant turns
// are sent with the "model" role.
func (d dialect) Prepare(request ai.TextRequest, tools ai.ToolSet) (generateContentRequest, error) {
	req := generateContentRequest{
		model: request.Model,
		GenerationConfig: &generationConfig{
			Temperature:     utils.Ptr(defaultTemperature),
			MaxOutputTokens: utils.Ptr(defaultMaxOutputTokens),
		},
	}
	if request.Temperature > 0 {
		req.GenerationConfig.Temperature = utils.Ptr(request.Temperature)
	}
	if request.MaxTokens > 0 {
		req.GenerationConfig.MaxOutputTokens = utils.Ptr(request.MaxTokens)
	}

	var system []part
	if request.Instructions != "" {
		system = append(system, part{Text: request.Instructions})
	}
	for _, msg := range ai.ConversationMessages(request.Conversation) {
		switch msg.Role {
		case memory.RoleSystem:
			system = append(system, part{Text: msg.Content})
		case memory.RoleAssistant:
			req.Contents = append(req.Contents, textContent("model", msg.Content))
		default:
			req.Contents = append(req.Contents, textContent("user", msg.Content))
		}
	}
	req.Contents = append(req.Contents, textContent("user", request.Prompt))
	if len(system) > 0 {
		req.SystemInstruction = &systemInstruction{Parts: system}
	}

	req.Tools = buildTools(tools)
	return req, nil
}

func (d dialect) Send(ctx context.Context, req generateContentRequest) ai.Outcome {
	observability.ObserverFromContext(ctx).Debug(ctx, "sending generateContent request",
		observability.String(observability.AttrModel, req.model),
		observability.Int(observability.AttrToolCount, len(req.Tools)),
	)

	resp, err := d.p.generateContent(ctx, req.model, req)
	if err != nil {
		return ai.Failed(err)
	}
	if resp == nil {
		return ai.Failed(errors.New("empty response from Gemini API"))
	}
	return outcomeFromResponse(*resp)
}

// FollowUp appends the model turn as received and a user turn holding one
// functionResponse part per call. Synthesized ids are not sent back since
// Gemini never saw them; those responses are matched by name.
func (d dialect) FollowUp(req generateContentRequest, first ai.Outcome, results []ai.ToolResult) (generateContentRequest, error) {
	turn, ok := first.Raw.(modelTurn)
	if !ok {
		return req, fmt.Errorf("unexpected raw response type %T", first.Raw)
	}

	responses := content{Role: "user"}
	for _, result := range results {
		id := result.CallID
		if turn.synthesized[id] {
			id = ""
		}
		responses.Parts = append(responses.Parts, part{
			FunctionResponse: &functionResponse{
				ID:       id,
				Name:     result.Name,
				Response: responsePayload(result.Output),
			},
		})
	}

	model := turn.content
	model.Role = "model"

	next := req
	next.Contents = append(slices.Clone(req.Contents), model, responses)
	return next, nil
}

// buildTools converts the tool set into Gemini tools. web_search maps to
// Google Search grounding; user functions share a single functionDeclarations
// entry and their schemas lose additionalProperties.
func buildTools(tools ai.ToolSet) []tool {
	var result []tool
	if tools.HasSystem(ai.SystemToolWebSearch) {
		result = append(result, tool{GoogleSearch: &googleSearchTool{}})
	}

	var decls []functionDeclaration
	for _, def := range tools.User {
		decl := functionDeclaration{
			Name:        def.Name,
			Description: def.Description,
		}
		if def.Parameters != nil {
			decl.Parameters = def.Parameters.Sanitized(jsonschema.StripAdditionalProperties)
		}
		decls = append(decls, decl)
	}
	if len(decls) > 0 {
		result = append(result, tool{FunctionDeclarations: decls})
	}
	return result
}

// outcomeFromResponse normalizes the first candidate. Gemini finishes with
// STOP even when it requests functions, so the presence of functionCall
// parts is the tool-call signal.
func outcomeFromResponse(resp generateContentResponse) ai.Outcome {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return ai.Failed(fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
		}
		return ai.Failed(errors.New("no candidates in response"))
	}

	outcome := ai.Outcome{
		Kind:       ai.OutcomePlainText,
		ResponseID: resp.ResponseID,
		Usage:      usageFrom(resp.UsageMetadata),
	}

	cand := resp.Candidates[0]
	turn := modelTurn{synthesized: map[string]bool{}}
	if cand.Content == nil {
		outcome.Raw = turn
		return outcome
	}
	turn.content = *cand.Content

	var text strings.Builder
	for _, p := range cand.Content.Parts {
		if p.Text != "" && !p.Thought {
			text.WriteString(p.Text)
		}
		if p.FunctionCall == nil {
			continue
		}

		id := p.FunctionCall.ID
		if id == "" {
			id = uuid.NewString()
			turn.synthesized[id] = true
		}
		rawArgs := string(p.FunctionCall.Args)
		args, err := parse.Arguments(rawArgs)
		if err != nil {
			args = map[string]any{}
		}
		if rawArgs == "" {
			rawArgs = parse.Encode(args)
		}
		outcome.Invocations = append(outcome.Invocations, ai.Invocation{
			ID:           id,
			Name:         p.FunctionCall.Name,
			Arguments:    args,
			RawArguments: rawArgs,
		})
	}

	outcome.Text = text.String()
	outcome.Raw = turn
	if len(outcome.Invocations) > 0 {
		outcome.Kind = ai.OutcomeToolCallRequested
	}
	return outcome
}

// responsePayload wraps a tool output for functionResponse.response, which
// must be a JSON object. Object outputs are sent as they are.
func responsePayload(output string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(output), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"result": output}
}

func usageFrom(u *usageMetadata) cost.Usage {
	if u == nil {
		return cost.Usage{}
	}
	return cost.NewUsage(u.PromptTokenCount, u.CandidatesTokenCount, u.TotalTokenCount)
}

func textContent(role, text string) content {
	return content{Role: role, Parts: []part{{Text: text}}}
}
