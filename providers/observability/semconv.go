package observability

// Attribute keys shared by adapters, the dispatcher and the transport helpers.
const (
	AttrError = "error"

	AttrProvider   = "aimux.provider"
	AttrModel      = "aimux.model"
	AttrCapability = "aimux.capability"
	AttrRequestID  = "aimux.request.id"
	AttrResponseID = "aimux.response.id"
	AttrElapsed    = "aimux.elapsed"

	AttrTokensInput  = "aimux.tokens.input"  // #nosec G101 -- token counts, not credentials
	AttrTokensOutput = "aimux.tokens.output" // #nosec G101 -- token counts, not credentials
	AttrTokensTotal  = "aimux.tokens.total"  // #nosec G101 -- token counts, not credentials
	AttrCostUSD      = "aimux.cost.usd"
	AttrCostKRW      = "aimux.cost.krw"

	AttrToolName   = "tool.name"
	AttrToolCallID = "tool.call_id"
	AttrToolCount  = "tool.count"
	AttrToolError  = "tool.error"

	AttrConversationKind = "conversation.kind"

	AttrHTTPMethod           = "http.method"
	AttrHTTPURL              = "http.url"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// Span names.
const (
	SpanDispatch     = "aimux.dispatch"
	SpanProviderCall = "aimux.provider.call"
	SpanToolExecute  = "aimux.tool.execute"
)
