package overview

import (
	"context"
	"sync"
	"time"

	"github.com/leofalp/aimux/core/cost"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// overviewContextKey is the key used to store Overview in context.
const overviewContextKey contextKey = "overview"

// Entry is the record of one dispatched call.
type Entry struct {
	RequestID  string        `json:"request_id"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Capability string        `json:"capability"`
	Tools      []string      `json:"tools,omitempty"`
	Usage      cost.Usage    `json:"usage"`
	Cost       cost.Record   `json:"cost"`
	Elapsed    time.Duration `json:"elapsed"`
	Failed     bool          `json:"failed,omitempty"`
}

// Overview aggregates the calls of one session. It is safe for concurrent use.
type Overview struct {
	mu sync.Mutex

	entries       []Entry
	totalUsage    cost.Usage
	totalCost     cost.Record
	providerCosts map[string]cost.Record
	toolCallStats map[string]int
	failures      int
	unpriced      int

	executionStartTime time.Time
	executionEndTime   time.Time
}

// Summary is a point-in-time copy of an Overview's totals.
type Summary struct {
	Calls         int                    `json:"calls"`
	Failures      int                    `json:"failures"`
	Unpriced      int                    `json:"unpriced"` // Successful calls whose cost is unknown
	TotalUsage    cost.Usage             `json:"total_usage"`
	TotalCost     cost.Record            `json:"total_cost"`
	ProviderCosts map[string]cost.Record `json:"provider_costs,omitempty"`
	ToolCallStats map[string]int         `json:"tool_calls,omitempty"`
	Duration      time.Duration          `json:"duration"`
}

// New returns an empty Overview.
func New() *Overview {
	return &Overview{
		providerCosts: make(map[string]cost.Record),
		toolCallStats: make(map[string]int),
	}
}

// OverviewFromContext retrieves the Overview from the context, creating one if
// it does not already exist. The context pointer is updated in-place when a new
// Overview is created so callers see the enriched context.
func OverviewFromContext(ctx *context.Context) *Overview {
	if overview, ok := FromContext(*ctx); ok {
		return overview
	}
	overview := New()
	*ctx = overview.ToContext(*ctx)
	return overview
}

// FromContext returns the Overview carried by ctx, if any.
func FromContext(ctx context.Context) (*Overview, bool) {
	if ctx == nil {
		return nil, false
	}
	overview, ok := ctx.Value(overviewContextKey).(*Overview)
	return overview, ok && overview != nil
}

// ToContext stores the Overview in the given context and returns the enriched context.
func (overview *Overview) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, overviewContextKey, overview)
}

// Include records one call. Failed calls count toward Failures only; their
// usage and cost are not added to the totals.
func (overview *Overview) Include(entry Entry) {
	overview.mu.Lock()
	defer overview.mu.Unlock()

	overview.entries = append(overview.entries, entry)
	if entry.Failed {
		overview.failures++
		return
	}

	overview.totalUsage = cost.Usage{
		InputTokens:  overview.totalUsage.InputTokens + entry.Usage.InputTokens,
		OutputTokens: overview.totalUsage.OutputTokens + entry.Usage.OutputTokens,
		TotalTokens:  overview.totalUsage.TotalTokens + entry.Usage.TotalTokens,
	}
	if !entry.Cost.Known {
		overview.unpriced++
	} else {
		overview.totalCost = overview.totalCost.Add(entry.Cost)
		overview.providerCosts[entry.Provider] = overview.providerCosts[entry.Provider].Add(entry.Cost)
	}
	for _, name := range entry.Tools {
		overview.toolCallStats[name]++
	}
}

// Entries returns a copy of the recorded calls in the order they were included.
func (overview *Overview) Entries() []Entry {
	overview.mu.Lock()
	defer overview.mu.Unlock()
	return append([]Entry(nil), overview.entries...)
}

// StartExecution marks the start of the session.
func (overview *Overview) StartExecution() {
	overview.mu.Lock()
	overview.executionStartTime = time.Now()
	overview.mu.Unlock()
}

// EndExecution marks the end of the session.
func (overview *Overview) EndExecution() {
	overview.mu.Lock()
	overview.executionEndTime = time.Now()
	overview.mu.Unlock()
}

// ExecutionDuration returns the session duration.
// Returns 0 if execution hasn't started or ended.
func (overview *Overview) ExecutionDuration() time.Duration {
	overview.mu.Lock()
	defer overview.mu.Unlock()
	return overview.executionDuration()
}

func (overview *Overview) executionDuration() time.Duration {
	if overview.executionStartTime.IsZero() || overview.executionEndTime.IsZero() {
		return 0
	}
	return overview.executionEndTime.Sub(overview.executionStartTime)
}

// Summary returns a snapshot of the totals.
func (overview *Overview) Summary() Summary {
	overview.mu.Lock()
	defer overview.mu.Unlock()

	summary := Summary{
		Calls:         len(overview.entries),
		Failures:      overview.failures,
		Unpriced:      overview.unpriced,
		TotalUsage:    overview.totalUsage,
		TotalCost:     overview.totalCost,
		ProviderCosts: make(map[string]cost.Record, len(overview.providerCosts)),
		ToolCallStats: make(map[string]int, len(overview.toolCallStats)),
		Duration:      overview.executionDuration(),
	}
	for provider, record := range overview.providerCosts {
		summary.ProviderCosts[provider] = record
	}
	for name, count := range overview.toolCallStats {
		summary.ToolCallStats[name] = count
	}
	return summary
}
