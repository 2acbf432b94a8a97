package cost

import (
	"fmt"
)

const (
	// DefaultExchangeRate is the USD to KRW rate used when none is configured.
	DefaultExchangeRate = 1500.0

	// DefaultMargin is the API margin multiplier used when none is configured.
	DefaultMargin = 1.2
)

// Usage reports the token consumption of a single generation call.
// It is produced once per call and never mutated afterwards.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// NewUsage builds a Usage, deriving the total from input and output when the
// provider does not report one.
func NewUsage(inputTokens, outputTokens, totalTokens int) Usage {
	if totalTokens == 0 {
		totalTokens = inputTokens + outputTokens
	}
	return Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  totalTokens,
	}
}

// Rate is a pair of per-token unit prices in USD.
type Rate struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// RatePerMillion converts per-1M-token list prices into a per-token Rate.
func RatePerMillion(input, output float64) Rate {
	return Rate{
		Input:  input / 1_000_000.0,
		Output: output / 1_000_000.0,
	}
}

// TieredFunc maps token counts to their input and output cost in USD.
// Providers whose unit price depends on volume supply one of these instead of
// a flat per-token rate.
type TieredFunc func(inputTokens, outputTokens int) (inputCost, outputCost float64)

// Threshold returns a TieredFunc that prices both input and output with the
// above rate when inputTokens is strictly greater than limit, and with the
// below rate otherwise.
//
// Example:
//
//	// gemini-2.5-pro: $1.25/$10 per 1M up to 200k prompt tokens, $2.50/$15 above
//	tiered := cost.Threshold(200_000, cost.RatePerMillion(1.25, 10), cost.RatePerMillion(2.50, 15))
func Threshold(limit int, below, above Rate) TieredFunc {
	return func(inputTokens, outputTokens int) (float64, float64) {
		rate := below
		if inputTokens > limit {
			rate = above
		}
		return float64(inputTokens) * rate.Input, float64(outputTokens) * rate.Output
	}
}

// Pricing describes how a model is billed. When Tiered is set it takes
// precedence over the linear per-token prices.
type Pricing struct {
	// InputPerToken is the USD price of a single input token.
	InputPerToken float64 `json:"input_token_price"`

	// OutputPerToken is the USD price of a single output token.
	OutputPerToken float64 `json:"output_token_price"`

	// Tiered, when non-nil, computes the cost instead of the linear prices.
	Tiered TieredFunc `json:"-"`
}

// PerToken returns a linear Pricing from per-token unit prices.
func PerToken(input, output float64) *Pricing {
	return &Pricing{InputPerToken: input, OutputPerToken: output}
}

// PerMillion returns a linear Pricing from per-1M-token list prices.
func PerMillion(input, output float64) *Pricing {
	rate := RatePerMillion(input, output)
	return &Pricing{InputPerToken: rate.Input, OutputPerToken: rate.Output}
}

// WithTiers returns a Pricing that delegates entirely to tiered.
func WithTiers(tiered TieredFunc) *Pricing {
	return &Pricing{Tiered: tiered}
}

// String returns a formatted representation of the linear prices per 1M tokens.
func (p Pricing) String() string {
	if p.Tiered != nil {
		return "tiered"
	}
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		p.InputPerToken*1_000_000, p.OutputPerToken*1_000_000)
}

// Record is the cost of a single generation call in two currencies.
//
// Known is false for the zero-valued sentinel returned when the model is not
// in the catalog or carries no pricing. Callers branch on Known rather than on
// an error: cost is auxiliary to the generation result.
type Record struct {
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	TotalCostKRW float64 `json:"total_cost_krw"`
	Known        bool    `json:"known"`
}

// Unknown returns the zero-valued sentinel Record.
func Unknown() Record {
	return Record{}
}

// Add returns the field-wise sum of r and other. The result is Known when
// either operand is.
func (r Record) Add(other Record) Record {
	return Record{
		InputCost:    r.InputCost + other.InputCost,
		OutputCost:   r.OutputCost + other.OutputCost,
		TotalCostUSD: r.TotalCostUSD + other.TotalCostUSD,
		TotalCostKRW: r.TotalCostKRW + other.TotalCostKRW,
		Known:        r.Known || other.Known,
	}
}

// String returns a short human-readable summary of the record.
func (r Record) String() string {
	if !r.Known {
		return "unknown model (no cost)"
	}
	return fmt.Sprintf("$%.6f (₩%.2f)", r.TotalCostUSD, r.TotalCostKRW)
}

// Calculator turns token usage into a cost Record. It holds the process-wide
// exchange rate and margin read once at startup.
type Calculator struct {
	exchangeRate float64
	margin       float64
}

// NewCalculator returns a Calculator using the given USD→KRW exchange rate and
// margin multiplier. Non-positive values fall back to the defaults.
func NewCalculator(exchangeRate, margin float64) *Calculator {
	if exchangeRate <= 0 {
		exchangeRate = DefaultExchangeRate
	}
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &Calculator{exchangeRate: exchangeRate, margin: margin}
}

// ExchangeRate returns the configured USD→KRW rate.
func (c *Calculator) ExchangeRate() float64 {
	return c.exchangeRate
}

// Margin returns the configured margin multiplier.
//
// The margin is read from configuration but is not part of the cost formula;
// Calculate never applies it.
func (c *Calculator) Margin() float64 {
	return c.margin
}

// Calculate prices inputTokens and outputTokens with p. A nil Pricing yields
// the Unknown sentinel. Calculate is pure and never fails.
func (c *Calculator) Calculate(p *Pricing, inputTokens, outputTokens int) Record {
	if p == nil {
		return Unknown()
	}

	var inputCost, outputCost float64
	if p.Tiered != nil {
		inputCost, outputCost = p.Tiered(inputTokens, outputTokens)
	} else {
		inputCost = float64(inputTokens) * p.InputPerToken
		outputCost = float64(outputTokens) * p.OutputPerToken
	}

	totalUSD := inputCost + outputCost
	return Record{
		InputCost:    inputCost,
		OutputCost:   outputCost,
		TotalCostUSD: totalUSD,
		TotalCostKRW: totalUSD * c.exchangeRate,
		Known:        true,
	}
}

// CalculateUsage is a convenience wrapper around Calculate for a Usage value.
func (c *Calculator) CalculateUsage(p *Pricing, usage Usage) Record {
	return c.Calculate(p, usage.InputTokens, usage.OutputTokens)
}
