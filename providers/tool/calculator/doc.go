// Package calculator provides the "calculator" tool: an in-process arithmetic
// expression evaluator that models can call during text generation.
//
// Register it with [NewCalculatorTool]; [Evaluate] is exported for direct use.
package calculator
