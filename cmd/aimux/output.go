package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/core/overview"
	"github.com/leofalp/aimux/internal/harness"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

type reportView struct {
	Provider string      `json:"provider" yaml:"provider"`
	Model    string      `json:"model" yaml:"model"`
	Feature  string      `json:"feature" yaml:"feature"`
	File     string      `json:"file,omitempty" yaml:"file,omitempty"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
	Tokens   int         `json:"tokens" yaml:"tokens"`
	Cost     cost.Record `json:"cost" yaml:"cost"`
	Elapsed  string      `json:"elapsed" yaml:"elapsed"`
}

type summaryView struct {
	Calls     int            `json:"calls" yaml:"calls"`
	Failures  int            `json:"failures" yaml:"failures"`
	Unpriced  int            `json:"unpriced" yaml:"unpriced"`
	Tokens    int            `json:"tokens" yaml:"tokens"`
	CostUSD   float64        `json:"cost_usd" yaml:"cost_usd"`
	CostKRW   float64        `json:"cost_krw" yaml:"cost_krw"`
	ToolCalls map[string]int `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	Duration  string         `json:"duration" yaml:"duration"`
}

type resultsView struct {
	Reports []reportView `json:"reports" yaml:"reports"`
	Summary summaryView  `json:"summary" yaml:"summary"`
}

func newResultsView(reports []harness.Report, summary overview.Summary) resultsView {
	view := resultsView{
		Reports: make([]reportView, 0, len(reports)),
		Summary: summaryView{
			Calls:     summary.Calls,
			Failures:  summary.Failures,
			Unpriced:  summary.Unpriced,
			Tokens:    summary.TotalUsage.TotalTokens,
			CostUSD:   summary.TotalCost.TotalCostUSD,
			CostKRW:   summary.TotalCost.TotalCostKRW,
			ToolCalls: summary.ToolCallStats,
			Duration:  summary.Duration.Round(time.Millisecond).String(),
		},
	}
	for _, r := range reports {
		rv := reportView{
			Provider: r.Provider,
			Model:    r.Model,
			Feature:  string(r.Feature),
			File:     r.File,
			Tokens:   r.Usage.TotalTokens,
			Cost:     r.Cost,
			Elapsed:  r.Elapsed.Round(time.Millisecond).String(),
		}
		if r.Err != nil {
			rv.Error = r.Err.Error()
		}
		view.Reports = append(view.Reports, rv)
	}
	return view
}

// writeResults renders the run in format: a table followed by a summary
// line, or a single JSON or YAML document.
func writeResults(out io.Writer, format string, reports []harness.Report, summary overview.Summary) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(newResultsView(reports, summary))
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(newResultsView(reports, summary)); err != nil {
			return err
		}
		return enc.Close()
	default:
		printReports(out, reports)
		printSummary(out, summary)
		return nil
	}
}
