package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/aimux/core/dispatch"
	"github.com/leofalp/aimux/core/overview"
	"github.com/leofalp/aimux/internal/config"
	"github.com/leofalp/aimux/internal/harness"
	"github.com/leofalp/aimux/providers/ai/anthropic"
	"github.com/leofalp/aimux/providers/ai/elevenlabs"
	"github.com/leofalp/aimux/providers/ai/gemini"
	"github.com/leofalp/aimux/providers/ai/openai"
	"github.com/leofalp/aimux/providers/ai/runway"
	"github.com/leofalp/aimux/providers/ai/stability"
	"github.com/leofalp/aimux/providers/observability"
	"github.com/leofalp/aimux/providers/observability/slogobs"
	"github.com/leofalp/aimux/providers/tool"
	"github.com/leofalp/aimux/providers/tool/calculator"
	"github.com/leofalp/aimux/providers/tool/webfetch"
)

type options struct {
	envFile   string
	outDir    string
	imageURL  string
	audioFile string
	output    string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "aimux [provider|feature] [provider]",
		Short: "Smoke-test generative AI providers model by model",
		Long: "Runs each model of the selected providers through the selected feature " +
			"and writes the results to {out}/{provider}/{model_id}.{ext}.\n\n" +
			"Features: text, image, tts, video, stt, websearch, tool, conversation, conversation_state.",
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load; a missing file is ignored")
	rootCmd.Flags().StringVarP(&opts.outDir, "out", "o", harness.DefaultOutputDir, "output directory")
	rootCmd.Flags().StringVar(&opts.imageURL, "image-url", "", "source image for image-to-video models")
	rootCmd.Flags().StringVar(&opts.audioFile, "audio", "", "audio file for stt (defaults to the first tts output)")
	rootCmd.Flags().StringVar(&opts.output, "output", formatTable, "result format (table, json, yaml)")

	rootCmd.AddCommand(newKeysCommand(opts))
	return rootCmd
}

func newKeysCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Report which provider API keys are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			statuses := cfg.CheckAPIKeys()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tVARIABLE\tCONFIGURED")
			for _, s := range statuses {
				fmt.Fprintf(w, "%s\t%s\t%t\n", s.Provider, s.EnvVar, s.Present)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return config.MissingKeys(statuses)
		},
	}
}

// parseArgs splits the positional arguments into a feature and providers.
// A single argument is a feature when it names one, otherwise a provider.
func parseArgs(args []string) (harness.Feature, []string, error) {
	if len(args) == 0 {
		return harness.FeatureAll, nil, nil
	}
	if !harness.IsFeature(args[0]) {
		if len(args) > 1 {
			return harness.FeatureAll, nil, fmt.Errorf("unknown feature %q", args[0])
		}
		return harness.FeatureAll, args, nil
	}
	feature, err := harness.ParseFeature(args[0])
	if err != nil {
		return harness.FeatureAll, nil, err
	}
	return feature, args[1:], nil
}

func runHarness(ctx context.Context, out io.Writer, opts *options, args []string) error {
	feature, providers, err := parseArgs(args)
	if err != nil {
		return err
	}
	if err := validateFormat(opts.output); err != nil {
		return err
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}
	observer := slogobs.New(
		slogobs.WithLevel(slogobs.ParseLevel(cfg.LogLevel())),
		slogobs.WithFormat(slogobs.ParseFormat(cfg.LogFormat())),
	)
	ctx = observability.ContextWithObserver(ctx, observer)

	d := newDispatcher(cfg, observer)
	d.CheckAPIKeys(ctx)

	harnessOpts := []harness.Option{
		harness.WithOutputDir(opts.outDir),
		harness.WithImageURL(opts.imageURL),
	}
	if opts.audioFile != "" {
		audio, err := os.ReadFile(opts.audioFile)
		if err != nil {
			return fmt.Errorf("reading audio sample: %w", err)
		}
		harnessOpts = append(harnessOpts, harness.WithAudioSample(audio))
	}

	session := overview.New()
	ctx = session.ToContext(ctx)
	session.StartExecution()
	reports, err := harness.New(d, harnessOpts...).Run(ctx, feature, providers...)
	session.EndExecution()

	if werr := writeResults(out, opts.output, reports, session.Summary()); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}

// newDispatcher registers every adapter against one shared tool registry
// holding the calculator and webfetch tools.
func newDispatcher(cfg *config.Config, observer observability.Provider) *dispatch.Dispatcher {
	registry := tool.NewRegistry()
	registry.Add(calculator.NewCalculatorTool(), webfetch.NewWebFetchTool())

	d := dispatch.New(registry, cfg.Calculator(),
		dispatch.WithObserver(observer),
		dispatch.WithConfig(cfg),
	)
	env := d.Env()
	d.Register(
		openai.New(env),
		anthropic.New(env),
		gemini.New(env),
		stability.New(env),
		runway.New(env),
		elevenlabs.New(env),
	)
	return d
}

func printReports(out io.Writer, reports []harness.Report) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tMODEL\tFEATURE\tRESULT\tCOST")
	for _, r := range reports {
		result := r.File
		if r.Err != nil {
			result = "error: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Provider, r.Model, r.Feature, result, r.Cost)
	}
	_ = w.Flush()
}

func printSummary(out io.Writer, summary overview.Summary) {
	fmt.Fprintf(out, "\n%d calls, %d failed, %d unpriced, %d tokens, total %s in %s\n",
		summary.Calls, summary.Failures, summary.Unpriced,
		summary.TotalUsage.TotalTokens, summary.TotalCost, summary.Duration.Round(time.Millisecond))
}
