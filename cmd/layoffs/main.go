// Command layoffs cleans a raw layoffs CSV extract into a canonical table and
// prints read-only reports over the cleaned set.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"layoffs/internal/config"

	// register all backends with the storage factory.
	_ "layoffs/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "layoffs",
		Short:         "Clean a layoffs CSV extract and report on it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.config, "config", "", "pipeline config (.json, .yaml); empty uses the built-in pipeline")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logs")

	root.AddCommand(newRunCmd(g), newValidateCmd(g), newReportCmd(g))
	return root
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		reportFmt      string
		metricsBackend string
		pushgatewayURL string
		batchSize      int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write the canonical table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(g.config)
			if err != nil {
				return err
			}

			// Flags win over env and file values.
			f := cmd.Flags()
			if f.Changed("report") {
				p.Report.Enabled = reportFmt != "none"
				if p.Report.Enabled {
					p.Report.Format = reportFmt
				}
			}
			if f.Changed("metrics-backend") {
				p.Runtime.MetricsBackend = metricsBackend
			}
			if f.Changed("pushgateway-url") {
				p.Runtime.PushgatewayURL = pushgatewayURL
			}
			if f.Changed("batch-size") {
				p.Runtime.BatchSize = batchSize
			}

			if err := checkPipeline(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			return runPipeline(cmd.Context(), p, cmd.OutOrStdout(), g.verbose)
		},
	}
	cmd.Flags().StringVar(&reportFmt, "report", "text", "report format after the run: text, json or none")
	cmd.Flags().StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend: pushgateway, datadog or none")
	cmd.Flags().StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per storage write")
	return cmd
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Lint the pipeline configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(g.config)
			if err != nil {
				return err
			}
			if err := checkPipeline(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			log.Printf("config: valid path=%q", g.config)
			return nil
		},
	}
}

func newReportCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		top    int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Clean the extract in memory and print reports without touching storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(g.config)
			if err != nil {
				return err
			}
			p.Report.Enabled = true
			if cmd.Flags().Changed("format") {
				p.Report.Format = format
			}
			if cmd.Flags().Changed("top") {
				p.Report.TopN = top
			}
			if err := checkPipeline(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			return reportOnly(cmd.Context(), p, cmd.OutOrStdout(), g.verbose)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "report format: text or json")
	cmd.Flags().IntVar(&top, "top", 5, "ranks kept per year in the top-companies report")
	return cmd
}

// loadPipeline reads the pipeline file, or the built-in pipeline when path is
// empty, and applies environment overrides.
func loadPipeline(path string) (config.Pipeline, error) {
	p := config.Default()
	if path != "" {
		var err error
		if p, err = config.Load(path); err != nil {
			return config.Pipeline{}, err
		}
	}
	if err := config.ApplyEnv(&p); err != nil {
		return config.Pipeline{}, err
	}
	return p, nil
}

// checkPipeline prints every config issue to w and fails on errors.
func checkPipeline(w io.Writer, p config.Pipeline) error {
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintln(w, iss.Error())
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}
	return nil
}
