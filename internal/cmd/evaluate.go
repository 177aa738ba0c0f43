package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yegors/readback-check/internal/evaluation"
)

// NewEvaluateCommand creates the 'readback evaluate' command
func NewEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the analyzer over a reference corpus",
		Long: `Analyze every exchange of a YAML corpus and report correct readbacks,
phase detection accuracy, departure and approach error rates, average
multi-part completeness and the number of critical findings. Without
--corpus the built-in reference corpus is used.`,
		Args: cobra.NoArgs,
		RunE: runEvaluate,
	}

	cmd.Flags().String("corpus", "", "path to a YAML corpus")
	cmd.Flags().Int("workers", 0, "parallel workers (default analysis.evaluation_workers)")
	cmd.Flags().Bool("json", false, "print the report as JSON")
	cmd.Flags().Bool("verbose", false, "include per-exchange results")

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, log, a, err := setup(cmd)
	if err != nil {
		return err
	}

	corpus, err := loadCorpus(cmd)
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.Analysis.EvaluationWorkers
	}
	report, err := evaluation.NewEvaluator(a, workers, log).Evaluate(cmd.Context(), corpus.Exchanges)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		report.Results = nil
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, corpus.Name, report)
	return nil
}

// loadCorpus reads --corpus or returns the embedded reference corpus
func loadCorpus(cmd *cobra.Command) (*evaluation.Corpus, error) {
	path, _ := cmd.Flags().GetString("corpus")
	if path == "" {
		return evaluation.DefaultCorpus()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("corpus not found: %s", path)
	}
	return evaluation.LoadCorpus(path)
}
