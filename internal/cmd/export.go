package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yegors/readback-check/internal/evaluation"
)

// NewExportCommand creates the 'readback export' command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a corpus as labelled JSONL training records",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().String("corpus", "", "path to a YAML corpus")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, a, err := setup(cmd)
	if err != nil {
		return err
	}

	corpus, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	report, err := evaluation.NewEvaluator(a, cfg.Analysis.EvaluationWorkers, log).Evaluate(cmd.Context(), corpus.Exchanges)
	if err != nil {
		return err
	}
	records := evaluation.TrainingRecords(report.Results)

	var w io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
		defer fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d records to %s\n", len(records), path)
	}

	return evaluation.WriteJSONL(w, records)
}
