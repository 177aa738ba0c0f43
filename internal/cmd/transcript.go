package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/storage/sqlite"
	"github.com/yegors/readback-check/internal/transcript"
)

// NewTranscriptCommand creates the 'readback transcript' command
func NewTranscriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript <file|->",
		Short: "Analyze every exchange of a speaker-labelled transcript",
		Long: `Read "ATC:" and "PILOT:" prefixed lines, pair each controller line with
the reply that follows it and analyze every pair. With --session the
exchanges are recorded in the configured store and each one is analyzed
against the session's recent history.`,
		Args: cobra.ExactArgs(1),
		RunE: runTranscript,
	}

	cmd.Flags().StringP("mode", "m", "", "analysis mode: basic, departure, approach or auto")
	cmd.Flags().String("session", "", "record the exchanges under this session ID")
	cmd.Flags().Bool("json", false, "print results as JSON")

	return cmd
}

func runTranscript(cmd *cobra.Command, args []string) error {
	cfg, log, a, err := setup(cmd)
	if err != nil {
		return err
	}

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := analyzer.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	if modeFlag == "" {
		mode = ""
	}
	sessionID, _ := cmd.Flags().GetString("session")
	asJSON, _ := cmd.Flags().GetBool("json")

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open transcript: %w", err)
		}
		defer f.Close()
		in = f
	}
	lines, err := transcript.Parse(in)
	if err != nil {
		return err
	}

	var store transcript.HistoryStore
	if sessionID != "" && cfg.Storage.Path != "" {
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		s, err := sqlite.NewExchangeStorage(db, log)
		if err != nil {
			return err
		}
		store = s
	}

	results, err := transcript.NewProcessor(a, store, cfg.Storage.HistoryWindow, log).
		Process(cmd.Context(), sessionID, lines, mode)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	bold := color.New(color.Bold)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		bold.Fprintf(out, "#%d (lines %d-%d)", i+1, r.Exchange.Instruction.Number, r.Exchange.Readback.Number)
		if r.Exchange.Callsign != "" {
			fmt.Fprintf(out, " %s", r.Exchange.Callsign)
		}
		fmt.Fprintf(out, "\n  ATC:   %s\n  Reply: %s\n", r.Exchange.Instruction.Text, r.Exchange.Readback.Text)
		printAnalysis(out, r.Analysis)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No ATC/pilot exchanges found")
	}
	return nil
}
