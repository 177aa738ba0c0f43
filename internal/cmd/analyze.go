package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/internal/readback"
)

// NewAnalyzeCommand creates the 'readback analyze' command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <instruction> <readback>",
		Short: "Validate one readback against its instruction",
		Example: `  readback analyze "PAL123 climb and maintain flight level three five zero" \
    "climb flight level three five zero, PAL123" --callsign PAL123`,
		Args: cobra.ExactArgs(2),
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("callsign", "c", "", "expected aircraft callsign")
	cmd.Flags().StringP("mode", "m", "", "analysis mode: basic, departure, approach or auto")
	cmd.Flags().Bool("json", false, "print the full result as JSON")
	cmd.Flags().Bool("expected", false, "only print the expected readback")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, _, a, err := setup(cmd)
	if err != nil {
		return err
	}

	callsign, _ := cmd.Flags().GetString("callsign")
	modeFlag, _ := cmd.Flags().GetString("mode")
	asJSON, _ := cmd.Flags().GetBool("json")
	expectedOnly, _ := cmd.Flags().GetBool("expected")
	out := cmd.OutOrStdout()

	if expectedOnly {
		fmt.Fprintln(out, readback.ExpectedReadback(args[0], callsign))
		return nil
	}

	if cfg.Analysis.RequireCallsign && strings.TrimSpace(callsign) == "" {
		return fmt.Errorf("--callsign is required by the configuration")
	}
	mode, err := analyzer.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	if modeFlag == "" {
		mode = ""
	}

	res := a.Analyze(analyzer.Request{
		Instruction: args[0],
		Readback:    args[1],
		Callsign:    callsign,
		Mode:        mode,
	})

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printAnalysis(out, res)
	return nil
}
