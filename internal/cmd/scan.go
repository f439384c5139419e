package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gradeflow/gradeflow/internal/classify"
	"github.com/gradeflow/gradeflow/internal/config"
	"github.com/gradeflow/gradeflow/internal/logging"
	"github.com/gradeflow/gradeflow/internal/report"
	"github.com/gradeflow/gradeflow/internal/scan"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan captured task output and report failures",
	Long: `Scan walks the task output directories left by a batch run,
classifies each task's captured stdout/stderr, cross-references the
submissions manifest for missing outputs, and prints a consolidated
error report.

The exit code is the resume contract: zero means no failures and no
missing outputs; non-zero means a re-run has work to retry.

Examples:
  # Scan marker logs after a batch
  gradeflow scan --logs-dir processed/logs/marker_logs --stage marker

  # Include the silent-failure audit
  gradeflow scan --logs-dir processed/logs/marker_logs --stage marker \
    --manifest submissions_manifest.json --final-dir processed/final

  # Write a JSON report alongside the text one
  gradeflow scan --logs-dir processed/logs/marker_logs --stage marker --json`,
	RunE: runScan,
}

var (
	scanLogsDir  string
	scanStage    string
	scanManifest string
	scanFinalDir string
	scanOutput   string
	scanJSON     bool
	scanQuiet    bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanLogsDir, "logs-dir", "", "Directory containing task logs (required)")
	scanCmd.Flags().StringVar(&scanStage, "stage", "", "Stage name, e.g. 'marker' or 'unifier' (required)")
	scanCmd.Flags().StringVar(&scanManifest, "manifest", "", "Path to submissions manifest (enables missing-output audit)")
	scanCmd.Flags().StringVar(&scanFinalDir, "final-dir", "", "Directory where final outputs should be")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "Path to save the text report (default: <logs-dir>/error_summary.txt)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Also write a JSON report next to the text one")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "Only print the report when issues exist")

	_ = scanCmd.MarkFlagRequired("logs-dir")
	_ = scanCmd.MarkFlagRequired("stage")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := os.Stat(scanLogsDir); err != nil {
		return fmt.Errorf("logs directory not found: %s", scanLogsDir)
	}

	logger, err := logging.NewLogger("", cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	vocab := classify.DefaultVocabulary().WithProviderPatterns(cfg.Patterns.Quota)
	classifier := classify.NewClassifier(cfg.Provider, vocab)
	scanner := scan.NewScanner(classifier, logger)

	failures := scanner.ScanTasks(scanLogsDir)

	manifestPath := firstNonEmpty(scanManifest, cfg.Paths.Manifest)
	finalDir := firstNonEmpty(scanFinalDir, cfg.Paths.FinalDir)

	var missing []scan.MissingOutput
	if manifestPath != "" && finalDir != "" {
		manifest, err := scan.LoadManifest(manifestPath)
		if err != nil {
			// A broken manifest degrades the audit, not the scan.
			logger.Warn("skipping missing-output audit", "error", err)
		} else {
			missing = scan.AuditMissing(manifest, finalDir)
		}
	}

	rep := report.New(scanStage, failures, missing)
	text := rep.Render()

	outputPath := scanOutput
	if outputPath == "" {
		outputPath = filepath.Join(scanLogsDir, "error_summary.txt")
	}
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		logger.Warn("could not save report", "path", outputPath, "error", err)
	}

	if !scanQuiet || rep.HasIssues() {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	if scanJSON {
		jsonPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".json"
		data, err := rep.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return fmt.Errorf("failed to save JSON report: %w", err)
		}
		if !scanQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nJSON report saved to: %s\n", jsonPath)
		}
	}

	if rep.HasIssues() {
		return fmt.Errorf("%d failure(s) and %d missing output(s) detected", len(failures), len(missing))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
