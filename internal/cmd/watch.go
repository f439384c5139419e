package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gradeflow/gradeflow/internal/config"
	"github.com/gradeflow/gradeflow/internal/progress"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a batch live as task output directories appear",
	Long: `Watch renders a live progress bar while an external dispatcher
runs a batch, counting task output directories as they are created.
Purely presentational; quitting never affects the run.

Examples:
  gradeflow watch --logs-dir processed/logs/marker_logs --total 224`,
	RunE: runWatch,
}

var (
	watchLogsDir string
	watchTotal   int
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchLogsDir, "logs-dir", "", "Task output root to watch (required)")
	watchCmd.Flags().IntVar(&watchTotal, "total", 0, "Expected number of tasks (0 = watch until quit)")
	_ = watchCmd.MarkFlagRequired("logs-dir")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := os.Stat(watchLogsDir); err != nil {
		return fmt.Errorf("logs directory not found: %s", watchLogsDir)
	}

	model, err := progress.NewWatchModel(watchLogsDir, watchTotal, cfg.Progress.BarWidth)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	if m, ok := final.(*progress.WatchModel); ok {
		if m.Err() != nil {
			return m.Err()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Observed %d task(s)\n", m.Count())
	}
	return nil
}
