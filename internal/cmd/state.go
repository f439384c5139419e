package cmd

import (
	"fmt"

	"github.com/gradeflow/gradeflow/internal/config"
	"github.com/gradeflow/gradeflow/internal/logging"
	"github.com/gradeflow/gradeflow/internal/runstate"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and update resume state for a run directory",
	Long: `State manages the per-run completion record. Dispatchers mark
work units complete as workers finish and query completion before
re-dispatching on resume. Completion is monotonic: reset is the only way
to un-mark anything.`,
}

var (
	stateRunDir   string
	stateStudent  string
	stateActivity string
	stateStage    string
)

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.PersistentFlags().StringVar(&stateRunDir, "run-dir", ".", "Assignment run directory")

	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)

	stateDoneCmd.Flags().StringVar(&stateStudent, "student", "", "Student name")
	stateDoneCmd.Flags().StringVar(&stateActivity, "activity", "", "Activity ID (omit for free-form assignments)")
	stateCmd.AddCommand(stateDoneCmd)

	stateMarkCmd.Flags().StringVar(&stateStudent, "student", "", "Student name to mark complete")
	stateMarkCmd.Flags().StringVar(&stateActivity, "activity", "", "Activity ID (alone: marks the activity complete)")
	stateMarkCmd.Flags().StringVar(&stateStage, "stage", "", "Pipeline stage to mark complete")
	stateCmd.AddCommand(stateMarkCmd)
}

func openStore() (*runstate.Store, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.NewLogger("", cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	store, err := runstate.Open(stateRunDir, logger)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return store, logger, nil
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the run's completion summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		st := store.State()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "State file: %s\n", store.Path())
		fmt.Fprintf(out, "Started: %s\n", st.StartedAt.Format("2006-01-02 15:04:05"))
		if !st.UpdatedAt.IsZero() {
			fmt.Fprintf(out, "Updated: %s\n", st.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		if st.LastStage != "" {
			fmt.Fprintf(out, "Last stage: %s\n", st.LastStage)
		}
		fmt.Fprintf(out, "Completed activities: %d\n", len(st.CompletedActivities))
		fmt.Fprintf(out, "Completed students: %d\n", len(st.CompletedStudents))
		if len(st.Checksums) > 0 {
			fmt.Fprintf(out, "Checkpoint artifacts:\n")
			for label, rec := range st.Checksums {
				fmt.Fprintf(out, "  %s: %s (%s)\n", label, rec.Checksum[:12], rec.Path)
			}
		}
		return nil
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the run's state file (full reset)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		if err := store.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "State reset: %s\n", store.Path())
		return nil
	},
}

var stateDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Query whether a work unit is complete",
	Long: `Done exits 0 when the unit is marked complete and 1 when it is
not, so dispatcher scripts can skip completed work:

  gradeflow state done --student 'Ada Lovelace' --activity A1 && continue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		switch {
		case stateStudent != "":
			if store.IsStudentComplete(stateStudent, stateActivity) {
				fmt.Fprintln(cmd.OutOrStdout(), "complete")
				return nil
			}
			return fmt.Errorf("not complete")
		case stateActivity != "":
			if store.IsActivityComplete(stateActivity) {
				fmt.Fprintln(cmd.OutOrStdout(), "complete")
				return nil
			}
			return fmt.Errorf("not complete")
		default:
			return fmt.Errorf("either --student or --activity is required")
		}
	},
}

var stateMarkCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark a work unit, activity, or stage complete",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		switch {
		case stateStudent != "":
			return store.MarkStudentComplete(stateStudent, stateActivity)
		case stateActivity != "":
			return store.MarkActivityComplete(stateActivity)
		case stateStage != "":
			return store.MarkStageComplete(stateStage)
		default:
			return fmt.Errorf("one of --student, --activity, or --stage is required")
		}
	},
}
