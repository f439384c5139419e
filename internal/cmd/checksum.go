package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum",
	Short: "Record and verify checkpoint artifact checksums",
	Long: `Checksum fingerprints checkpoint artifacts (a rubric, a
gradebook) across runs so operators can detect that an input changed
since the last checkpoint. Drift is advisory: verify reports both
digests but never blocks a run.`,
}

var (
	checksumFile  string
	checksumLabel string
)

func init() {
	rootCmd.AddCommand(checksumCmd)
	checksumCmd.PersistentFlags().StringVar(&stateRunDir, "run-dir", ".", "Assignment run directory")
	checksumCmd.PersistentFlags().StringVar(&checksumLabel, "label", "", "Checksum label (required)")

	checksumRecordCmd.Flags().StringVar(&checksumFile, "file", "", "File to fingerprint (required)")
	_ = checksumRecordCmd.MarkFlagRequired("file")
	checksumCmd.AddCommand(checksumRecordCmd)
	checksumCmd.AddCommand(checksumVerifyCmd)
}

var checksumRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a file's checksum under a label",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checksumLabel == "" {
			return fmt.Errorf("--label is required")
		}
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		if err := store.Record(checksumFile, checksumLabel); err != nil {
			return err
		}
		rec, ok := store.State().Checksums[checksumLabel]
		if !ok {
			return fmt.Errorf("checksum could not be computed for %s", checksumFile)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", rec.Checksum, rec.Path)
		return nil
	},
}

var checksumVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare a recorded checksum against the file's current content",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checksumLabel == "" {
			return fmt.Errorf("--label is required")
		}
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		v, ok := store.Verify(checksumLabel)
		if !ok {
			return fmt.Errorf("no checksum recorded for label %q", checksumLabel)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Label: %s\n", v.Label)
		fmt.Fprintf(out, "Path: %s\n", v.Path)
		fmt.Fprintf(out, "Recorded: %s (%s)\n", v.Stored, v.Recorded.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Current:  %s\n", v.Current)
		if v.Match {
			fmt.Fprintln(out, "Match: yes")
			return nil
		}
		fmt.Fprintln(out, "Match: NO - artifact changed since checkpoint")
		return nil
	},
}
