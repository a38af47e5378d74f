package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/focuskan/focuskan/internal/daemon"
	"github.com/focuskan/focuskan/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent watch-mode sync runs",
	Long: `Print the most recent runs from the watch-mode journal.

Watch mode appends every run's report to
~/.config/focuskan/history.jsonl; this reads it back, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")

		entries, err := daemon.NewHistory(historyPath()).Recent(n)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No recorded runs. Start one with: fk watch")
			return nil
		}

		for _, entry := range entries {
			report := entry.Report
			status := ui.RenderPass("✓")
			if len(report.Failures) > 0 {
				status = ui.RenderError("✗")
			}
			fmt.Printf("%s %s  %d matched, %d new, %d orphaned, %d writes",
				status, entry.At.Local().Format(time.DateTime),
				report.Matched, report.New, report.Orphaned, report.Writes())
			if len(report.Failures) > 0 {
				fmt.Printf(", %d failed", len(report.Failures))
			}
			fmt.Printf("  %s\n", ui.RenderDim(report.Duration.Round(time.Millisecond).String()))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("count", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
