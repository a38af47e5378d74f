package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/focuskan/focuskan/internal/sync"
	"github.com/focuskan/focuskan/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync between OmniFocus and the board",
	Long: `Run one full reconciliation pass.

The run:
  1. Reads the board's phase track and all stories
  2. Snapshots OmniFocus projects and actions
  3. Matches stories to projects by the embedded identifier
  4. Applies board phases to local status, then local content and
     status to the board

Example usage:
  fk sync --board "Personal" --api-key-file ~/.focuskan-key
  FK_BOARD=Personal FK_API_KEY=... fk sync --due-soon "in 3 days"

Running sync twice in a row performs no writes the second time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "[sync] ", log.LstdFlags)

		syncer, closer, err := buildSyncer(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closer()

		report, err := syncer.Run(cmd.Context())
		if err != nil {
			return err
		}
		printReport(report)
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d projects failed to sync", len(report.Failures))
		}
		return nil
	},
}

func printReport(report *sync.Report) {
	fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"),
		report.Duration.Round(time.Millisecond))
	fmt.Printf("   Matched: %d   New: %d   Orphaned: %d   Retained: %d\n",
		report.Matched, report.New, report.Orphaned, report.Retained)
	fmt.Printf("   Stories: +%d ~%d -%d   Phase moves: %d\n",
		report.StoriesCreated, report.StoriesUpdated, report.StoriesDeleted, report.PhaseMoves)
	fmt.Printf("   Checklist: +%d ~%d -%d   Reorders: %d\n",
		report.TasksCreated, report.TasksUpdated, report.TasksDeleted, report.TasksReordered)
	fmt.Printf("   Local writes: %d\n", report.LocalStatusWrites+report.LocalTaskWrites)
	for _, failure := range report.Failures {
		fmt.Printf("   %s %v\n", ui.RenderWarn("⚠"), failure)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
