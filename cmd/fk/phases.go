package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/ui"
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Show the board's phase track as the syncer sees it",
	Long: `Print the board's phases and the roles sync assigns to them.

The first phase is Backlog, the second Ready, the second-to-last Done,
and the last Archive; everything in between counts as in progress.
Boards need at least five phases for this layout to exist.

Use this to check a board before pointing sync at it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "[board] ", log.LstdFlags)

		client, err := newBoardClient(logger)
		if err != nil {
			return err
		}
		boardID, err := resolveBoard(cmd.Context(), client)
		if err != nil {
			return err
		}

		phases, err := client.Phases(cmd.Context(), boardID)
		if err != nil {
			return err
		}
		track, err := board.NewTrack(phases)
		if err != nil {
			return err
		}

		fmt.Printf("Board %d: %d phases\n", boardID, len(track.Phases))
		for _, phase := range track.Phases {
			role := ""
			switch {
			case phase.ID == track.Backlog.ID:
				role = "backlog: new stories land here"
			case phase.ID == track.Ready.ID:
				role = "ready"
			case phase.ID == track.Done.ID:
				role = "done: completes the project locally"
			case track.IsArchive(&phase):
				role = "archive: never left"
			case track.InProgress(&phase):
				role = "in progress"
			}
			marker := " "
			if phase.ID == track.FirstInProgress().ID {
				marker = ui.RenderAccent("→")
				role += " (active projects move here)"
			}
			fmt.Printf(" %s %2d. %-20s %s\n", marker, phase.Index, phase.Name, ui.RenderDim(role))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(phasesCmd)
}
