package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/focuskan/focuskan/internal/ui"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the boards visible to your API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "[board] ", log.LstdFlags)

		client, err := newBoardClient(logger)
		if err != nil {
			return err
		}
		boards, err := client.Boards(cmd.Context(), "")
		if err != nil {
			return err
		}
		if len(boards) == 0 {
			fmt.Println("No boards.")
			return nil
		}
		for _, b := range boards {
			fmt.Printf("  %4d  %s", b.ID, ui.RenderAccent(b.Name))
			if b.Description != "" {
				fmt.Printf("  %s", ui.RenderDim(b.Description))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardsCmd)
}
