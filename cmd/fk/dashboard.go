package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/focuskan/focuskan/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Start the WebSocket dashboard server",
	Long: `Start a WebSocket server that streams sync run reports.

WebSocket messages include:
- run_report: one completed sync run's counters and failures
- stats: cumulative totals since the server started

This standalone form serves connections only; reports arrive when a
watch-mode process runs with --serve-dashboard instead, which embeds
the same server. Use the standalone form to check connectivity.

Example usage:
  fk dashboard                       # Listen on :8385
  fk dashboard --addr 127.0.0.1:9000

Connect with a WebSocket client:
  ws://localhost:8385/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		server := dashboard.NewServer(&dashboard.Config{
			Addr:   addr,
			Logger: log.New(os.Stderr, "[dashboard] ", log.LstdFlags),
		})
		dashboard.NewHandler(server, nil)

		if err := server.Start(); err != nil {
			return err
		}

		fmt.Printf("Dashboard started on http://%s\n", server.Addr())
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", server.Addr())
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down...")
		return server.Stop()
	},
}

func init() {
	dashboardCmd.Flags().String("addr", ":8385", "Listen address")
	if err := viper.BindPFlag("addr", dashboardCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(dashboardCmd)
}
