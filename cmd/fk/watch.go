package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/focuskan/focuskan/internal/daemon"
	"github.com/focuskan/focuskan/internal/dashboard"
	"github.com/focuskan/focuskan/internal/local/cache"
	"github.com/focuskan/focuskan/internal/sync"
	"github.com/focuskan/focuskan/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync continuously while OmniFocus changes",
	Long: `Run sync whenever the OmniFocus database changes, and periodically
to pick up board-side edits.

Watch mode observes the OmniFocus cache database, debounces bursts of
writes into one run, and never runs two syncs at once.

Example usage:
  fk watch --board "Personal"
  fk watch --board "Personal" --interval 5m --serve-dashboard

With --log-file, runs are logged to a size-rotated file instead of
stderr. Every run is appended to the history journal (see "fk history").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "[daemon] ", log.LstdFlags)
		if path, _ := cmd.Flags().GetString("log-file"); path != "" {
			logger = daemon.RotatingLogger(path)
		}

		syncer, closer, err := buildSyncer(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closer()

		watchPath := viper.GetString("cache")
		if watchPath == "" {
			watchPath = cache.DefaultPath()
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		debounce, _ := cmd.Flags().GetDuration("debounce")
		config := &daemon.Config{
			ResyncInterval:   interval,
			DebounceInterval: debounce,
			Logger:           logger,
		}

		history := daemon.NewHistory(historyPath())
		var handler *dashboard.Handler
		if serve, _ := cmd.Flags().GetBool("serve-dashboard"); serve {
			server := dashboard.NewServer(&dashboard.Config{
				Addr:   viper.GetString("dashboard-addr"),
				Logger: logger,
			})
			if err := server.Start(); err != nil {
				return err
			}
			defer server.Stop()
			handler = dashboard.NewHandler(server, logger)
			fmt.Printf("%s Dashboard on ws://%s/ws\n", ui.RenderAccent("●"), server.Addr())
		}
		config.OnReport = func(report *sync.Report) {
			if err := history.Append(report); err != nil {
				logger.Printf("Failed to record run: %v", err)
			}
			if handler != nil {
				handler.OnReport(report)
			}
		}

		d, err := daemon.NewWithConfig(syncer, watchPath, config)
		if err != nil {
			return err
		}

		fmt.Printf("%s Watching %s\n", ui.RenderPass("✓"), watchPath)
		fmt.Println("Press Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return d.Start(ctx)
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 15*time.Minute, "Periodic resync interval")
	watchCmd.Flags().Duration("debounce", 2*time.Second, "Quiet period before a change triggers a run")
	watchCmd.Flags().String("log-file", "", "Log to a rotating file instead of stderr")
	watchCmd.Flags().Bool("serve-dashboard", false, "Also serve the WebSocket dashboard")
	watchCmd.Flags().String("dashboard-addr", ":8385", "Dashboard listen address")
	if err := viper.BindPFlag("dashboard-addr", watchCmd.Flags().Lookup("dashboard-addr")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(watchCmd)
}

// historyPath places the run journal next to the user config.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "focuskan-history.jsonl"
	}
	return filepath.Join(home, ".config", "focuskan", "history.jsonl")
}
