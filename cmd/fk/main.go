// fk synchronizes OmniFocus projects to a hosted kanban board.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "fk",
	Short: "Sync OmniFocus projects to a kanban board",
	Long: `FocusKan mirrors OmniFocus projects onto a hosted kanban board.

Projects become stories, project actions become story checklist items,
and project status and board phase flow in both directions: start a
project locally and its card moves into work; drag a card to Done and
the project completes locally.

OmniFocus stays the source of truth for content. Every run rescans both
sides from scratch, so there is no sync state to corrupt: delete a card
and the next run recreates it.

Configuration is read from flags, FK_* environment variables, and
~/.config/focuskan/config.yaml, in that order of precedence.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("board", "", "Board name to sync to")
	flags.Int("board-id", 0, "Board id (skips the name lookup)")
	flags.String("api-key", "", "Board service API key")
	flags.String("api-key-file", "", "File containing the API key")
	flags.String("base-url", "", "Board service base URL")
	flags.Bool("insecure", false, "Skip TLS certificate verification")
	flags.String("source", "app", "Project source: app (live OmniFocus) or cache (its database)")
	flags.String("cache", "", "Path to the OmniFocus cache database")
	flags.String("rules", "", "Path to the YAML rules file")
	flags.String("owner", "", "Board username assigned to new stories")
	flags.String("due-soon", "", `Flag checklist items due within this window (e.g. "72h" or "in 3 days")`)

	for _, name := range []string{
		"board", "board-id", "api-key", "api-key-file", "base-url",
		"insecure", "source", "cache", "rules", "owner", "due-soon",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "focuskan"))
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("FK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
		}
	}
}
