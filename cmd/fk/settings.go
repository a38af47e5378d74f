package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/viper"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
	"github.com/focuskan/focuskan/internal/local/cache"
	"github.com/focuskan/focuskan/internal/local/omnifocus"
	"github.com/focuskan/focuskan/internal/rules"
	"github.com/focuskan/focuskan/internal/sync"
)

// apiKey resolves the board API key: flag/env value first, then the
// key file.
func apiKey() (string, error) {
	if key := viper.GetString("api-key"); key != "" {
		return key, nil
	}
	if path := viper.GetString("api-key-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read API key file: %w", err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("API key file %s is empty", path)
		}
		return key, nil
	}
	return "", errors.New("no API key: set --api-key, FK_API_KEY, or --api-key-file")
}

func newBoardClient(logger *log.Logger) (*board.Client, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	return board.NewClient(board.Config{
		BaseURL:            viper.GetString("base-url"),
		APIKey:             key,
		InsecureSkipVerify: viper.GetBool("insecure"),
		Logger:             logger,
	})
}

// resolveBoard returns the target board id, looking the board up by
// name unless --board-id was given.
func resolveBoard(ctx context.Context, client *board.Client) (int, error) {
	if id := viper.GetInt("board-id"); id != 0 {
		return id, nil
	}
	name := viper.GetString("board")
	if name == "" {
		return 0, errors.New("no board: set --board or --board-id")
	}
	b, err := client.BoardByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return b.ID, nil
}

// newStore opens the configured project source. The returned closer is
// a no-op for the live application bridge.
func newStore() (local.Store, func() error, error) {
	switch source := viper.GetString("source"); source {
	case "app", "":
		return omnifocus.New(), func() error { return nil }, nil
	case "cache":
		path := viper.GetString("cache")
		if path == "" {
			path = cache.DefaultPath()
		}
		store, err := cache.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (want app or cache)", source)
	}
}

func loadRules() (*rules.Document, error) {
	path := viper.GetString("rules")
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

// parseDueSoon accepts either a Go duration ("72h") or natural
// language ("in 3 days"). Empty disables the due-soon flag.
func parseDueSoon(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	now := time.Now()
	result, err := w.Parse(s, now)
	if err != nil {
		return 0, fmt.Errorf("failed to parse due-soon window %q: %w", s, err)
	}
	if result == nil {
		return 0, fmt.Errorf("due-soon window %q is not a duration or a date phrase", s)
	}
	d := result.Time.Sub(now)
	if d <= 0 {
		return 0, fmt.Errorf("due-soon window %q is in the past", s)
	}
	return d, nil
}

// buildSyncer wires store, client, rules, and formatter into a ready
// Syncer. The closer releases the store.
func buildSyncer(ctx context.Context, logger *log.Logger) (*sync.Syncer, func() error, error) {
	doc, err := loadRules()
	if err != nil {
		return nil, nil, err
	}
	dueSoon, err := parseDueSoon(viper.GetString("due-soon"))
	if err != nil {
		return nil, nil, err
	}

	client, err := newBoardClient(logger)
	if err != nil {
		return nil, nil, err
	}
	boardID, err := resolveBoard(ctx, client)
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := newStore()
	if err != nil {
		return nil, nil, err
	}

	syncer, err := sync.New(sync.Config{
		Local:   store,
		Board:   client,
		BoardID: boardID,
		Select:  doc.Selector(time.Now),
		Formatter: &sync.Formatter{
			Color:   doc.ColorFunc(),
			Owner:   viper.GetString("owner"),
			DueSoon: dueSoon,
		},
		Logger: logger,
	})
	if err != nil {
		closer()
		return nil, nil, err
	}
	return syncer, closer, nil
}
