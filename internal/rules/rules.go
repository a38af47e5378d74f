// Package rules loads the YAML rules document that tunes a sync run:
// which projects are selected and which card color each project gets.
// The document compiles into the predicate and color hooks the sync
// package accepts, so library users can skip it entirely and supply
// plain Go functions instead.
package rules

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
	"github.com/focuskan/focuskan/internal/sync"
)

// Document is the root of the rules file.
type Document struct {
	// Skip controls which projects stay out of the sync.
	Skip Skip `yaml:"skip"`

	// Colors is an ordered rule list; the first matching rule wins.
	Colors []ColorRule `yaml:"colors"`

	// DefaultColor is used when no color rule matches. Empty means the
	// sync package default.
	DefaultColor string `yaml:"default_color"`
}

// Skip lists the exclusion switches. The zero value of each pointer
// field means "use the default", which is to skip.
type Skip struct {
	// Dropped skips dropped projects (default true).
	Dropped *bool `yaml:"dropped"`

	// SingleActionLists skips single-action buckets (default true).
	SingleActionLists *bool `yaml:"single_action_lists"`

	// NotStarted skips projects whose start date is in the future
	// (default true).
	NotStarted *bool `yaml:"not_started"`

	// Folders skips projects whose folder path starts with any of
	// these prefixes. Matching is case-sensitive.
	Folders []string `yaml:"folders"`
}

// ColorRule assigns a card color to projects matching a context or
// folder prefix. A rule with both prefixes empty matches everything.
type ColorRule struct {
	Context string `yaml:"context"`
	Folder  string `yaml:"folder"`
	Color   string `yaml:"color"`
}

func (r ColorRule) matches(p *local.Project) bool {
	if r.Context != "" && !strings.HasPrefix(p.Context, r.Context) {
		return false
	}
	if r.Folder != "" && !strings.HasPrefix(p.FolderPath, r.Folder) {
		return false
	}
	return true
}

// Load reads and validates a rules file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a rules document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Default returns the document equivalent to having no rules file.
func Default() *Document {
	return &Document{}
}

// Validate checks every color against the board palette so a typo
// fails at load time instead of silently falling back during a run.
func (d *Document) Validate() error {
	for i, rule := range d.Colors {
		if !board.ValidColor(rule.Color) {
			return fmt.Errorf("color rule %d: %q is not a board color (valid: %s)",
				i, rule.Color, strings.Join(board.Colors, ", "))
		}
	}
	if d.DefaultColor != "" && !board.ValidColor(d.DefaultColor) {
		return fmt.Errorf("default_color %q is not a board color", d.DefaultColor)
	}
	return nil
}

func skip(field *bool) bool {
	return field == nil || *field
}

// Selector compiles the skip rules into a selection predicate.
func (d *Document) Selector(now func() time.Time) sync.SelectFunc {
	if now == nil {
		now = time.Now
	}
	return func(p *local.Project) bool {
		if skip(d.Skip.Dropped) && p.Status == local.StatusDropped {
			return false
		}
		if skip(d.Skip.SingleActionLists) && p.SingleActionList {
			return false
		}
		if skip(d.Skip.NotStarted) && p.StartDate != nil && p.StartDate.After(now()) {
			return false
		}
		for _, prefix := range d.Skip.Folders {
			if strings.HasPrefix(p.FolderPath, prefix) {
				return false
			}
		}
		return true
	}
}

// ColorFunc compiles the color rules. The first matching rule wins;
// with no match the document default (or the sync package default)
// applies.
func (d *Document) ColorFunc() sync.ColorFunc {
	return func(p *local.Project) string {
		for _, rule := range d.Colors {
			if rule.matches(p) {
				return rule.Color
			}
		}
		if d.DefaultColor != "" {
			return d.DefaultColor
		}
		return sync.DefaultColor
	}
}
