// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// RenderMode selects which renderer backend the controller drives.
type RenderMode string

const (
	RenderModeCanvas RenderMode = "canvas"
	RenderModeDOM    RenderMode = "dom"
)

// EditMode selects how cell writes are applied; see internal/command.
type EditMode string

const (
	EditModeDirect   EditMode = "direct"
	EditModeCommit   EditMode = "commit"
	EditModeReadonly EditMode = "readonly"
)

// LockMode selects whether row-level advisory locks are honored.
type LockMode string

const (
	LockModeNone LockMode = "none"
	LockModeRow  LockMode = "row"
)

// Config is the top-level application configuration, loaded from a TOML file.
type Config struct {
	Render Render `toml:"render"`
	Height Height `toml:"height"`
	Derive Derive `toml:"derive"`
	Demo   Demo   `toml:"demo"`
}

// Render holds defaults for the controller's renderer and edit modes.
type Render struct {
	// Mode selects the default renderer backend. Default: canvas.
	Mode RenderMode `toml:"mode"`

	// EditMode selects the default edit mode. Default: direct.
	EditMode EditMode `toml:"edit_mode"`

	// LockMode selects the default lock mode. Default: none.
	LockMode LockMode `toml:"lock_mode"`

	// UndoHistoryCap bounds the applied-command stack (spec.md §4.4).
	// Default: 200.
	UndoHistoryCap int `toml:"undo_history_cap"`
}

// Height holds tuning for the wrap-text measurement scheduler (spec.md §4.3).
type Height struct {
	// ChunkRows is the number of rows measured per scheduler tick.
	// Default: 500.
	ChunkRows int `toml:"chunk_rows"`

	// TickBudget is the wall-clock budget per scheduler tick. Accepts
	// unitized duration strings or bare integers (seconds). Default: 8ms.
	TickBudget *Duration `toml:"tick_budget,omitempty"`

	// DefaultRowHeight is used for unmeasured rows before their first
	// measurement pass completes. Default: 1 (single text line).
	DefaultRowHeight int `toml:"default_row_height"`
}

// TickBudgetDuration returns the resolved per-tick measurement budget.
func (h Height) TickBudgetDuration() time.Duration {
	if h.TickBudget != nil {
		return h.TickBudget.Duration
	}
	return DefaultTickBudget
}

// Derive holds tuning for the derivation-pipeline cache (spec.md §4.2).
type Derive struct {
	// CacheSize bounds the ristretto-backed derivation cache. Accepts
	// unitized strings ("8 MiB") or bare integers (bytes). Default: 8 MiB.
	CacheSize ByteSize `toml:"cache_size"`
}

// Demo holds defaults for the sample-data generator (internal/demo).
type Demo struct {
	// Rows is the default number of rows to generate for a --demo dataset.
	Rows int `toml:"rows"`

	// Seed is decoded from the config file but nothing reads it: both
	// entry points build their demo generator with a fixed seed of 1.
	Seed int64 `toml:"seed"`
}

const (
	DefaultChunkRows     = 500
	DefaultTickBudget    = 8 * time.Millisecond
	DefaultRowHeight     = 1
	DefaultUndoHistoryCap = 200
	DefaultCacheSize      = ByteSize(8 << 20) // 8 MiB
	DefaultDemoRows       = 200
	configRelPath         = "tabulon/config.toml"
)

// defaults returns a Config with all default values populated.
func defaults() Config {
	return Config{
		Render: Render{
			Mode:           RenderModeCanvas,
			EditMode:       EditModeDirect,
			LockMode:       LockModeNone,
			UndoHistoryCap: DefaultUndoHistoryCap,
		},
		Height: Height{
			ChunkRows:        DefaultChunkRows,
			DefaultRowHeight: DefaultRowHeight,
		},
		Derive: Derive{
			CacheSize: DefaultCacheSize,
		},
		Demo: Demo{
			Rows: DefaultDemoRows,
		},
	}
}

// Path returns the expected config file path (XDG_CONFIG_HOME/tabulon/config.toml).
func Path() string {
	return filepath.Join(xdg.ConfigHome, configRelPath)
}

// Load reads the TOML config file from the default path if it exists, falls
// back to defaults for any unset fields, and applies environment variable
// overrides last.
func Load() (Config, error) {
	return LoadFromPath(Path())
}

// LoadFromPath reads the TOML config file at the given path if it exists,
// falls back to defaults for any unset fields, and applies environment
// variable overrides last.
func LoadFromPath(path string) (Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	switch cfg.Render.Mode {
	case RenderModeCanvas, RenderModeDOM:
	default:
		return cfg, fmt.Errorf("render.mode: unknown mode %q", cfg.Render.Mode)
	}
	switch cfg.Render.EditMode {
	case EditModeDirect, EditModeCommit, EditModeReadonly:
	default:
		return cfg, fmt.Errorf("render.edit_mode: unknown mode %q", cfg.Render.EditMode)
	}
	switch cfg.Render.LockMode {
	case LockModeNone, LockModeRow:
	default:
		return cfg, fmt.Errorf("render.lock_mode: unknown mode %q", cfg.Render.LockMode)
	}

	if cfg.Render.UndoHistoryCap <= 0 {
		return cfg, fmt.Errorf(
			"render.undo_history_cap must be positive, got %d", cfg.Render.UndoHistoryCap,
		)
	}
	if cfg.Height.ChunkRows <= 0 {
		return cfg, fmt.Errorf(
			"height.chunk_rows must be positive, got %d", cfg.Height.ChunkRows,
		)
	}
	if cfg.Height.TickBudgetDuration() <= 0 {
		return cfg, fmt.Errorf("height.tick_budget must be positive")
	}
	if cfg.Derive.CacheSize <= 0 {
		return cfg, fmt.Errorf(
			"derive.cache_size must be positive, got %d", cfg.Derive.CacheSize,
		)
	}

	return cfg, nil
}

// applyEnvOverrides lets environment variables override config-file values.
func applyEnvOverrides(cfg *Config) {
	if mode := os.Getenv("TABULON_RENDER_MODE"); mode != "" {
		cfg.Render.Mode = RenderMode(mode)
	}
	if mode := os.Getenv("TABULON_EDIT_MODE"); mode != "" {
		cfg.Render.EditMode = EditMode(mode)
	}
	if mode := os.Getenv("TABULON_LOCK_MODE"); mode != "" {
		cfg.Render.LockMode = LockMode(mode)
	}
	if n := os.Getenv("TABULON_UNDO_HISTORY_CAP"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.Render.UndoHistoryCap = v
		}
	}
	if size := os.Getenv("TABULON_CACHE_SIZE"); size != "" {
		if parsed, err := ParseByteSize(size); err == nil {
			cfg.Derive.CacheSize = parsed
		}
	}
	if budget := os.Getenv("TABULON_TICK_BUDGET"); budget != "" {
		if parsed, err := ParseDuration(budget); err == nil {
			d := Duration{parsed}
			cfg.Height.TickBudget = &d
		}
	}
	if rows := os.Getenv("TABULON_DEMO_ROWS"); rows != "" {
		if v, err := strconv.Atoi(rows); err == nil {
			cfg.Demo.Rows = v
		}
	}
}

// ExampleTOML returns a commented config file suitable for writing as a
// starter config. Not written automatically -- offered to the user on demand.
func ExampleTOML() string {
	return `# tabulon configuration
# Place this file at: ` + Path() + `

[render]
# Default renderer backend: "canvas" (immediate-mode) or "dom" (retained-mode).
mode = "canvas"

# Default edit mode: "direct", "commit", or "readonly".
edit_mode = "direct"

# Default lock mode: "none" or "row".
lock_mode = "none"

# Bounded applied-command history; oldest commands drop their undo once exceeded.
undo_history_cap = ` + strconv.Itoa(DefaultUndoHistoryCap) + `

[height]
# Rows measured per wrap-text scheduler tick.
chunk_rows = ` + strconv.Itoa(DefaultChunkRows) + `

# Wall-clock budget per scheduler tick. Go duration syntax, e.g. "8ms".
# tick_budget = "8ms"

[derive]
# Bounds the per-(row,col,version) derivation cache. Accepts unitized
# strings ("8 MiB") or bare integers (bytes).
cache_size = "8 MiB"

[demo]
# Default row count for --demo datasets.
rows = ` + strconv.Itoa(DefaultDemoRows) + `
`
}
