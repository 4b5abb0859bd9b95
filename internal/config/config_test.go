// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultsApplied(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, RenderModeCanvas, cfg.Render.Mode)
	assert.Equal(t, EditModeDirect, cfg.Render.EditMode)
	assert.Equal(t, LockModeNone, cfg.Render.LockMode)
	assert.Equal(t, DefaultUndoHistoryCap, cfg.Render.UndoHistoryCap)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `[render]
mode = "dom"
edit_mode = "commit"
lock_mode = "row"
`)
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, RenderModeDOM, cfg.Render.Mode)
	assert.Equal(t, EditModeCommit, cfg.Render.EditMode)
	assert.Equal(t, LockModeRow, cfg.Render.LockMode)
}

func TestPartialConfigUsesDefaults(t *testing.T) {
	path := writeConfig(t, `[render]
edit_mode = "readonly"
`)
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, RenderModeCanvas, cfg.Render.Mode)
	assert.Equal(t, EditModeReadonly, cfg.Render.EditMode)
}

func TestEnvOverridesConfig(t *testing.T) {
	path := writeConfig(t, `[render]
mode = "canvas"
edit_mode = "direct"
`)
	t.Setenv("TABULON_RENDER_MODE", "dom")
	t.Setenv("TABULON_EDIT_MODE", "commit")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, RenderModeDOM, cfg.Render.Mode)
	assert.Equal(t, EditModeCommit, cfg.Render.EditMode)
}

func TestRejectsUnknownRenderMode(t *testing.T) {
	path := writeConfig(t, "[render]\nmode = \"holographic\"\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestExampleTOML(t *testing.T) {
	example := ExampleTOML()
	assert.Contains(t, example, "[render]")
	assert.Contains(t, example, "mode")
	assert.Contains(t, example, "[height]")
	assert.Contains(t, example, "[derive]")
}

func TestMalformedConfigReturnsError(t *testing.T) {
	path := writeConfig(t, "{{not toml")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestDefaultCacheSize(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheSize, cfg.Derive.CacheSize)
}

func TestCacheSizeFromFile(t *testing.T) {
	path := writeConfig(t, `[derive]
cache_size = 1048576
`)
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ByteSize(1048576), cfg.Derive.CacheSize)
}

func TestCacheSizeEnvOverride(t *testing.T) {
	t.Setenv("TABULON_CACHE_SIZE", "2097152")
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, ByteSize(2097152), cfg.Derive.CacheSize)
}

func TestCacheSizeRejectsInvalid(t *testing.T) {
	for _, val := range []string{"-1", "0"} {
		t.Run(val, func(t *testing.T) {
			path := writeConfig(t, "[derive]\ncache_size = "+val+"\n")
			_, err := LoadFromPath(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be positive")
		})
	}
}

func TestHeightTickBudget(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultTickBudget, cfg.Height.TickBudgetDuration())
	})

	t.Run("from file", func(t *testing.T) {
		path := writeConfig(t, "[height]\ntick_budget = \"10ms\"\n")
		cfg, err := LoadFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, cfg.Height.TickBudgetDuration())
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TABULON_TICK_BUDGET", "15ms")
		cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, 15*time.Millisecond, cfg.Height.TickBudgetDuration())
	})

	t.Run("rejects invalid", func(t *testing.T) {
		path := writeConfig(t, "[height]\ntick_budget = \"not-a-duration\"\n")
		_, err := LoadFromPath(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid duration")
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		path := writeConfig(t, "[height]\ntick_budget = \"-1s\"\n")
		_, err := LoadFromPath(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})
}

func TestUndoHistoryCapRejectsNonPositive(t *testing.T) {
	path := writeConfig(t, "[render]\nundo_history_cap = 0\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}
