// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package applog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDisabledAtZeroVerbosity(t *testing.T) {
	st := New(0)
	assert.False(t, st.Enabled())

	st.Append(LevelError, "boom")
	assert.Empty(t, st.Entries())
}

func TestAppendRespectsVerbosityCeiling(t *testing.T) {
	st := New(1)
	st.Append(LevelInfo, "info line")
	st.Append(LevelDebug, "debug line")

	entries := st.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "info line", entries[0].Message)
}

func TestAppendAdmitsDebugAtVerbosityTwo(t *testing.T) {
	st := New(2)
	st.Append(LevelDebug, "debug line %d", 1)

	entries := st.Entries()
	require := assert.New(t)
	require.Len(entries, 1)
	require.Equal("debug line 1", entries[0].Message)
}

func TestAppendDropsBlankMessages(t *testing.T) {
	st := New(1)
	st.Append(LevelInfo, "   ")
	assert.Empty(t, st.Entries())
}

func TestAppendEvictsOldestBeyondCap(t *testing.T) {
	st := New(1)
	st.maxEntries = 3
	for i := 0; i < 5; i++ {
		st.Append(LevelInfo, "line %d", i)
	}
	entries := st.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, "line 2", entries[0].Message)
	assert.Equal(t, "line 4", entries[2].Message)
}

func TestSetFilterNarrowsEntries(t *testing.T) {
	st := New(1)
	st.Append(LevelInfo, "alpha event")
	st.Append(LevelInfo, "beta event")

	st.SetFilter("^alpha")
	entries := st.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "alpha event", entries[0].Message)
}

func TestSetFilterInvalidPatternKeepsEverythingVisible(t *testing.T) {
	st := New(1)
	st.Append(LevelInfo, "alpha event")

	st.SetFilter("(unterminated")
	assert.Len(t, st.Entries(), 1)
	assert.Contains(t, st.ValidityLabel(), "invalid")
}

func TestSetFilterEmptyClearsFilter(t *testing.T) {
	st := New(1)
	st.Append(LevelInfo, "alpha event")
	st.SetFilter("zzz")
	assert.Empty(t, st.Entries())

	st.SetFilter("")
	assert.Len(t, st.Entries(), 1)
}

func TestFocusAndBlurToggleFocused(t *testing.T) {
	st := New(1)
	st.Focus()
	assert.True(t, st.Focused())
	st.Blur()
	assert.False(t, st.Focused())
}
