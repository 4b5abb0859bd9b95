// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package height

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

// MeasureFunc computes a row's wrapped height under the scheduler's
// current cache key (wrap-enabled mask and column widths). Hosts supply
// this; the scheduler only sequences and budgets the calls.
type MeasureFunc func(rowID sheet.RowID) int

// TickMsg drives the scheduler's cooperative measurement loop, one
// bubbletea animation frame at a time.
type TickMsg struct{}

type measuredEntry struct {
	height  int
	version uint64
}

// Scheduler runs incremental wrap-text measurement under a chunk-row and
// wall-clock budget, active only while at least one wrap-enabled column
// exists (spec.md §4.3).
type Scheduler struct {
	sheet   *sheet.Sheet
	measure MeasureFunc

	chunkRows     int
	tickBudget    time.Duration
	defaultHeight int

	cacheKey string
	measured map[sheet.RowID]measuredEntry
	index    *Index
	order    []sheet.RowID
	cursor   int
	active   bool
}

// NewScheduler builds a Scheduler bound to sh. chunkRows and tickBudget
// bound how much work a single Tick performs; defaultHeight is the
// height assumed for unmeasured rows.
func NewScheduler(sh *sheet.Sheet, measure MeasureFunc, chunkRows int, tickBudget time.Duration, defaultHeight int) *Scheduler {
	return &Scheduler{
		sheet:         sh,
		measure:       measure,
		chunkRows:     chunkRows,
		tickBudget:    tickBudget,
		defaultHeight: defaultHeight,
		measured:      make(map[sheet.RowID]measuredEntry),
	}
}

// SetCacheKey updates the scheduler's cache key. Any change invalidates
// every measured height and restarts measurement from the first row
// (spec.md §4.3: "any change invalidates all measured heights").
func (s *Scheduler) SetCacheKey(key string) {
	if key == s.cacheKey {
		return
	}
	s.cacheKey = key
	s.measured = make(map[sheet.RowID]measuredEntry)
	s.cursor = 0
	s.rebuildIndex()
}

func (s *Scheduler) rebuildIndex() {
	s.order = s.sheet.Rows()
	heights := make([]int, len(s.order))
	for i, id := range s.order {
		heights[i] = s.heightFor(id)
	}
	s.index = From(heights)
}

func (s *Scheduler) heightFor(id sheet.RowID) int {
	if e, ok := s.measured[id]; ok && e.version == s.sheet.GetRowVersion(id) {
		return e.height
	}
	return s.defaultHeight
}

// Index returns the scheduler's current prefix-sum height index, rebuilt
// to match the sheet's present row order if it has changed since the
// last rebuild.
func (s *Scheduler) Index() *Index {
	if s.index == nil || len(s.order) != s.sheet.Len() {
		s.rebuildIndex()
	}
	return s.index
}

// Start arms the scheduler if anyWrapEnabled and it isn't already
// running; it returns the tea.Cmd to schedule the first tick, or nil.
func (s *Scheduler) Start(anyWrapEnabled bool) tea.Cmd {
	if !anyWrapEnabled {
		s.active = false
		return nil
	}
	if s.active {
		return nil
	}
	if s.index == nil {
		s.rebuildIndex()
	}
	s.active = true
	return s.tickCmd()
}

// Stop deactivates the scheduler; in-flight Tick calls after Stop are
// no-ops until Start is called again.
func (s *Scheduler) Stop() {
	s.active = false
}

func (s *Scheduler) tickCmd() tea.Cmd {
	return tea.Tick(s.tickBudget, func(time.Time) tea.Msg { return TickMsg{} })
}

// Tick processes one cooperative measurement batch: it walks rows from
// the cursor, bounded by chunkRows and the wall-clock budget, storing a
// measured height only if the row's version is unchanged since
// measurement began (spec.md §4.3). It returns a tea.Cmd re-arming the
// next tick while rows remain, or nil once the pass completes.
func (s *Scheduler) Tick() tea.Cmd {
	if !s.active {
		return nil
	}
	if s.index == nil || len(s.order) != s.sheet.Len() {
		s.rebuildIndex()
	}
	if s.cursor >= len(s.order) {
		s.active = false
		return nil
	}

	deadline := time.Now().Add(s.tickBudget)
	processed := 0
	for s.cursor < len(s.order) && processed < s.chunkRows && time.Now().Before(deadline) {
		rowID := s.order[s.cursor]
		versionBefore := s.sheet.GetRowVersion(rowID)
		measured := s.measure(rowID)

		if s.sheet.GetRowVersion(rowID) == versionBefore {
			prev := s.heightFor(rowID)
			s.measured[rowID] = measuredEntry{height: measured, version: versionBefore}
			if measured != prev {
				s.index.Add(s.cursor, measured-prev)
			}
		}
		s.cursor++
		processed++
	}

	if s.cursor >= len(s.order) {
		s.active = false
		return nil
	}
	return s.tickCmd()
}

// Height returns the measured height for a row, or the default row
// height if it has not yet been measured under the current cache key.
func (s *Scheduler) Height(rowID sheet.RowID) int {
	return s.heightFor(rowID)
}

// Active reports whether a measurement pass is currently scheduled.
func (s *Scheduler) Active() bool {
	return s.active
}
