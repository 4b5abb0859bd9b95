// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package view implements view state and the filter/sort engine (spec
// C5/C6): per-column filters, multi-column sorts, hidden columns, column
// widths, wrap toggles, and per-row height overrides, plus the engine
// that turns (data, view) into a visible row ordering (no separate
// visibility mask is produced). Grounded
// on the teacher's internal/app/sort.go and filter.go single-column
// sort/filter state, generalized to a multi-column, schema-driven view.
package view

import (
	"sort"

	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

// FilterFunc reports whether a derived cell value passes a column's
// filter. A column with no FilterFunc registered admits every value.
type FilterFunc func(schema.Value) bool

// SortKey is one level of a multi-column sort.
type SortKey struct {
	ColKey     string
	Descending bool
}

// State holds the mutable, non-data shape of a table: filters, sorts,
// hidden columns, widths, wrap toggles, and row-height overrides. It
// carries its own version counter independent of the sheet's view
// version, bumped whenever any of its fields change, for callers that
// only care about view-shape changes (e.g. the wrap-measurement cache
// key in internal/height).
type State struct {
	filters map[string]FilterFunc
	sorts   []SortKey

	hiddenColumns map[string]bool
	columnWidths  map[string]int
	wrapEnabled   map[string]bool
	rowHeights    map[sheet.RowID]int

	version uint64
}

// NewState returns an empty view state: nothing filtered, hidden, or
// sorted.
func NewState() *State {
	return &State{
		filters:       map[string]FilterFunc{},
		hiddenColumns: map[string]bool{},
		columnWidths:  map[string]int{},
		wrapEnabled:   map[string]bool{},
		rowHeights:    map[sheet.RowID]int{},
	}
}

// Version returns the view state's change counter.
func (s *State) Version() uint64 { return s.version }

// SetFilter installs (or, with a nil fn, clears) a column's filter.
func (s *State) SetFilter(colKey string, fn FilterFunc) {
	if fn == nil {
		delete(s.filters, colKey)
	} else {
		s.filters[colKey] = fn
	}
	s.version++
}

// ClearFilters removes every column filter.
func (s *State) ClearFilters() {
	s.filters = map[string]FilterFunc{}
	s.version++
}

// SetSorts replaces the multi-column sort order. An empty slice restores
// unsorted (original row) order.
func (s *State) SetSorts(keys []SortKey) {
	s.sorts = append([]SortKey(nil), keys...)
	s.version++
}

// Sorts returns a copy of the current sort keys.
func (s *State) Sorts() []SortKey {
	return append([]SortKey(nil), s.sorts...)
}

// SetColumnHidden marks a column hidden or visible.
func (s *State) SetColumnHidden(colKey string, hidden bool) {
	if hidden {
		s.hiddenColumns[colKey] = true
	} else {
		delete(s.hiddenColumns, colKey)
	}
	s.version++
}

// IsColumnHidden reports whether a column is currently hidden.
func (s *State) IsColumnHidden(colKey string) bool {
	return s.hiddenColumns[colKey]
}

// SetColumnWidth overrides a column's display width in characters/cells.
func (s *State) SetColumnWidth(colKey string, width int) {
	s.columnWidths[colKey] = width
	s.version++
}

// ColumnWidth returns a column's overridden width and whether one is set.
func (s *State) ColumnWidth(colKey string) (int, bool) {
	w, ok := s.columnWidths[colKey]
	return w, ok
}

// SetWrapEnabled toggles wrap-text for a column.
func (s *State) SetWrapEnabled(colKey string, enabled bool) {
	if enabled {
		s.wrapEnabled[colKey] = true
	} else {
		delete(s.wrapEnabled, colKey)
	}
	s.version++
}

// AnyWrapEnabled reports whether at least one column currently has wrap
// enabled, the gate for running the height package's measurement
// scheduler (spec.md §4.3).
func (s *State) AnyWrapEnabled() bool {
	return len(s.wrapEnabled) > 0
}

// WrapEnabledColumns returns the set of columns with wrap enabled, for
// building the height scheduler's cache key.
func (s *State) WrapEnabledColumns() []string {
	out := make([]string, 0, len(s.wrapEnabled))
	for k := range s.wrapEnabled {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SetRowHeight overrides a single row's height (distinct from a measured
// wrap height).
func (s *State) SetRowHeight(id sheet.RowID, height int) {
	s.rowHeights[id] = height
	s.version++
}

// RowHeight returns a row's override height and whether one is set.
func (s *State) RowHeight(id sheet.RowID) (int, bool) {
	h, ok := s.rowHeights[id]
	return h, ok
}

// PurgeRow drops any row-specific view state (height override) for a
// removed row id.
func (s *State) PurgeRow(id sheet.RowID) {
	if _, ok := s.rowHeights[id]; ok {
		delete(s.rowHeights, id)
		s.version++
	}
}

// Visible computes the visible row ordering for sh under the current
// filters and sorts, deriving filtered values through pipeline. It
// returns only the ids of visible rows; no per-row visibility mask is
// returned.
// Rows failing any column's filter are excluded; surviving rows are
// sorted per Sorts(), falling back to original order for ties (a stable
// sort), per spec.md's C6 contract.
func Visible(sh *sheet.Sheet, pipeline *derive.Pipeline, st *State) []sheet.RowID {
	all := sh.Rows()
	visible := make([]sheet.RowID, 0, len(all))

	for _, id := range all {
		if st.passesFilters(sh, pipeline, id) {
			visible = append(visible, id)
		}
	}

	if len(st.sorts) == 0 {
		return visible
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return st.less(pipeline, visible[i], visible[j])
	})
	return visible
}

func (s *State) passesFilters(sh *sheet.Sheet, pipeline *derive.Pipeline, id sheet.RowID) bool {
	for colKey, fn := range s.filters {
		if !fn(pipeline.Cell(id, colKey).Value) {
			return false
		}
	}
	_ = sh
	return true
}

func (s *State) less(pipeline *derive.Pipeline, a, b sheet.RowID) bool {
	for _, key := range s.sorts {
		va := pipeline.Cell(a, key.ColKey).Value
		vb := pipeline.Cell(b, key.ColKey).Value
		cmp := compareValues(va, vb)
		if cmp == 0 {
			continue
		}
		if key.Descending && va.IsEmpty() == vb.IsEmpty() {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// compareValues orders two values of (assumed) the same column: numbers
// and dates compare numerically/chronologically, booleans false-before-
// true, everything else by its display label. Empty values sort last
// regardless of direction, matching common spreadsheet sort behavior.
func compareValues(a, b schema.Value) int {
	if a.IsEmpty() != b.IsEmpty() {
		if a.IsEmpty() {
			return 1
		}
		return -1
	}
	if a.IsEmpty() && b.IsEmpty() {
		return 0
	}

	if an, ok := a.AsNumber(); ok {
		if bn, ok := b.AsNumber(); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	if at, ok := a.AsTime(); ok {
		if bt, ok := b.AsTime(); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if ab, ok := a.AsBool(); ok {
		if bb, ok := b.AsBool(); ok {
			switch {
			case ab == bb:
				return 0
			case !ab && bb:
				return -1
			default:
				return 1
			}
		}
	}

	al, bl := a.Label(), b.Label()
	switch {
	case al < bl:
		return -1
	case al > bl:
		return 1
	default:
		return 0
	}
}
