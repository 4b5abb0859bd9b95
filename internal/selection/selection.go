// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package selection implements active-cell/range selection, fill-handle
// visibility, and clipboard grid parsing (spec C7). Grounded on the
// teacher's internal/app/table.go cursor/selection bookkeeping,
// generalized from a single active row index to a full rectangular
// range over (rowId, colKey) pairs.
package selection

import (
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

// AllRowID/AllColKey are the sentinel active-cell coordinates set when
// the corner (select-all) region is hit, regardless of scroll offset
// (spec.md §8's select-all corner hit-test scenario).
const (
	AllRowID  sheet.RowID = ^sheet.RowID(0)
	AllColKey             = "__all__"
)

// Cell identifies one (row, column) cursor position.
type Cell struct {
	RowID  sheet.RowID
	ColKey string
}

// Range is a rectangular selection anchored at Start and extended to
// End; Start and End may be given in any order (drag direction), so
// callers should use Normalize to get row-index/column-index bounds.
type Range struct {
	Start Cell
	End   Cell
}

// Selection tracks the active cell and the current selection range.
// A single-cell selection has Range.Start == Range.End == Active.
type Selection struct {
	sh     *sheet.Sheet
	active Cell
	rng    Range
}

// New returns a Selection bound to sh with nothing selected.
func New(sh *sheet.Sheet) *Selection {
	return &Selection{sh: sh}
}

// SetActiveCell sets the active cell and collapses the selection to it.
func (s *Selection) SetActiveCell(c Cell) {
	s.active = c
	s.rng = Range{Start: c, End: c}
}

// Active returns the current active cell.
func (s *Selection) Active() Cell {
	return s.active
}

// SetRange extends the selection to a rectangular range without moving
// the active cell.
func (s *Selection) SetRange(r Range) {
	s.rng = r
}

// Range returns the current selection range.
func (s *Selection) Range() Range {
	return s.rng
}

// IsSelectAll reports whether the active cell is the select-all corner
// sentinel.
func (s *Selection) IsSelectAll() bool {
	return s.active.RowID == AllRowID && s.active.ColKey == AllColKey
}

// IsSingleCell reports whether the current range is exactly one cell.
func (s *Selection) IsSingleCell() bool {
	return s.rng.Start == s.rng.End
}

// FillHandleVisible reports whether the fill handle should be drawn for
// the current active cell (spec.md §8): hidden for formula columns
// (computed, not directly editable source data) or readonly cells, and
// only shown for a single-cell selection.
func FillHandleVisible(sh *sheet.Sheet, active Cell, singleCellSelected bool) bool {
	if !singleCellSelected {
		return false
	}
	if active.RowID == AllRowID || active.ColKey == AllColKey {
		return false
	}
	col, ok := sh.Schema().Column(active.ColKey)
	if !ok {
		return false
	}
	if col.Formula != nil {
		return false
	}
	if sh.IsReadonly(active.RowID, active.ColKey) {
		return false
	}
	return true
}

// Normalize returns the range's cells as (minRowIndex, maxRowIndex,
// minColIndex, maxColIndex) against a given column key order, so callers
// can iterate a rectangular fill/copy region regardless of drag
// direction.
func (r Range) Normalize(sh *sheet.Sheet, colOrder []string) (minRow, maxRow, minCol, maxCol int) {
	startRow := sh.IndexOf(r.Start.RowID)
	endRow := sh.IndexOf(r.End.RowID)
	startCol := indexOfCol(colOrder, r.Start.ColKey)
	endCol := indexOfCol(colOrder, r.End.ColKey)

	minRow, maxRow = minMax(startRow, endRow)
	minCol, maxCol = minMax(startCol, endCol)
	return
}

func indexOfCol(order []string, key string) int {
	for i, k := range order {
		if k == key {
			return i
		}
	}
	return -1
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// FillValues applies the value at the fill-handle's source cell to every
// other cell in a target range via setCell, skipping readonly and
// formula cells. setCell is supplied by the caller (the controller),
// which knows the sheet's current edit mode.
func FillValues(sh *sheet.Sheet, source Cell, targets []Cell, setCell func(id sheet.RowID, colKey string, v schema.Value)) {
	value := sh.GetCell(source.RowID, source.ColKey)
	for _, t := range targets {
		if sh.IsReadonly(t.RowID, t.ColKey) {
			continue
		}
		if col, ok := sh.Schema().Column(t.ColKey); ok && col.Formula != nil {
			continue
		}
		setCell(t.RowID, t.ColKey, value)
	}
}
