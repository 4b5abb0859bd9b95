// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package controller implements the public API surface and the two
// observable snapshot buses (spec C11): it owns the sheet, derivation
// pipeline, view state, command queue, selection, and height scheduler,
// and drives whichever render.Backend is attached. Grounded on the
// teacher's internal/app/model.go bubbletea tea.Model (Init/Update/View
// as the single owning aggregate), generalized from a house/project/
// vendor-specific Model into a schema-driven Controller with explicit
// subscribe/unsubscribe observer lists instead of tea.Msg plumbing,
// since this package is the seam other hosts (HTTP server, TUI) drive
// rather than a bubbletea program itself.
package controller

import (
	"fmt"

	"github.com/tabulon-dev/tabulon/internal/command"
	"github.com/tabulon-dev/tabulon/internal/config"
	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/height"
	"github.com/tabulon-dev/tabulon/internal/render"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

// ChangeReason tags why a selection snapshot was (re-)published
// (spec.md §4.7).
type ChangeReason string

const (
	ReasonSelection ChangeReason = "selection"
	ReasonEdit      ChangeReason = "edit"
	ReasonStyle     ChangeReason = "style"
	ReasonSchema    ChangeReason = "schema"
	ReasonView      ChangeReason = "view"
	ReasonData      ChangeReason = "data"
	ReasonUnknown   ChangeReason = "unknown"
)

// UndoRedoState mirrors command.Snapshot's undo/redo counters for the
// table-state snapshot.
type UndoRedoState struct {
	CanUndo             bool
	CanRedo             bool
	PendingCommandCount int
}

// TableState is the first of the two observable snapshots (spec.md §4.7).
type TableState struct {
	CanCommit           bool
	PendingCommandCount int
	PendingCellCount    int
	UndoRedo            UndoRedoState
	RenderMode          config.RenderMode
	SearchPanelOpen     bool
	ActiveErrors        []schema.Diagnostic
}

// StyleTrio carries the three style layers that compose a cell's
// rendered appearance, for inspection by the selection snapshot.
type StyleTrio struct {
	Column      schema.StyleDelta
	Cell        schema.StyleDelta
	Resolved    schema.StyleDelta
}

// SelectionState is the second observable snapshot (spec.md §4.7).
type SelectionState struct {
	RowIndex     int
	ColIndex     int
	RowID        sheet.RowID
	ColKey       string
	Display      string
	Raw          schema.Value
	Style        StyleTrio
	Diagnostic   *schema.Diagnostic
	ChangeReason ChangeReason
}

// Addr identifies a cell by any mix of id/key or index forms (spec.md
// §6: "accepts any of {rowId,colKey}, {rowIndex,colIndex}, mixed
// forms").
type Addr struct {
	RowID    *sheet.RowID
	RowIndex *int
	ColKey   string
	ColIndex *int
}

// Controller owns the per-sheet subsystems (C3-C10) and is the single
// entry point mutations flow through; callers must not mutate the sheet
// directly (spec.md §5: "callers must not mutate from callbacks except
// through controller entry points").
type Controller struct {
	sh       *sheet.Sheet
	pipeline *derive.Pipeline
	viewSt   *view.State
	queue    *command.Queue
	sel      *selection.Selection
	heights  *height.Scheduler
	backend  render.Backend

	editMode        config.EditMode
	lockMode        config.LockMode
	renderMode      config.RenderMode
	searchPanelOpen bool

	tableListeners     []func(TableState)
	selectionListeners []func(SelectionState)
}

// New builds a Controller wired to the given subsystems; backend may be
// nil (headless/server use, e.g. the SSR export path).
func New(sh *sheet.Sheet, pipeline *derive.Pipeline, viewSt *view.State, queue *command.Queue, sel *selection.Selection, heights *height.Scheduler, backend render.Backend, cfg config.Render) *Controller {
	c := &Controller{
		sh:         sh,
		pipeline:   pipeline,
		viewSt:     viewSt,
		queue:      queue,
		sel:        sel,
		heights:    heights,
		backend:    backend,
		editMode:   cfg.EditMode,
		lockMode:   cfg.LockMode,
		renderMode: cfg.Mode,
	}
	queue.Subscribe(func(command.Snapshot) { c.publishTableState() })
	return c
}

// --- subscriptions ---------------------------------------------------

// SubscribeTableState registers l and immediately delivers the current
// snapshot (spec.md §4.7: "idempotent ... immediately on subscribe").
// The returned unsubscribe func is itself idempotent.
func (c *Controller) SubscribeTableState(l func(TableState)) func() {
	c.tableListeners = append(c.tableListeners, l)
	idx := len(c.tableListeners) - 1
	l(c.GetTableState())
	unsubscribed := false
	return func() {
		if unsubscribed {
			return
		}
		unsubscribed = true
		c.tableListeners[idx] = nil
	}
}

// SubscribeSelection registers l and immediately delivers the current
// selection snapshot.
func (c *Controller) SubscribeSelection(l func(SelectionState)) func() {
	c.selectionListeners = append(c.selectionListeners, l)
	idx := len(c.selectionListeners) - 1
	l(c.GetSelectionSnapshot(ReasonUnknown))
	unsubscribed := false
	return func() {
		if unsubscribed {
			return
		}
		unsubscribed = true
		c.selectionListeners[idx] = nil
	}
}

func (c *Controller) publishTableState() {
	snap := c.GetTableState()
	for _, l := range c.tableListeners {
		if l != nil {
			l(snap)
		}
	}
}

func (c *Controller) publishSelection(reason ChangeReason) {
	snap := c.GetSelectionSnapshot(reason)
	for _, l := range c.selectionListeners {
		if l != nil {
			l(snap)
		}
	}
}

// --- address normalization --------------------------------------------

// resolve normalizes a mixed Addr to a concrete (rowId, colKey) pair
// against the sheet's current row order (spec.md §6).
func (c *Controller) resolve(addr Addr) (sheet.RowID, string, bool) {
	var rowID sheet.RowID
	switch {
	case addr.RowID != nil:
		rowID = *addr.RowID
	case addr.RowIndex != nil:
		id, ok := c.sh.RowAt(*addr.RowIndex)
		if !ok {
			return 0, "", false
		}
		rowID = id
	default:
		return 0, "", false
	}

	colKey := addr.ColKey
	if colKey == "" && addr.ColIndex != nil {
		keys := c.sh.Schema().Keys()
		if *addr.ColIndex < 0 || *addr.ColIndex >= len(keys) {
			return 0, "", false
		}
		colKey = keys[*addr.ColIndex]
	}
	if colKey == "" {
		return 0, "", false
	}
	return rowID, colKey, true
}

// --- mutation ----------------------------------------------------------

// SetData replaces the sheet's rows wholesale and clears the undo/redo
// history, since prior commands no longer apply to any live row.
func (c *Controller) SetData(records []sheet.Record) {
	c.sh.SetData(records)
	c.queue.Reset()
	c.pipeline.Invalidate()
	c.publishTableState()
	c.publishSelection(ReasonData)
}

// SetCellValue writes a single cell through the command queue,
// respecting the current edit mode: readonly rejects the write outright,
// direct commits immediately, commit stages it as pending (spec.md §4.4).
func (c *Controller) SetCellValue(addr Addr, v schema.Value) bool {
	if c.editMode == config.EditModeReadonly {
		return false
	}
	rowID, colKey, ok := c.resolve(addr)
	if !ok {
		return false
	}
	if c.sh.IsReadonly(rowID, colKey) {
		return false
	}
	prev := c.sh.GetCell(rowID, colKey)
	c.queue.Enqueue(command.EditCommand{
		RowID:     rowID,
		ColKey:    colKey,
		Prev:      prev,
		Next:      v,
		Committed: c.editMode == config.EditModeDirect,
	})
	c.publishSelection(ReasonEdit)
	return true
}

// ApplyStyleToSelection merges delta onto every cell in the current
// selection range.
func (c *Controller) ApplyStyleToSelection(delta schema.StyleDelta) {
	cols := c.visibleColumnOrder()
	rng := c.sel.Range()
	minRow, maxRow, minCol, maxCol := rng.Normalize(c.sh, cols)
	if minRow < 0 || minCol < 0 {
		return
	}
	rows := c.sh.Rows()
	for ri := minRow; ri <= maxRow && ri < len(rows); ri++ {
		for ci := minCol; ci <= maxCol && ci < len(cols); ci++ {
			existing, _ := c.sh.CellStyle(rows[ri], cols[ci])
			c.sh.SetCellStyle(rows[ri], cols[ci], existing.Merge(delta))
		}
	}
	c.publishSelection(ReasonStyle)
}

func (c *Controller) visibleColumnOrder() []string {
	var out []string
	for _, col := range c.sh.Schema().Columns() {
		if c.viewSt != nil && c.viewSt.IsColumnHidden(col.Key) {
			continue
		}
		out = append(out, col.Key)
	}
	return out
}

// InsertRowAt inserts rec at index through the command queue.
func (c *Controller) InsertRowAt(rec sheet.Record, index int) sheet.RowID {
	id := c.sh.PeekNextRowID()
	c.queue.Enqueue(command.InsertRowCommand{RowID: id, Index: index, Record: rec})
	return id
}

// DeleteRow removes id through the command queue, capturing its current
// body and position so undo can splice it back exactly.
func (c *Controller) DeleteRow(id sheet.RowID) {
	index := c.sh.IndexOf(id)
	if index < 0 {
		return
	}
	rec := c.sh.RowRecord(id)
	c.queue.Enqueue(command.DeleteRowCommand{RowID: id, Index: index, Record: rec})
}

// Commit applies every row's pending overlay to its raw values via
// Sheet.ApplyPending. It enqueues no command, so a commit is not an
// undo step, and it sends the committed rows nowhere: the controller
// holds no store or server adapter.
func (c *Controller) Commit() {
	for _, id := range c.sh.Rows() {
		c.sh.ApplyPending(id)
	}
	c.publishTableState()
}

// Undo/Redo delegate to the command queue; the queue's own Subscribe
// hook republishes table state, so only the selection snapshot needs a
// direct nudge here (spec.md §5: "selection snapshot is emitted after
// the data snapshot when an edit changes both").
func (c *Controller) Undo() bool {
	ok := c.queue.Undo()
	if ok {
		c.publishSelection(ReasonEdit)
	}
	return ok
}

func (c *Controller) Redo() bool {
	ok := c.queue.Redo()
	if ok {
		c.publishSelection(ReasonEdit)
	}
	return ok
}

func (c *Controller) SetRenderMode(m config.RenderMode) {
	c.renderMode = m
	c.publishTableState()
}

func (c *Controller) SetEditMode(m config.EditMode) {
	c.editMode = m
	c.publishTableState()
}

func (c *Controller) SetLockMode(m config.LockMode) {
	c.lockMode = m
	c.publishTableState()
}

// ToggleSearchPanel and ShowSearchPanel are UI intents, passed through
// rather than part of the core model (spec.md §6), but still flow
// through the table-state snapshot since hosts read ui.searchPanelOpen
// from it.
func (c *Controller) ToggleSearchPanel() {
	c.searchPanelOpen = !c.searchPanelOpen
	c.publishTableState()
}

func (c *Controller) ShowSearchPanel(open bool) {
	c.searchPanelOpen = open
	c.publishTableState()
}

// --- queries -------------------------------------------------------

func (c *Controller) GetCell(rowID sheet.RowID, colKey string) schema.Value {
	return c.sh.GetCell(rowID, colKey)
}

func (c *Controller) GetRawData(rowID sheet.RowID, colKey string) schema.Value {
	return c.sh.GetRawCell(rowID, colKey)
}

func (c *Controller) GetPendingCellCount() int {
	return c.sh.PendingCellCount()
}

// GetTableData returns the currently visible row ids in view order.
func (c *Controller) GetTableData() []sheet.RowID {
	return view.Visible(c.sh, c.pipeline, c.viewSt)
}

// GetColumnData returns every row's derived text for one column, in
// sheet order (not view order), for exports and column-wise inspection.
func (c *Controller) GetColumnData(colKey string) []string {
	rows := c.sh.Rows()
	out := make([]string, len(rows))
	for i, id := range rows {
		out[i] = c.pipeline.Cell(id, colKey).Text
	}
	return out
}

func (c *Controller) GetAllRows() []sheet.RowID {
	return c.sh.Rows()
}

// GetTableState returns the current table-state snapshot (spec.md §4.7).
func (c *Controller) GetTableState() TableState {
	snap := c.queue.Snapshot()
	return TableState{
		CanCommit:           c.editMode == config.EditModeCommit && snap.PendingCellCount > 0,
		PendingCommandCount: snap.PendingCommandCount,
		PendingCellCount:    snap.PendingCellCount,
		UndoRedo: UndoRedoState{
			CanUndo:             snap.CanUndo,
			CanRedo:             snap.CanRedo,
			PendingCommandCount: snap.PendingCommandCount,
		},
		RenderMode:      c.renderMode,
		SearchPanelOpen: c.searchPanelOpen,
		ActiveErrors:    c.activeErrors(),
	}
}

// activeErrors scans every row of the sheet (view filters are not
// applied) across the non-hidden columns for a diagnostic. This is a
// plain linear scan, not incrementally tracked, since the derivation
// cache already makes repeated scans cheap after the first pass.
func (c *Controller) activeErrors() []schema.Diagnostic {
	var out []schema.Diagnostic
	cols := c.visibleColumnOrder()
	for _, id := range c.sh.Rows() {
		for _, colKey := range cols {
			if d := c.pipeline.Cell(id, colKey).Diagnostic; d != nil {
				out = append(out, *d)
			}
		}
	}
	return out
}

// GetSelectionSnapshot returns the current selection-state snapshot
// (spec.md §4.7), tagging it with reason.
func (c *Controller) GetSelectionSnapshot(reason ChangeReason) SelectionState {
	active := c.sel.Active()
	if active.RowID == selection.AllRowID || active.ColKey == selection.AllColKey {
		return SelectionState{RowIndex: -1, ColIndex: -1, RowID: active.RowID, ColKey: active.ColKey, ChangeReason: reason}
	}

	result := c.pipeline.Cell(active.RowID, active.ColKey)
	col, _ := c.sh.Schema().Column(active.ColKey)
	cellStyle, _ := c.sh.CellStyle(active.RowID, active.ColKey)

	return SelectionState{
		RowIndex: c.sh.IndexOf(active.RowID),
		ColIndex: indexOf(c.sh.Schema().Keys(), active.ColKey),
		RowID:    active.RowID,
		ColKey:   active.ColKey,
		Display:  result.Text,
		Raw:      c.sh.GetCell(active.RowID, active.ColKey),
		Style: StyleTrio{
			Column:   col.Style,
			Cell:     cellStyle,
			Resolved: result.Style,
		},
		Diagnostic:   result.Diagnostic,
		ChangeReason: reason,
	}
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

// GetUndoRedoHistory returns the applied-batch history (spec.md §6).
func (c *Controller) GetUndoRedoHistory() []command.HistoryEntry {
	return c.queue.History()
}

// --- renderer wiring -------------------------------------------------

// SetActiveCell updates the selection and the attached backend, then
// publishes a selection snapshot.
func (c *Controller) SetActiveCell(cell selection.Cell) {
	c.sel.SetActiveCell(cell)
	if c.backend != nil {
		c.backend.SetActiveCell(fmt.Sprintf("%d", cell.RowID), cell.ColKey)
	}
	c.publishSelection(ReasonSelection)
}

// Render re-renders the attached backend, if any.
func (c *Controller) Render() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Render()
}

// Sheet returns the underlying sheet, for hosts (e.g. the HTTP server)
// that need direct read access beyond the snapshot accessors above.
func (c *Controller) Sheet() *sheet.Sheet { return c.sh }

// Pipeline returns the derivation pipeline, for hosts that render
// outside the attached backend (e.g. a one-shot SSR export).
func (c *Controller) Pipeline() *derive.Pipeline { return c.pipeline }

// ViewState returns the view state, for hosts that serialize or mutate
// filters/sorts/column visibility over a wire protocol.
func (c *Controller) ViewState() *view.State { return c.viewSt }
