// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package command implements the command queue (spec C8): typed,
// self-invertible commands applied to a sheet, a bounded applied/redo
// stack, batching, and the direct/commit/readonly edit modes. Grounded
// on the teacher's internal/app/undo.go undoEntry{Restore func() error}
// pattern, generalized from entity snapshot/restore closures to typed
// commands that carry their own inverse.
package command

import (
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

// Kind identifies a command's type, for history display and filtering.
type Kind string

const (
	KindEdit       Kind = "edit"
	KindInsertRow  Kind = "insertRow"
	KindDeleteRow  Kind = "deleteRow"
	KindUpdateView Kind = "updateView"
	KindLock       Kind = "lock"
	KindUnlock     Kind = "unlock"
)

// Command is a single reversible mutation against a sheet. Apply performs
// the mutation; Invert returns the command that undoes it, built from
// state captured at construction time rather than by re-reading the
// sheet (spec.md §4.4: "without consulting the current model state").
type Command interface {
	Kind() Kind
	Label() string
	Apply(sh *sheet.Sheet)
	Invert() Command
}

// EditCommand writes a single cell, recording the previous value so it
// can be inverted without re-reading the sheet.
type EditCommand struct {
	RowID     sheet.RowID
	ColKey    string
	Prev      schema.Value
	Next      schema.Value
	Committed bool
}

func (c EditCommand) Kind() Kind     { return KindEdit }
func (c EditCommand) Label() string  { return "edit " + c.ColKey }

func (c EditCommand) Apply(sh *sheet.Sheet) {
	sh.SetCell(c.RowID, c.ColKey, c.Next, c.Committed)
}

func (c EditCommand) Invert() Command {
	return EditCommand{RowID: c.RowID, ColKey: c.ColKey, Prev: c.Next, Next: c.Prev, Committed: c.Committed}
}

// InsertRowCommand inserts a captured record at a fixed index, using a
// forced row id so redo reinserts the same identity a prior undo removed.
type InsertRowCommand struct {
	RowID  sheet.RowID
	Index  int
	Record sheet.Record
}

func (c InsertRowCommand) Kind() Kind    { return KindInsertRow }
func (c InsertRowCommand) Label() string { return "insert row" }

func (c InsertRowCommand) Apply(sh *sheet.Sheet) {
	id := c.RowID
	sh.InsertRowAt(c.Record, c.Index, &id)
}

func (c InsertRowCommand) Invert() Command {
	return DeleteRowCommand{RowID: c.RowID, Index: c.Index, Record: c.Record}
}

// DeleteRowCommand removes a row, recording its body and position so
// undo can splice it back in exactly where it was.
type DeleteRowCommand struct {
	RowID  sheet.RowID
	Index  int
	Record sheet.Record
}

func (c DeleteRowCommand) Kind() Kind    { return KindDeleteRow }
func (c DeleteRowCommand) Label() string { return "delete row" }

func (c DeleteRowCommand) Apply(sh *sheet.Sheet) {
	sh.RemoveRow(c.RowID)
}

func (c DeleteRowCommand) Invert() Command {
	return InsertRowCommand{RowID: c.RowID, Index: c.Index, Record: c.Record}
}

// UpdateViewCommand wraps a pair of closures for view-shape changes
// (sort, filter, hidden columns, widths) that don't fit a fixed-field
// struct, mirroring the teacher's undoEntry{Restore func() error}
// closure-based snapshot/restore.
type UpdateViewCommand struct {
	label string
	do    func()
	undo  func()
}

// NewUpdateViewCommand builds a view-change command from a pair of
// closures: do applies the forward change, undo reverts it.
func NewUpdateViewCommand(label string, do, undo func()) UpdateViewCommand {
	return UpdateViewCommand{label: label, do: do, undo: undo}
}

func (c UpdateViewCommand) Kind() Kind    { return KindUpdateView }
func (c UpdateViewCommand) Label() string { return c.label }

func (c UpdateViewCommand) Apply(sh *sheet.Sheet) { c.do() }

func (c UpdateViewCommand) Invert() Command {
	return UpdateViewCommand{label: "undo " + c.label, do: c.undo, undo: c.do}
}

// LockCommand/UnlockCommand mark a row readonly or editable, used by
// row-level locking (config.LockModeRow).
type LockCommand struct{ RowID sheet.RowID }

func (c LockCommand) Kind() Kind          { return KindLock }
func (c LockCommand) Label() string       { return "lock row" }
func (c LockCommand) Apply(sh *sheet.Sheet) { sh.SetRowReadonly(c.RowID, true) }
func (c LockCommand) Invert() Command     { return UnlockCommand{RowID: c.RowID} }

type UnlockCommand struct{ RowID sheet.RowID }

func (c UnlockCommand) Kind() Kind          { return KindUnlock }
func (c UnlockCommand) Label() string       { return "unlock row" }
func (c UnlockCommand) Apply(sh *sheet.Sheet) { sh.SetRowReadonly(c.RowID, false) }
func (c UnlockCommand) Invert() Command     { return LockCommand{RowID: c.RowID} }
