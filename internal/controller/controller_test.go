// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulon-dev/tabulon/internal/command"
	"github.com/tabulon-dev/tabulon/internal/config"
	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

func newFixture(t *testing.T, editMode config.EditMode) (*Controller, *sheet.Sheet) {
	t.Helper()
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "qty", Type: schema.TypeNumber},
	})
	require.NoError(t, err)
	sh := sheet.New(s)
	sh.SetData([]sheet.Record{{"name": schema.String("a"), "qty": schema.Number(1)}})

	p, err := derive.NewPipeline(sh, 1<<20)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	q := command.NewQueue(sh, 200)
	ctrl := New(sh, p, view.NewState(), q, selection.New(sh), nil, nil, config.Render{EditMode: editMode, Mode: config.RenderModeCanvas})
	return ctrl, sh
}

func TestSubscribeTableStateDeliversImmediateSnapshot(t *testing.T) {
	ctrl, _ := newFixture(t, config.EditModeDirect)
	var got TableState
	calls := 0
	unsub := ctrl.SubscribeTableState(func(ts TableState) { got = ts; calls++ })
	defer unsub()

	assert.Equal(t, 1, calls)
	assert.False(t, got.UndoRedo.CanUndo)
}

func TestSubscribeTableStateUnsubscribeIsIdempotent(t *testing.T) {
	ctrl, _ := newFixture(t, config.EditModeDirect)
	calls := 0
	unsub := ctrl.SubscribeTableState(func(TableState) { calls++ })
	unsub()
	unsub()

	id := sheet.RowID(0)
	ctrl.SetCellValue(Addr{RowID: &id, ColKey: "name"}, schema.String("b"))
	assert.Equal(t, 1, calls)
}

func TestSetCellValueDirectModeCommitsImmediately(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeDirect)
	id := sh.Rows()[0]
	ok := ctrl.SetCellValue(Addr{RowID: &id, ColKey: "name"}, schema.String("X"))

	require.True(t, ok)
	assert.Equal(t, 0, ctrl.GetPendingCellCount())
	assert.True(t, ctrl.GetTableState().UndoRedo.CanUndo)
	assert.True(t, sh.GetCell(id, "name").Equal(schema.String("X")))
}

func TestSetCellValueCommitModeStagesPending(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeCommit)
	id := sh.Rows()[0]
	ok := ctrl.SetCellValue(Addr{RowID: &id, ColKey: "name"}, schema.String("X"))

	require.True(t, ok)
	assert.Equal(t, 1, ctrl.GetPendingCellCount())
	assert.True(t, ctrl.GetTableState().CanCommit)

	ctrl.Commit()
	assert.Equal(t, 0, ctrl.GetPendingCellCount())
	assert.True(t, sh.GetCell(id, "name").Equal(schema.String("X")))
}

func TestSetCellValueReadonlyModeRejectsWrite(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeReadonly)
	id := sh.Rows()[0]
	ok := ctrl.SetCellValue(Addr{RowID: &id, ColKey: "name"}, schema.String("X"))

	assert.False(t, ok)
	assert.True(t, sh.GetCell(id, "name").Equal(schema.String("a")))
}

func TestResolveByRowIndexAndColIndex(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeDirect)
	idx := 0
	ci := 1
	ok := ctrl.SetCellValue(Addr{RowIndex: &idx, ColIndex: &ci}, schema.Number(42))

	require.True(t, ok)
	assert.True(t, sh.GetCell(sh.Rows()[0], "qty").Equal(schema.Number(42)))
}

func TestUndoRedoInvolution(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeDirect)
	id := sh.Rows()[0]
	ctrl.SetCellValue(Addr{RowID: &id, ColKey: "name"}, schema.String("X"))

	afterEdit := sh.GetCell(id, "name")
	require.True(t, ctrl.Undo())
	require.True(t, ctrl.Redo())
	assert.True(t, sh.GetCell(id, "name").Equal(afterEdit))
}

func TestInsertThenDeleteRestoresRowList(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeDirect)
	before := append([]sheet.RowID(nil), sh.Rows()...)

	id := ctrl.InsertRowAt(sheet.Record{"name": schema.String("b")}, 1)
	ctrl.DeleteRow(id)

	assert.Equal(t, before, sh.Rows())
}

func TestGetSelectionSnapshotForSelectAllSentinel(t *testing.T) {
	ctrl, _ := newFixture(t, config.EditModeDirect)
	ctrl.SetActiveCell(selection.Cell{RowID: selection.AllRowID, ColKey: selection.AllColKey})

	snap := ctrl.GetSelectionSnapshot(ReasonSelection)
	assert.Equal(t, -1, snap.RowIndex)
	assert.Equal(t, -1, snap.ColIndex)
}

func TestGetSelectionSnapshotResolvesDisplayAndRaw(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeDirect)
	id := sh.Rows()[0]
	ctrl.SetActiveCell(selection.Cell{RowID: id, ColKey: "name"})

	snap := ctrl.GetSelectionSnapshot(ReasonSelection)
	assert.Equal(t, "a", snap.Display)
	assert.True(t, snap.Raw.Equal(schema.String("a")))
}

func TestGetSelectionSnapshotResolvedStyleIncludesCellOverride(t *testing.T) {
	ctrl, sh := newFixture(t, config.EditModeDirect)
	id := sh.Rows()[0]
	ctrl.SetActiveCell(selection.Cell{RowID: id, ColKey: "name"})
	ctrl.ApplyStyleToSelection(schema.WithBold(true))

	snap := ctrl.GetSelectionSnapshot(ReasonSelection)
	require.NotNil(t, snap.Style.Resolved.Bold)
	assert.True(t, *snap.Style.Resolved.Bold)
	require.NotNil(t, snap.Style.Cell.Bold)
	assert.True(t, *snap.Style.Cell.Bold)
}
