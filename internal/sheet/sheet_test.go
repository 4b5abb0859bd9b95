// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabulon-dev/tabulon/internal/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "qty", Type: schema.TypeNumber},
	})
	require.NoError(t, err)
	return s
}

func TestSetDataClearsPendingAndAssignsSequentialIndex(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{
		{"name": schema.String("a")},
		{"name": schema.String("b")},
	})

	rows := sh.Rows()
	require.Len(t, rows, 2)
	for i, id := range rows {
		assert.Equal(t, i, sh.IndexOf(id))
	}
}

func TestMutationAlwaysBumpsVersion(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{{"name": schema.String("a")}})
	id := sh.Rows()[0]

	before := sh.GetRowVersion(id)
	sh.SetCell(id, "name", schema.String("b"), true)
	assert.Greater(t, sh.GetRowVersion(id), before)

	before = sh.GetRowVersion(id)
	sh.SetCell(id, "name", schema.String("c"), false)
	assert.Greater(t, sh.GetRowVersion(id), before)

	before = sh.GetRowVersion(id)
	sh.ApplyPending(id)
	assert.Greater(t, sh.GetRowVersion(id), before)

	before = sh.GetRowVersion(id)
	sh.SetCellStyle(id, "name", schema.WithBold(true))
	assert.Greater(t, sh.GetRowVersion(id), before, "style set must bump the row version so the derivation cache sees it")
}

func TestUniqueBooleanTransitionTracksCommitHistory(t *testing.T) {
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "primary", Type: schema.TypeBoolean, Unique: true},
	})
	require.NoError(t, err)
	sh := New(s)
	sh.SetData([]Record{
		{"name": schema.String("a"), "primary": schema.Bool(false)},
		{"name": schema.String("b"), "primary": schema.Bool(false)},
	})
	rows := sh.Rows()
	a, b := rows[0], rows[1]

	trans := sh.UniqueBooleanTransition("primary")
	assert.False(t, trans.HasCurrent)
	assert.False(t, trans.HasPrevious)

	sh.SetCell(a, "primary", schema.Bool(true), true)
	trans = sh.UniqueBooleanTransition("primary")
	require.True(t, trans.HasCurrent)
	assert.Equal(t, a, trans.CurrentRowID)
	assert.False(t, trans.HasPrevious)

	// A flips false, B flips true: B becomes current, A becomes previous,
	// regardless of commit order (spec.md §8).
	sh.SetCell(a, "primary", schema.Bool(false), true)
	sh.SetCell(b, "primary", schema.Bool(true), true)
	trans = sh.UniqueBooleanTransition("primary")
	assert.Equal(t, b, trans.CurrentRowID)
	require.True(t, trans.HasPrevious)
	assert.Equal(t, a, trans.PreviousRowID)
}

func TestPendingPresentIffDifferentFromRaw(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{{"name": schema.String("a")}})
	id := sh.Rows()[0]

	sh.SetCell(id, "name", schema.String("b"), false)
	assert.True(t, !sh.GetRawCell(id, "name").Equal(sh.GetCell(id, "name")))

	// Setting pending back to the raw value removes the overlay.
	sh.SetCell(id, "name", schema.String("a"), false)
	assert.True(t, sh.GetRawCell(id, "name").Equal(sh.GetCell(id, "name")))
}

func TestInsertThenRemoveRestoresRowList(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{
		{"name": schema.String("a")},
		{"name": schema.String("b")},
	})
	before := sh.Rows()

	id := sh.InsertRowAt(Record{"name": schema.String("x")}, 1, nil)
	sh.SetCell(id, "name", schema.String("y"), false)
	sh.SetCellStyle(id, "name", schema.WithBold(true))

	sh.RemoveRow(id)

	assert.Equal(t, before, sh.Rows())
	assert.True(t, sh.GetCell(id, "name").IsNull())
	_, hasStyle := sh.CellStyle(id, "name")
	assert.False(t, hasStyle)
}

func TestInsertRowAtClampsIndex(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{{"name": schema.String("a")}})

	id := sh.InsertRowAt(Record{"name": schema.String("z")}, 99, nil)
	assert.Equal(t, 1, sh.IndexOf(id))

	id2 := sh.InsertRowAt(Record{"name": schema.String("y")}, -5, nil)
	assert.Equal(t, 0, sh.IndexOf(id2))
}

func TestInsertRowAtForcedIDReplaysUndo(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{{"name": schema.String("a")}})
	id := sh.Rows()[0]

	sh.RemoveRow(id)
	got := sh.InsertRowAt(Record{"name": schema.String("a")}, 0, &id)
	assert.Equal(t, id, got)
}

func TestReadonlyUnionOfRowAndColumn(t *testing.T) {
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "total", Type: schema.TypeNumber, Readonly: true},
	})
	require.NoError(t, err)
	sh := New(s)
	sh.SetData([]Record{{"name": schema.String("a")}})
	id := sh.Rows()[0]

	assert.True(t, sh.IsColumnReadonly("total"))
	assert.False(t, sh.IsColumnReadonly("name"))
	assert.True(t, sh.IsReadonly(id, "total"))
	assert.False(t, sh.IsReadonly(id, "name"))

	sh.SetRowReadonly(id, true)
	assert.True(t, sh.IsReadonly(id, "name"))
}

func TestClearAllPendingDropsEveryOverlay(t *testing.T) {
	sh := New(testSchema(t))
	sh.SetData([]Record{
		{"name": schema.String("a")},
		{"name": schema.String("b")},
	})
	rows := sh.Rows()
	sh.SetCell(rows[0], "name", schema.String("x"), false)
	sh.SetCell(rows[1], "name", schema.String("y"), false)

	sh.ClearAllPending()

	assert.True(t, sh.GetCell(rows[0], "name").Equal(schema.String("a")))
	assert.True(t, sh.GetCell(rows[1], "name").Equal(schema.String("b")))
}

func TestSubscribeNotifiesOnMutation(t *testing.T) {
	sh := New(testSchema(t))
	calls := 0
	unsub := sh.Subscribe(func() { calls++ })

	sh.SetData([]Record{{"name": schema.String("a")}})
	assert.Equal(t, 1, calls)

	id := sh.Rows()[0]
	sh.SetCell(id, "name", schema.String("b"), true)
	assert.Equal(t, 2, calls)

	unsub()
	sh.SetCell(id, "name", schema.String("c"), true)
	assert.Equal(t, 2, calls)
}
