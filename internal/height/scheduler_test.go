// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package height

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

func newTestSheet(t *testing.T, n int) *sheet.Sheet {
	t.Helper()
	s, err := schema.New([]schema.Column{{Key: "note", Type: schema.TypeString}})
	require.NoError(t, err)
	sh := sheet.New(s)
	records := make([]sheet.Record, n)
	for i := range records {
		records[i] = sheet.Record{"note": schema.String("x")}
	}
	sh.SetData(records)
	return sh
}

func TestSchedulerMeasuresEveryRowAcrossTicks(t *testing.T) {
	sh := newTestSheet(t, 3)
	measured := map[sheet.RowID]bool{}
	sched := NewScheduler(sh, func(id sheet.RowID) int {
		measured[id] = true
		return 2
	}, 1, time.Second, 1)
	sched.SetCacheKey("wrap:note|40")

	cmd := sched.Start(true)
	require.NotNil(t, cmd)

	for sched.Active() {
		cmd = sched.Tick()
		if cmd == nil {
			break
		}
	}

	for _, id := range sh.Rows() {
		assert.True(t, measured[id])
		assert.Equal(t, 2, sched.Height(id))
	}
}

func TestSchedulerDiscardsMeasurementIfRowVersionChangedMidMeasure(t *testing.T) {
	sh := newTestSheet(t, 1)
	id := sh.Rows()[0]

	sched := NewScheduler(sh, func(rowID sheet.RowID) int {
		// Simulate a concurrent edit landing mid-measurement.
		sh.SetCell(rowID, "note", schema.String("changed"), true)
		return 9
	}, 10, time.Second, 1)
	sched.SetCacheKey("wrap:note|40")
	sched.Start(true)
	sched.Tick()

	assert.Equal(t, 1, sched.Height(id))
}

func TestSchedulerDoesNotStartWithoutWrapEnabledColumn(t *testing.T) {
	sh := newTestSheet(t, 2)
	sched := NewScheduler(sh, func(sheet.RowID) int { return 3 }, 10, time.Second, 1)
	cmd := sched.Start(false)
	assert.Nil(t, cmd)
	assert.False(t, sched.Active())
}

func TestSetCacheKeyInvalidatesMeasuredHeights(t *testing.T) {
	sh := newTestSheet(t, 2)
	sched := NewScheduler(sh, func(sheet.RowID) int { return 5 }, 10, time.Second, 1)
	sched.SetCacheKey("key-a")
	sched.Start(true)
	sched.Tick()

	for _, id := range sh.Rows() {
		assert.Equal(t, 5, sched.Height(id))
	}

	sched.SetCacheKey("key-b")
	for _, id := range sh.Rows() {
		assert.Equal(t, 1, sched.Height(id))
	}
}
