// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package command

import "github.com/tabulon-dev/tabulon/internal/sheet"

// BatchID groups several commands into one user-visible undo/redo step.
type BatchID uint64

// Snapshot is the table-state subset the queue reports to subscribers
// after every enqueue/undo/redo (spec.md §4.4).
type Snapshot struct {
	PendingCommandCount int
	PendingCellCount    int
	CanUndo             bool
	CanRedo             bool
}

// HistoryEntry describes one undoable batch for a history listing.
type HistoryEntry struct {
	Batch        BatchID
	Label        string
	CommandCount int
}

type entry struct {
	cmd   Command
	batch BatchID
}

// Queue is the bounded, batched undo/redo command history for one sheet.
type Queue struct {
	sh  *sheet.Sheet
	cap int

	applied []entry
	redo    []entry

	nextBatch   BatchID
	activeBatch *BatchID

	listeners []func(Snapshot)
}

// NewQueue builds a Queue bound to sh with a bounded applied-history
// capacity (spec.md §4.4: "overflow drops the oldest applied command
// without allowing its undo").
func NewQueue(sh *sheet.Sheet, historyCap int) *Queue {
	return &Queue{sh: sh, cap: historyCap, nextBatch: 1}
}

// Subscribe registers a listener invoked with the current Snapshot after
// every enqueue, undo, and redo.
func (q *Queue) Subscribe(l func(Snapshot)) func() {
	q.listeners = append(q.listeners, l)
	idx := len(q.listeners) - 1
	return func() { q.listeners[idx] = nil }
}

func (q *Queue) notify() {
	snap := q.Snapshot()
	for _, l := range q.listeners {
		if l != nil {
			l(snap)
		}
	}
}

// Snapshot reports the queue's current counters.
func (q *Queue) Snapshot() Snapshot {
	return Snapshot{
		PendingCommandCount: len(q.applied),
		PendingCellCount:    q.sh.PendingCellCount(),
		CanUndo:             len(q.applied) > 0,
		CanRedo:             len(q.redo) > 0,
	}
}

// BeginBatch opens a new batch; every Enqueue until EndBatch shares its
// batch id, so Undo/Redo treat them as one step.
func (q *Queue) BeginBatch() BatchID {
	id := q.nextBatch
	q.nextBatch++
	q.activeBatch = &id
	return id
}

// EndBatch closes the currently open batch, if any.
func (q *Queue) EndBatch() {
	q.activeBatch = nil
}

// Enqueue applies cmd to the sheet, appends it to the applied history
// (evicting the oldest entry if over capacity), and clears the redo
// stack (spec.md §4.4: "any fresh enqueue clears redo").
func (q *Queue) Enqueue(cmd Command) {
	cmd.Apply(q.sh)

	batch := q.nextBatch
	if q.activeBatch != nil {
		batch = *q.activeBatch
	} else {
		q.nextBatch++
	}

	q.applied = append(q.applied, entry{cmd: cmd, batch: batch})
	if q.cap > 0 && len(q.applied) > q.cap {
		q.applied = q.applied[len(q.applied)-q.cap:]
	}
	q.redo = nil
	q.notify()
}

// Undo reverts the most recent batch, applying each command's inverse in
// reverse order, and pushes the batch onto the redo stack.
func (q *Queue) Undo() bool {
	if len(q.applied) == 0 {
		return false
	}
	batch := q.applied[len(q.applied)-1].batch
	var popped []entry
	for len(q.applied) > 0 && q.applied[len(q.applied)-1].batch == batch {
		popped = append(popped, q.applied[len(q.applied)-1])
		q.applied = q.applied[:len(q.applied)-1]
	}
	for _, e := range popped {
		e.cmd.Invert().Apply(q.sh)
	}
	q.redo = append(q.redo, popped...)
	q.notify()
	return true
}

// Redo reapplies the most recently undone batch and pushes it back onto
// the applied history.
func (q *Queue) Redo() bool {
	if len(q.redo) == 0 {
		return false
	}
	batch := q.redo[len(q.redo)-1].batch
	var popped []entry
	for len(q.redo) > 0 && q.redo[len(q.redo)-1].batch == batch {
		popped = append(popped, q.redo[len(q.redo)-1])
		q.redo = q.redo[:len(q.redo)-1]
	}
	// popped holds the original forward commands, already oldest-first:
	// Undo pushed the batch onto redo newest-first, so popping from the
	// top here yields them back in their original application order.
	for _, e := range popped {
		e.cmd.Apply(q.sh)
	}
	q.applied = append(q.applied, popped...)
	q.notify()
	return true
}

// Reset discards all applied and redo history without touching the
// sheet, for callers that just replaced the sheet's data wholesale
// (spec.md §8 invariant 3) and need stale commands dropped rather than
// left pointing at rows that no longer exist.
func (q *Queue) Reset() {
	q.applied = nil
	q.redo = nil
	q.activeBatch = nil
	q.notify()
}

// History enumerates applied batches oldest-first with a human label and
// command count per batch.
func (q *Queue) History() []HistoryEntry {
	var out []HistoryEntry
	var cur *HistoryEntry
	for _, e := range q.applied {
		if cur == nil || cur.Batch != e.batch {
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &HistoryEntry{Batch: e.batch, Label: e.cmd.Label(), CommandCount: 0}
		}
		cur.CommandCount++
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}
