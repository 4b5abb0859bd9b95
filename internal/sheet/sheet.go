// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package sheet implements the data model (spec C3): rows identified by a
// stable id, a raw/pending overlay per cell, per-row style overrides, and
// the version counters the derivation pipeline and renderers use as cache
// keys. Grounded on the teacher's internal/app/model.go row bookkeeping,
// generalized from a fixed house/project/vendor record shape to an
// arbitrary schema-driven record.
package sheet

import (
	"sync"

	"github.com/tabulon-dev/tabulon/internal/schema"
)

// RowID is a stable per-row identifier, assigned by the sheet and never
// reused within a sheet's lifetime.
type RowID uint64

// Record is a caller-supplied row: a plain column-key -> value map. The
// sheet copies values out of a Record on insert; it never retains the
// caller's map.
type Record map[string]schema.Value

// Listener is invoked synchronously after a mutation leaves the sheet in a
// consistent state (spec.md §4.1's concurrency contract).
type Listener func()

type row struct {
	id       RowID
	raw      Record
	pending  Record
	styles   map[string]schema.StyleDelta
	version  uint64
	readonly bool
}

// uniqueBoolTransition tracks, for one unique boolean column, which row most
// recently committed a false->true flip and which row held that slot before
// it (spec.md §3's commit-transition tracking).
type uniqueBoolTransition struct {
	current     RowID
	hasCurrent  bool
	previous    RowID
	hasPrevious bool
}

// UniqueBooleanTransition is the public view of a unique boolean column's
// commit-transition state (spec.md §8's radio-current/radio-previous
// scenario).
type UniqueBooleanTransition struct {
	CurrentRowID  RowID
	HasCurrent    bool
	PreviousRowID RowID
	HasPrevious   bool
}

// Sheet is the mutable data model for one table: an ordered row list plus
// raw/pending overlays, row/schema/view version counters, and the column
// readonly set. All mutating methods are meant to be called from a single
// logical thread (the controller); Sheet performs no internal locking
// beyond what is needed to make that contract safe to violate accidentally
// in tests.
type Sheet struct {
	mu sync.Mutex

	schema *schema.Schema

	order   []RowID
	rows    map[RowID]*row
	nextID  RowID

	schemaVersion uint64
	viewVersion   uint64

	readonlyColumns map[string]bool

	uniqueBoolState map[string]*uniqueBoolTransition

	listeners []Listener
}

// New creates an empty sheet bound to a schema.
func New(s *schema.Schema) *Sheet {
	return &Sheet{
		schema:          s,
		rows:            make(map[RowID]*row),
		readonlyColumns: make(map[string]bool),
		uniqueBoolState: make(map[string]*uniqueBoolTransition),
	}
}

// Subscribe registers a listener invoked after every mutation. It returns
// an unsubscribe function.
func (s *Sheet) Subscribe(l Listener) func() {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.listeners[idx] = nil
		s.mu.Unlock()
	}
}

func (s *Sheet) notify() {
	for _, l := range s.listeners {
		if l != nil {
			l()
		}
	}
}

// SetColumnReadonly marks an entire column readonly regardless of
// per-row overrides.
func (s *Sheet) SetColumnReadonly(colKey string, readonly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if readonly {
		s.readonlyColumns[colKey] = true
	} else {
		delete(s.readonlyColumns, colKey)
	}
	s.viewVersion++
}

// SetData replaces the entire row set: clears pending overlays, styles,
// and versions, assigns fresh ids in order, and notifies once.
func (s *Sheet) SetData(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.rows = make(map[RowID]*row, len(records))
	s.nextID = 0

	for _, rec := range records {
		id := s.nextID
		s.nextID++
		s.rows[id] = &row{
			id:      id,
			raw:     cloneRecord(rec),
			pending: Record{},
			styles:  map[string]schema.StyleDelta{},
		}
		s.order = append(s.order, id)
	}
	s.viewVersion++
	s.notify()
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// Rows returns the current row ids in display order.
func (s *Sheet) Rows() []RowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RowID, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports the row count.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// GetCell returns the pending value if one is set, else the raw value.
func (s *Sheet) GetCell(id RowID, colKey string) schema.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return schema.Null()
	}
	if v, ok := r.pending[colKey]; ok {
		return v
	}
	return r.raw[colKey]
}

// GetRawCell returns the raw value, ignoring any pending overlay.
func (s *Sheet) GetRawCell(id RowID, colKey string) schema.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return schema.Null()
	}
	return r.raw[colKey]
}

// SetCell writes a value to a cell. When committed is true it writes
// straight to raw, drops any pending overlay for that cell, and bumps the
// row version. When committed is false it writes to the pending overlay,
// removing the overlay instead when the new value is equal (by
// schema.Value.Equal) to the raw value already there. Either way the row
// version is bumped and listeners are notified.
func (s *Sheet) SetCell(id RowID, colKey string, v schema.Value, committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return
	}
	if committed {
		old := r.raw[colKey]
		r.raw[colKey] = v
		delete(r.pending, colKey)
		s.trackUniqueBooleanTransitionLocked(colKey, id, old, v)
	} else {
		if raw, ok := r.raw[colKey]; ok && raw.Equal(v) {
			delete(r.pending, colKey)
		} else {
			r.pending[colKey] = v
		}
	}
	r.version++
	s.notify()
}

// ApplyPending commits every pending field of a row to raw and drops the
// overlay, bumping the row version.
func (s *Sheet) ApplyPending(id RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return
	}
	for k, v := range r.pending {
		old := r.raw[k]
		r.raw[k] = v
		s.trackUniqueBooleanTransitionLocked(k, id, old, v)
	}
	r.pending = Record{}
	r.version++
	s.notify()
}

// ClearPending drops a single row's pending overlay. Use ClearAllPending
// to drop every row's overlay at once.
func (s *Sheet) ClearPending(id RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return
	}
	r.pending = Record{}
	r.version++
	s.notify()
}

// ClearAllPending drops every row's pending overlay.
func (s *Sheet) ClearAllPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if len(r.pending) == 0 {
			continue
		}
		r.pending = Record{}
		r.version++
	}
	s.notify()
}

// PeekNextRowID returns the id InsertRowAt would mint for an unforced
// insert, without reserving it. Callers that must build an
// InsertRowCommand (which carries its own forced id so redo reinserts
// the same identity) use this to learn the id before the command is
// enqueued.
func (s *Sheet) PeekNextRowID() RowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// InsertRowAt inserts a record at index, clamped into [0, N]. forcedID, if
// non-nil, reuses that id instead of minting a new one (undo replay).
// Returns the inserted row's id.
func (s *Sheet) InsertRowAt(rec Record, index int, forcedID *RowID) RowID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 {
		index = 0
	}
	if index > len(s.order) {
		index = len(s.order)
	}

	var id RowID
	if forcedID != nil {
		id = *forcedID
		if id >= s.nextID {
			s.nextID = id + 1
		}
	} else {
		id = s.nextID
		s.nextID++
	}

	s.rows[id] = &row{
		id:      id,
		raw:     cloneRecord(rec),
		pending: Record{},
		styles:  map[string]schema.StyleDelta{},
	}
	s.order = append(s.order, 0)
	copy(s.order[index+1:], s.order[index:])
	s.order[index] = id

	s.viewVersion++
	s.notify()
	return id
}

// RowRecord returns a copy of a row's raw record, for callers (e.g. the
// controller's DeleteRow) that need to capture a row's body before
// removing it so a DeleteRowCommand can be inverted back into an
// InsertRowCommand.
func (s *Sheet) RowRecord(id RowID) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil
	}
	return cloneRecord(r.raw)
}

// RemoveRow splices a row out of the sheet, purging its pending overlay,
// style map, and version.
func (s *Sheet) RemoveRow(id RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return
	}
	delete(s.rows, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.viewVersion++
	s.notify()
}

// IndexOf returns the display index of a row, or -1 if absent.
func (s *Sheet) IndexOf(id RowID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rid := range s.order {
		if rid == id {
			return i
		}
	}
	return -1
}

// RowAt returns the row id at a display index, and whether it exists.
func (s *Sheet) RowAt(index int) (RowID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.order) {
		return 0, false
	}
	return s.order[index], true
}

// SetCellStyle sets a per-cell style override, merged on top of the
// column base style and any conditional style at render time.
func (s *Sheet) SetCellStyle(id RowID, colKey string, delta schema.StyleDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return
	}
	r.styles[colKey] = delta
	r.version++
	s.notify()
}

// CellStyle returns the per-cell style override for a cell, if any.
func (s *Sheet) CellStyle(id RowID, colKey string) (schema.StyleDelta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return schema.StyleDelta{}, false
	}
	d, ok := r.styles[colKey]
	return d, ok
}

// trackUniqueBooleanTransitionLocked updates a unique boolean column's
// commit-transition state. A true->false flip makes that row previous. A
// false->true flip makes that row current, and the row already holding the
// current slot (if any) becomes previous, so the outcome does not depend on
// which of the two commits lands first (spec.md §8).
// Callers must hold s.mu.
func (s *Sheet) trackUniqueBooleanTransitionLocked(colKey string, id RowID, old, v schema.Value) {
	col, ok := s.schema.Column(colKey)
	if !ok || col.Type != schema.TypeBoolean || !col.Unique {
		return
	}
	oldB, _ := old.AsBool()
	newB, _ := v.AsBool()
	if oldB == newB {
		return
	}
	t := s.uniqueBoolState[colKey]
	if t == nil {
		t = &uniqueBoolTransition{}
		s.uniqueBoolState[colKey] = t
	}
	if !newB {
		t.previous = id
		t.hasPrevious = true
		return
	}
	if t.hasCurrent && t.current != id {
		t.previous = t.current
		t.hasPrevious = true
	}
	t.current = id
	t.hasCurrent = true
}

// UniqueBooleanTransition returns the commit-transition state for a unique
// boolean column: the row currently holding true and the row that held it
// immediately before, if any (spec.md §3, §8).
func (s *Sheet) UniqueBooleanTransition(colKey string) UniqueBooleanTransition {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.uniqueBoolState[colKey]
	if !ok {
		return UniqueBooleanTransition{}
	}
	return UniqueBooleanTransition{
		CurrentRowID:  t.current,
		HasCurrent:    t.hasCurrent,
		PreviousRowID: t.previous,
		HasPrevious:   t.hasPrevious,
	}
}

// SetRowReadonly marks a single row readonly regardless of column.
func (s *Sheet) SetRowReadonly(id RowID, readonly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return
	}
	r.readonly = readonly
	s.viewVersion++
	s.notify()
}

// PendingCellCount returns the total number of cells across all rows that
// currently have a pending overlay value.
func (s *Sheet) PendingCellCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		n += len(r.pending)
	}
	return n
}

// IsRowReadonly reports whether a row is marked readonly.
func (s *Sheet) IsRowReadonly(id RowID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	return ok && r.readonly
}

// IsColumnReadonly reports whether an entire column is marked readonly,
// either via SetColumnReadonly or the schema's own Readonly flag.
func (s *Sheet) IsColumnReadonly(colKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readonlyColumns[colKey] {
		return true
	}
	if col, ok := s.schema.Column(colKey); ok {
		return col.Readonly
	}
	return false
}

// IsReadonly reports the union of row- and column-level readonly flags
// for a cell (spec.md §4.1).
func (s *Sheet) IsReadonly(id RowID, colKey string) bool {
	return s.IsRowReadonly(id) || s.IsColumnReadonly(colKey)
}

// GetRowVersion returns a row's version counter, used as part of the
// derivation cache key.
func (s *Sheet) GetRowVersion(id RowID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return 0
	}
	return r.version
}

// GetSchemaVersion returns the sheet's schema version counter.
func (s *Sheet) GetSchemaVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaVersion
}

// BumpSchemaVersion increments the schema version, used when the bound
// Schema's shape changes (e.g. a column is added or retyped upstream).
func (s *Sheet) BumpSchemaVersion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaVersion++
	s.notify()
}

// GetViewVersion returns the sheet's view version counter.
func (s *Sheet) GetViewVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewVersion
}

// Schema returns the schema this sheet is bound to.
func (s *Sheet) Schema() *schema.Schema {
	return s.schema
}
