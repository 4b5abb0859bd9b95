// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package schema implements the column registry (spec C2): column
// definitions, the tagged-union cell Value, diagnostics, style deltas,
// and formula/conditional-style contracts. Grounded on the teacher's
// internal/data/project.go field catalog, generalized from a fixed
// house-renovation field set to an arbitrary caller-supplied column list.
package schema

import "fmt"

// Schema is an ordered, keyed registry of column definitions. It is
// immutable once constructed; changing the shape of a sheet means
// constructing a new Schema and bumping the sheet's schema version
// (spec.md §4.1).
type Schema struct {
	columns []Column
	byKey   map[string]int
}

// New builds a Schema from an ordered column list, rejecting duplicate
// keys and internally inconsistent column definitions.
func New(columns []Column) (*Schema, error) {
	byKey := make(map[string]int, len(columns))
	for i, col := range columns {
		if err := col.validate(); err != nil {
			return nil, err
		}
		if _, dup := byKey[col.Key]; dup {
			return nil, fmt.Errorf("schema: duplicate column key %q", col.Key)
		}
		byKey[col.Key] = i
	}
	cp := make([]Column, len(columns))
	copy(cp, columns)
	return &Schema{columns: cp, byKey: byKey}, nil
}

// Columns returns the columns in declared order.
func (s *Schema) Columns() []Column {
	return s.columns
}

// Column looks up a column by key.
func (s *Schema) Column(key string) (Column, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Keys returns the column keys in declared order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.columns))
	for i, c := range s.columns {
		keys[i] = c.Key
	}
	return keys
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}
