// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package sheet

import "github.com/tabulon-dev/tabulon/internal/schema"

// sheetRow adapts a Sheet+RowID pair to schema.Row, so formulas and
// conditional styles see the pending-or-raw value for every column.
type sheetRow struct {
	s  *Sheet
	id RowID
}

func (r sheetRow) Value(colKey string) schema.Value {
	return r.s.GetCell(r.id, colKey)
}

// Row returns a schema.Row view over a row, for use by the derivation
// pipeline's formulas and conditional styles.
func (s *Sheet) Row(id RowID) schema.Row {
	return sheetRow{s: s, id: id}
}
