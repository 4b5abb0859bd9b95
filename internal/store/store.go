// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package store implements commit-mode persistence (ambient addition,
// SPEC_FULL.md §3): a gorm-backed SQLite store over the vendored
// internal/store/sqlite dialector. Rows are persisted as
// (sheetID, rowID, columnKey, value, version) tuples in a single wide
// cell_values table plus a rows table carrying id/display-index/
// version, so an arbitrary schema can be stored without per-column DDL.
// Grounded on the teacher's internal/data/store.go (gorm Store wrapping
// a single connection, AutoMigrate, Open/Close).
package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/store/sqlite"
)

// RowRecord is one persisted row's identity and bookkeeping.
type RowRecord struct {
	ID           uint   `gorm:"primaryKey"`
	SheetID      string `gorm:"index:idx_row_sheet,priority:1"`
	RowID        uint64 `gorm:"index:idx_row_sheet,priority:2"`
	DisplayIndex int
	Version      uint64
}

func (RowRecord) TableName() string { return "rows" }

// CellValue is one persisted (row, column) cell, encoded to a
// kind-tagged text form so an arbitrary schema needs no per-column DDL.
type CellValue struct {
	ID        uint   `gorm:"primaryKey"`
	SheetID   string `gorm:"uniqueIndex:idx_cell_addr,priority:1"`
	RowID     uint64 `gorm:"uniqueIndex:idx_cell_addr,priority:2"`
	ColumnKey string `gorm:"uniqueIndex:idx_cell_addr,priority:3"`
	ValueKind string
	ValueText string
	Version   uint64
}

func (CellValue) TableName() string { return "cell_values" }

// Store wraps a single SQLite connection, grounded on the teacher's
// internal/data.Store.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) a SQLite-backed store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(
		sqlite.Open(path, "PRAGMA foreign_keys = ON", "PRAGMA journal_mode = WAL"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying db: %w", err)
	}
	return sqlDB.Close()
}

// AutoMigrate creates/updates the rows and cell_values tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&RowRecord{}, &CellValue{})
}

// SaveSheet persists sh's entire committed state under sheetID,
// replacing any prior rows for that id: a full drain-and-replace, not an
// incremental diff. Controller.Commit does not call it; the entry points
// (cmd/tabulon, cmd/tabulonsrv) do when they persist the sheet.
func (s *Store) SaveSheet(sheetID string, sh *sheet.Sheet) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sheet_id = ?", sheetID).Delete(&RowRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sheet_id = ?", sheetID).Delete(&CellValue{}).Error; err != nil {
			return err
		}

		keys := sh.Schema().Keys()
		for _, rowID := range sh.Rows() {
			rec := RowRecord{
				SheetID:      sheetID,
				RowID:        uint64(rowID),
				DisplayIndex: sh.IndexOf(rowID),
				Version:      sh.GetRowVersion(rowID),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			for _, colKey := range keys {
				kind, text := encodeValue(sh.GetRawCell(rowID, colKey))
				cell := CellValue{
					SheetID:   sheetID,
					RowID:     uint64(rowID),
					ColumnKey: colKey,
					ValueKind: kind,
					ValueText: text,
					Version:   sh.GetRowVersion(rowID),
				}
				if err := tx.Create(&cell).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadSheet reads back every row persisted under sheetID as sheet.Record
// values ordered by display index, ready to pass to Sheet.SetData.
func (s *Store) LoadSheet(sheetID string) ([]sheet.Record, error) {
	var rows []RowRecord
	if err := s.db.Where("sheet_id = ?", sheetID).Order("display_index").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}

	var cells []CellValue
	if err := s.db.Where("sheet_id = ?", sheetID).Find(&cells).Error; err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	byRow := make(map[uint64]sheet.Record)
	for _, c := range cells {
		rec, ok := byRow[c.RowID]
		if !ok {
			rec = sheet.Record{}
			byRow[c.RowID] = rec
		}
		rec[c.ColumnKey] = decodeValue(c.ValueKind, c.ValueText)
	}

	out := make([]sheet.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, byRow[r.RowID])
	}
	return out, nil
}

// tagsSeparator joins a tags value's elements; chosen as a control
// character unlikely to appear in user-entered tag text.
const tagsSeparator = "\x1f"

func encodeValue(v schema.Value) (kind, text string) {
	switch v.Kind() {
	case schema.KindNull:
		return "null", ""
	case schema.KindString:
		s, _ := v.AsString()
		return "string", s
	case schema.KindEnum:
		s, _ := v.AsString()
		return "enum", s
	case schema.KindNumber:
		n, _ := v.AsNumber()
		return "number", strconv.FormatFloat(n, 'g', -1, 64)
	case schema.KindBool:
		b, _ := v.AsBool()
		return "bool", strconv.FormatBool(b)
	case schema.KindDate:
		t, _ := v.AsTime()
		return "date", t.Format(time.RFC3339Nano)
	case schema.KindTags:
		tags, _ := v.AsTags()
		return "tags", strings.Join(tags, tagsSeparator)
	case schema.KindLookup:
		l, _ := v.AsLookup()
		return "lookup", l.Label
	case schema.KindButton:
		b, _ := v.AsButton()
		return "button", strings.Join([]string{b.Label, b.Command, b.CommandFor}, tagsSeparator)
	case schema.KindLink:
		l, _ := v.AsLink()
		return "link", strings.Join([]string{l.Label, l.Href, l.Target}, tagsSeparator)
	default:
		return "null", ""
	}
}

func decodeValue(kind, text string) schema.Value {
	switch kind {
	case "string":
		return schema.String(text)
	case "enum":
		return schema.Enum(text)
	case "number":
		n, _ := strconv.ParseFloat(text, 64)
		return schema.Number(n)
	case "bool":
		b, _ := strconv.ParseBool(text)
		return schema.Bool(b)
	case "date":
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return schema.Null()
		}
		return schema.Date(t)
	case "tags":
		if text == "" {
			return schema.Tags(nil)
		}
		return schema.Tags(strings.Split(text, tagsSeparator))
	case "lookup":
		return schema.LookupValue(schema.Lookup{Label: text})
	case "button":
		parts := strings.Split(text, tagsSeparator)
		b := schema.ActionButton{Label: parts[0]}
		if len(parts) > 2 {
			b.Command, b.CommandFor = parts[1], parts[2]
		}
		return schema.Button(b)
	case "link":
		parts := strings.Split(text, tagsSeparator)
		l := schema.ActionLink{Label: parts[0]}
		if len(parts) > 2 {
			l.Href, l.Target = parts[1], parts[2]
		}
		return schema.Link(l)
	default:
		return schema.Null()
	}
}
