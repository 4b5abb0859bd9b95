// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package derive implements the derivation pipeline (spec C4): for a
// (row, column) pair it runs formula, conditional style, uniqueness,
// validation, style merge, and format, in that mandatory order, and
// memoizes the result in a bounded LRU keyed by
// (rowId, colKey, rowVersion, schemaVersion, viewVersion). Grounded on
// the teacher's internal/app/view.go single-pass table-row renderer,
// generalized from house/project/vendor-specific column logic to the
// schema-driven pipeline of spec.md §4.2, and on kasuganosora-sqlexec's
// use of dgraph-io/ristretto for a bounded result cache.
package derive

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

// Result is the derivation pipeline's output for one cell (spec.md §4.2).
type Result struct {
	Value        schema.Value
	Text         string
	TextOverride bool
	Style        schema.StyleDelta
	Diagnostic   *schema.Diagnostic
}

type cacheKey struct {
	rowID         sheet.RowID
	colKey        string
	rowVersion    uint64
	schemaVersion uint64
	viewVersion   uint64
}

// averageEntryCost is a rough per-entry byte estimate used to translate a
// configured cache byte budget into ristretto's cost units; the cache
// does not track exact Result sizes.
const averageEntryCost = 256

// Pipeline runs the derivation pipeline for one sheet, with a bounded
// memoization cache.
type Pipeline struct {
	sheet   *sheet.Sheet
	cache   *ristretto.Cache[cacheKey, Result]
	maxCost int64
}

// NewPipeline builds a Pipeline over sh with a cache budgeted to
// approximately cacheSizeBytes.
func NewPipeline(sh *sheet.Sheet, cacheSizeBytes int64) (*Pipeline, error) {
	entries := cacheSizeBytes / averageEntryCost
	if entries < 64 {
		entries = 64
	}
	cache, err := ristretto.NewCache(&ristretto.Config[cacheKey, Result]{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Pipeline{sheet: sh, cache: cache, maxCost: entries}, nil
}

// Close releases the pipeline's cache resources.
func (p *Pipeline) Close() {
	p.cache.Close()
}

// Invalidate drops every cached result. Callers use this when a schema
// change means cached (rowVersion, schemaVersion, viewVersion) keys could
// otherwise collide with stale entries from before the change.
func (p *Pipeline) Invalidate() {
	p.cache.Clear()
}

// Cell returns the derived result for (rowID, colKey), computing and
// caching it if not already memoized for the current version triple.
func (p *Pipeline) Cell(rowID sheet.RowID, colKey string) Result {
	key := cacheKey{
		rowID:         rowID,
		colKey:        colKey,
		rowVersion:    p.sheet.GetRowVersion(rowID),
		schemaVersion: p.sheet.GetSchemaVersion(),
		viewVersion:   p.sheet.GetViewVersion(),
	}
	if cached, ok := p.cache.Get(key); ok {
		return cached
	}
	result := p.compute(rowID, colKey)
	p.cache.Set(key, result, 1)
	p.cache.Wait()
	return result
}

func (p *Pipeline) compute(rowID sheet.RowID, colKey string) Result {
	col, ok := p.sheet.Schema().Column(colKey)
	if !ok {
		return Result{Value: schema.Null()}
	}
	row := p.sheet.Row(rowID)

	value := row.Value(colKey)
	style := col.Style
	var diag *schema.Diagnostic
	textOverride := false

	// Step 1: formula.
	if col.Formula != nil {
		res, err := col.Formula(row)
		if err != nil {
			diag = &schema.Diagnostic{Level: schema.LevelError, Source: schema.SourceFormula, Message: err.Error()}
			textOverride = true
		} else {
			value = res.Value
			if res.Warning != nil && diag == nil {
				diag = &schema.Diagnostic{Level: schema.LevelWarning, Source: schema.SourceFormula, Message: res.Warning.Error()}
			}
		}
	}

	// Step 2: conditional style.
	if col.ConditionalStyle != nil {
		sres, err := col.ConditionalStyle(row)
		if err != nil {
			if diag == nil {
				diag = &schema.Diagnostic{Level: schema.LevelError, Source: schema.SourceConditionalStyle, Message: err.Error()}
				textOverride = true
			}
		} else {
			style = style.Merge(sres.Style)
			if sres.Warning != nil && diag == nil {
				diag = &schema.Diagnostic{Level: schema.LevelWarning, Source: schema.SourceConditionalStyle, Message: sres.Warning.Error()}
			}
		}
	}

	// Step 3: uniqueness.
	if diag == nil && col.Unique && !value.IsEmpty() {
		if p.hasDuplicate(colKey, rowID, value) {
			diag = &schema.Diagnostic{Level: schema.LevelError, Source: schema.SourceUnique, Message: "Duplicate value"}
		}
	}

	// Step 4: validation.
	if diag == nil {
		diag = schema.Validate(col, value)
	}

	// Step 5: style merge. column-base and conditional-style were already
	// folded into style above; the per-cell override set by
	// Sheet.SetCellStyle/Controller.ApplyStyleToSelection goes last so it
	// wins per field over both.
	if delta, ok := p.sheet.CellStyle(rowID, colKey); ok {
		style = style.Merge(delta)
	}

	// Step 6: format.
	text := schema.ErrorTextOverride
	negativeRed := false
	if !textOverride {
		text, negativeRed = formatValue(col, value)
	}
	if negativeRed {
		red := "red"
		style = style.Merge(schema.StyleDelta{TextColor: &red})
	}

	return Result{
		Value:        value,
		Text:         text,
		TextOverride: textOverride,
		Style:        style,
		Diagnostic:   diag,
	}
}

// hasDuplicate scans the column for another row whose step-1 value equals
// value. It recomputes each candidate row's formula value directly rather
// than recursing through Cell, so uniqueness checks never themselves
// populate or depend on the result cache.
func (p *Pipeline) hasDuplicate(colKey string, rowID sheet.RowID, value schema.Value) bool {
	col, _ := p.sheet.Schema().Column(colKey)
	for _, other := range p.sheet.Rows() {
		if other == rowID {
			continue
		}
		row := p.sheet.Row(other)
		candidate := row.Value(colKey)
		if col.Formula != nil {
			if res, err := col.Formula(row); err == nil {
				candidate = res.Value
			} else {
				continue
			}
		}
		if !candidate.IsEmpty() && candidate.Equal(value) {
			return true
		}
	}
	return false
}
