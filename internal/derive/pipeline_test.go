// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package derive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

func newPipeline(t *testing.T, columns []schema.Column, records []sheet.Record) (*Pipeline, *sheet.Sheet) {
	t.Helper()
	s, err := schema.New(columns)
	require.NoError(t, err)
	sh := sheet.New(s)
	sh.SetData(records)
	p, err := NewPipeline(sh, 1<<20)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, sh
}

func TestComputedColumnFormulaAndReadonly(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "price", Type: schema.TypeNumber},
		{Key: "qty", Type: schema.TypeNumber},
		{Key: "total", Type: schema.TypeNumber, Readonly: true, Formula: func(r schema.Row) (schema.FormulaResult, error) {
			price, _ := r.Value("price").AsNumber()
			qty, _ := r.Value("qty").AsNumber()
			return schema.FormulaResult{Value: schema.Number(price * qty)}, nil
		}},
	}, []sheet.Record{{"price": schema.Number(10), "qty": schema.Number(2)}})

	id := sh.Rows()[0]
	result := p.Cell(id, "total")
	assert.Equal(t, "20.00", result.Text)
	assert.True(t, sh.IsReadonly(id, "total"))
}

func TestFormulaErrorProducesErrorDiagnosticAndTextOverride(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "e", Type: schema.TypeNumber, Formula: func(schema.Row) (schema.FormulaResult, error) {
			return schema.FormulaResult{}, errors.New("boom")
		}},
	}, []sheet.Record{{}})

	id := sh.Rows()[0]
	result := p.Cell(id, "e")
	assert.Equal(t, "#ERROR", result.Text)
	require.NotNil(t, result.Diagnostic)
	assert.Equal(t, schema.LevelError, result.Diagnostic.Level)
	assert.Equal(t, schema.SourceFormula, result.Diagnostic.Source)
	assert.Equal(t, "boom", result.Diagnostic.Message)
}

func TestFormulaWarningRetainsValue(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "w", Type: schema.TypeNumber, Formula: func(schema.Row) (schema.FormulaResult, error) {
			return schema.FormulaResult{Value: schema.Number(123), Warning: errors.New("warn")}, nil
		}},
	}, []sheet.Record{{}})

	id := sh.Rows()[0]
	result := p.Cell(id, "w")
	assert.Equal(t, "123.00", result.Text)
	require.NotNil(t, result.Diagnostic)
	assert.Equal(t, schema.LevelWarning, result.Diagnostic.Level)
	assert.Equal(t, "warn", result.Diagnostic.Message)
}

func TestFastPathAndStyledPathMatchTextWithoutConditionalStyle(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "plain", Type: schema.TypeString},
	}, []sheet.Record{{"plain": schema.String("hello")}})

	id := sh.Rows()[0]
	r1 := p.Cell(id, "plain")

	p2, sh2 := newPipeline(t, []schema.Column{
		{Key: "plain", Type: schema.TypeString, ConditionalStyle: func(schema.Row) (schema.StyleResult, error) {
			bg := "#eee"
			return schema.StyleResult{Style: schema.StyleDelta{BackgroundColor: &bg}}, nil
		}},
	}, []sheet.Record{{"plain": schema.String("hello")}})
	id2 := sh2.Rows()[0]
	r2 := p2.Cell(id2, "plain")

	assert.Equal(t, r1.Text, r2.Text)
	assert.NotEqual(t, r1.Style, r2.Style)
}

func TestUniquenessFlagsOnlyDuplicatedNonEmptyCells(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "sku", Type: schema.TypeString, Unique: true},
	}, []sheet.Record{
		{"sku": schema.String("A")},
		{"sku": schema.String("A")},
		{"sku": schema.String("")},
		{"sku": schema.String("B")},
	})

	rows := sh.Rows()
	r0 := p.Cell(rows[0], "sku")
	r1 := p.Cell(rows[1], "sku")
	r2 := p.Cell(rows[2], "sku")
	r3 := p.Cell(rows[3], "sku")

	require.NotNil(t, r0.Diagnostic)
	assert.Equal(t, schema.SourceUnique, r0.Diagnostic.Source)
	require.NotNil(t, r1.Diagnostic)
	assert.Nil(t, r2.Diagnostic)
	assert.Nil(t, r3.Diagnostic)
}

func TestCellStyleMergesOverConditionalAndColumnBaseLastWins(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{
			Key:   "status",
			Type:  schema.TypeString,
			Style: schema.WithTextColor("blue"),
			ConditionalStyle: func(schema.Row) (schema.StyleResult, error) {
				return schema.StyleResult{Style: schema.WithTextColor("orange")}, nil
			},
		},
	}, []sheet.Record{{"status": schema.String("ok")}})

	id := sh.Rows()[0]

	before := p.Cell(id, "status")
	require.NotNil(t, before.Style.TextColor)
	assert.Equal(t, "orange", *before.Style.TextColor, "conditional style wins over column base")

	sh.SetCellStyle(id, "status", schema.WithTextColor("green"))
	after := p.Cell(id, "status")
	require.NotNil(t, after.Style.TextColor)
	assert.Equal(t, "green", *after.Style.TextColor, "cell style wins over conditional style")
}

func TestSetCellStyleBumpsRowVersionInvalidatingCache(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "name", Type: schema.TypeString},
	}, []sheet.Record{{"name": schema.String("a")}})

	id := sh.Rows()[0]
	first := p.Cell(id, "name")
	assert.Nil(t, first.Style.Bold)

	sh.SetCellStyle(id, "name", schema.WithBold(true))
	second := p.Cell(id, "name")
	require.NotNil(t, second.Style.Bold)
	assert.True(t, *second.Style.Bold)
}

func TestCacheIsInvalidatedByRowVersion(t *testing.T) {
	p, sh := newPipeline(t, []schema.Column{
		{Key: "name", Type: schema.TypeString},
	}, []sheet.Record{{"name": schema.String("a")}})

	id := sh.Rows()[0]
	first := p.Cell(id, "name")
	assert.Equal(t, "a", first.Text)

	sh.SetCell(id, "name", schema.String("b"), true)
	second := p.Cell(id, "name")
	assert.Equal(t, "b", second.Text)
}
