// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabulon-dev/tabulon/internal/codec"
)

func TestNewRejectsDuplicateKeys(t *testing.T) {
	_, err := New([]Column{
		{Key: "name", Type: TypeString},
		{Key: "name", Type: TypeNumber},
	})
	assert.Error(t, err)
}

func TestNewRejectsEmptyKey(t *testing.T) {
	_, err := New([]Column{{Key: "", Type: TypeString}})
	assert.Error(t, err)
}

func TestNewRejectsEnumWithoutOptions(t *testing.T) {
	_, err := New([]Column{{Key: "status", Type: TypeEnum}})
	assert.Error(t, err)
}

func TestNewRejectsMismatchedFormat(t *testing.T) {
	_, err := New([]Column{
		{Key: "title", Type: TypeString, NumberFormat: &codec.NumberFormat{Style: codec.StyleDecimal}},
	})
	assert.Error(t, err)
}

func TestSchemaColumnLookup(t *testing.T) {
	s, err := New([]Column{
		{Key: "qty", Type: TypeNumber, Header: "Quantity"},
		{Key: "sku", Type: TypeString},
	})
	require.NoError(t, err)

	col, ok := s.Column("qty")
	require.True(t, ok)
	assert.Equal(t, "Quantity", col.Header)

	_, ok = s.Column("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"qty", "sku"}, s.Keys())
	assert.Equal(t, 2, s.Len())
}

func TestColumnDisplayHeaderDerivesFromKey(t *testing.T) {
	col := Column{Key: "unit_price", Type: TypeNumber}
	assert.Equal(t, "unit price", col.DisplayHeader())
}
