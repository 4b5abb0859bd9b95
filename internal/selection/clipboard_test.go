// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTSVSplitsRowsAndCells(t *testing.T) {
	grid := ParseTSV("a\tb\nc\td\n")
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"a", "b"}, []string(grid[0]))
	assert.Equal(t, []string{"c", "d"}, []string(grid[1]))
}

func TestParseHTMLTableMatchesEquivalentTSV(t *testing.T) {
	tsv := "a\tb\nc\td\n"
	htmlSrc := `<table><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></table>`

	assert.Equal(t, ParseTSV(tsv), ParseHTMLTable(htmlSrc))
}

func TestParseHTMLTableRejectsMergedCells(t *testing.T) {
	htmlSrc := `<table><tr><td colspan="2">a</td></tr></table>`
	assert.Nil(t, ParseHTMLTable(htmlSrc))

	htmlSrc = `<table><tr><td rowspan="2">a</td></tr></table>`
	assert.Nil(t, ParseHTMLTable(htmlSrc))
}

func TestParseHTMLTableReturnsNilWithoutTable(t *testing.T) {
	assert.Nil(t, ParseHTMLTable("<div>no table here</div>"))
}
