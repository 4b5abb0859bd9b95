// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package domx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

func newFixture(t *testing.T) (*DOM, *sheet.Sheet) {
	t.Helper()
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "flags", Type: schema.TypeTags},
		{Key: "approved", Type: schema.TypeBoolean, Unique: true},
		{Key: "open", Type: schema.TypeLink},
	})
	require.NoError(t, err)
	sh := sheet.New(s)
	sh.SetData([]sheet.Record{
		{
			"name":     schema.String("widget"),
			"flags":    schema.Tags([]string{"a", "b"}),
			"approved": schema.Bool(true),
			"open":     schema.Link(schema.ActionLink{Label: "View", Href: "/widget"}),
		},
	})
	p, err := derive.NewPipeline(sh, 1<<20)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	d := New(sh, p, view.NewState(), selection.New(sh), 12)
	return d, sh
}

func sheetRowKey(id sheet.RowID) string {
	return fmt.Sprintf("%d", id)
}

func findByAttr(n *html.Node, key, val string) *html.Node {
	for _, a := range n.Attr {
		if a.Key == key && a.Val == val {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByAttr(c, key, val); found != nil {
			return found
		}
	}
	return nil
}

func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func TestRenderBuildsTableWithColKeyAndRawAttributes(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "name")
	require.NotNil(t, td)
	assert.Equal(t, atom.Td.String(), td.Data)
	raw, ok := attrVal(td, "data-raw")
	require.True(t, ok)
	assert.Equal(t, "widget", raw)

	class, _ := attrVal(td, "class")
	assert.Contains(t, class, "editable")
}

func TestRenderAppliesCellStyleOverrideAsInlineCSS(t *testing.T) {
	d, sh := newFixture(t)
	id := sh.Rows()[0]
	sh.SetCellStyle(id, "name", schema.WithBold(true).Merge(schema.WithTextColor("green")))
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "name")
	require.NotNil(t, td)
	style, ok := attrVal(td, "style")
	require.True(t, ok)
	assert.Contains(t, style, "font-weight:bold")
	assert.Contains(t, style, "color:green")
}

func TestRenderOmitsStyleAttributeWhenUnstyled(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "name")
	require.NotNil(t, td)
	_, ok := attrVal(td, "style")
	assert.False(t, ok)
}

func TestRenderMarksActiveCell(t *testing.T) {
	d, sh := newFixture(t)
	id := sh.Rows()[0]
	d.SetActiveCell(sheetRowKey(id), "name")
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "name")
	require.NotNil(t, td)
	class, _ := attrVal(td, "class")
	assert.Contains(t, class, "active-cell")
}

func TestRenderTagsProducesChipsWithRemoveButtons(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "flags")
	require.NotNil(t, td)

	var chips int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "button" {
			chips++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(td)
	assert.Equal(t, 2, chips)
}

func TestRenderLinkProducesActionElement(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "open")
	require.NotNil(t, td)
	action := findByAttr(td, "data-kind", "link")
	require.NotNil(t, action)
}

func TestRenderUniqueBooleanRendersRadioClass(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())

	td := findByAttr(d.Root(), "data-col-key", "approved")
	require.NotNil(t, td)
	radio := findByAttr(td, "class", "radio radio-current")
	assert.NotNil(t, radio)
}

func TestRenderUniqueBooleanCommitTransitionPaintsPreviousAndCurrent(t *testing.T) {
	d, sh := newFixture(t)
	sh.SetData([]sheet.Record{
		{"name": schema.String("a"), "flags": schema.Tags(nil), "approved": schema.Bool(true), "open": schema.Link(schema.ActionLink{Label: "View", Href: "/a"})},
		{"name": schema.String("b"), "flags": schema.Tags(nil), "approved": schema.Bool(false), "open": schema.Link(schema.ActionLink{Label: "View", Href: "/b"})},
	})
	rows := sh.Rows()
	a, b := rows[0], rows[1]

	sh.SetCell(a, "approved", schema.Bool(false), true)
	sh.SetCell(b, "approved", schema.Bool(true), true)

	require.NoError(t, d.Render())

	tds := d.Root()
	var aTD, bTD *html.Node
	walkRows(tds, func(rowID sheet.RowID, td *html.Node) {
		if val, ok := attrVal(td, "data-col-key"); ok && val == "approved" {
			switch rowID {
			case a:
				aTD = td
			case b:
				bTD = td
			}
		}
	})
	require.NotNil(t, aTD)
	require.NotNil(t, bTD)

	aRadio := findByAttr(aTD, "class", "radio radio-previous")
	assert.NotNil(t, aRadio)
	bRadio := findByAttr(bTD, "class", "radio radio-current")
	assert.NotNil(t, bRadio)
}

func walkRows(n *html.Node, fn func(sheet.RowID, *html.Node)) {
	var rowID sheet.RowID
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == atom.Tr.String() {
			if raw, ok := attrVal(n, "data-row-id"); ok {
				var id uint64
				fmt.Sscanf(raw, "%d", &id)
				rowID = sheet.RowID(id)
			}
		}
		if n.Type == html.ElementNode && n.Data == atom.Td.String() {
			fn(rowID, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
}

func TestEndFrameClearsMeasurementCache(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())
	assert.NotEmpty(t, d.measureCache)
	d.EndFrame()
	assert.Empty(t, d.measureCache)
}

func TestHitTestUnsupported(t *testing.T) {
	d, _ := newFixture(t)
	require.NoError(t, d.Render())
	hit := d.HitTest(1, 1)
	assert.Equal(t, 0, int(hit.Kind))
}
