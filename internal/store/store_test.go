// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabulon.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AutoMigrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadSheetRoundTrips(t *testing.T) {
	sc, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "qty", Type: schema.TypeNumber},
		{Key: "done", Type: schema.TypeBoolean},
		{Key: "tags", Type: schema.TypeTags},
	})
	require.NoError(t, err)
	sh := sheet.New(sc)
	sh.SetData([]sheet.Record{
		{"name": schema.String("widget"), "qty": schema.Number(3), "done": schema.Bool(true), "tags": schema.Tags([]string{"a", "b"})},
		{"name": schema.String("gadget"), "qty": schema.Number(7), "done": schema.Bool(false), "tags": schema.Tags(nil)},
	})

	s := openTestStore(t)
	require.NoError(t, s.SaveSheet("products", sh))

	loaded, err := s.LoadSheet("products")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.True(t, loaded[0]["name"].Equal(schema.String("widget")))
	assert.True(t, loaded[0]["qty"].Equal(schema.Number(3)))
	assert.True(t, loaded[0]["done"].Equal(schema.Bool(true)))
	tags, ok := loaded[0]["tags"].AsTags()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	assert.True(t, loaded[1]["name"].Equal(schema.String("gadget")))
}

func TestSaveSheetReplacesPriorRows(t *testing.T) {
	sc, err := schema.New([]schema.Column{{Key: "name", Type: schema.TypeString}})
	require.NoError(t, err)
	sh := sheet.New(sc)
	sh.SetData([]sheet.Record{{"name": schema.String("first")}})

	s := openTestStore(t)
	require.NoError(t, s.SaveSheet("widgets", sh))

	sh.SetData([]sheet.Record{{"name": schema.String("second")}})
	require.NoError(t, s.SaveSheet("widgets", sh))

	loaded, err := s.LoadSheet("widgets")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0]["name"].Equal(schema.String("second")))
}

func TestEncodeDecodeActionValuesRoundTrip(t *testing.T) {
	link := schema.Link(schema.ActionLink{Label: "View", Href: "/x", Target: "_blank"})
	kind, text := encodeValue(link)
	decoded := decodeValue(kind, text)
	l, ok := decoded.AsLink()
	require.True(t, ok)
	assert.Equal(t, "View", l.Label)
	assert.Equal(t, "/x", l.Href)
	assert.Equal(t, "_blank", l.Target)
}
