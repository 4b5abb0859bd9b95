// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package ssr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

func TestRenderProducesStaticTable(t *testing.T) {
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString, Header: "Name"},
	})
	require.NoError(t, err)
	sh := sheet.New(s)
	sh.SetData([]sheet.Record{{"name": schema.String("apple")}})

	p, err := derive.NewPipeline(sh, 1<<20)
	require.NoError(t, err)
	defer p.Close()

	out, err := Render(sh, p, view.NewState())
	require.NoError(t, err)
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "data-col-key=\"name\"")
	assert.Contains(t, out, "apple")
}

func TestRenderRespectsHiddenColumns(t *testing.T) {
	s, err := schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString},
		{Key: "secret", Type: schema.TypeString},
	})
	require.NoError(t, err)
	sh := sheet.New(s)
	sh.SetData([]sheet.Record{{"name": schema.String("a"), "secret": schema.String("shh")}})

	p, err := derive.NewPipeline(sh, 1<<20)
	require.NoError(t, err)
	defer p.Close()

	viewSt := view.NewState()
	viewSt.SetColumnHidden("secret", true)

	out, err := Render(sh, p, viewSt)
	require.NoError(t, err)
	assert.NotContains(t, out, "shh")
}
