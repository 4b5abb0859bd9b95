// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package ssr implements the server-side rendering contract (spec C10,
// §4.7/§6): a single, non-incremental, non-interactive HTML emission of
// a sheet for a given view, specified only by its contract per
// spec.md's framing — no diffing, no client hydration. It reuses
// internal/render/domx's node-building instead of re-implementing a
// second HTML tree, then serializes once with golang.org/x/net/html.
package ssr

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/render/domx"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

const measureWidth = 12

// Render drains sh through the view state and the derivation pipeline
// and serializes the resulting table to a static HTML string. It builds
// a scratch domx.DOM rather than sharing a live one, since the SSR path
// has no active cell or live selection to preserve across calls.
func Render(sh *sheet.Sheet, pipeline *derive.Pipeline, viewSt *view.State) (string, error) {
	dom := domx.New(sh, pipeline, viewSt, selection.New(sh), measureWidth)
	if err := dom.Render(); err != nil {
		return "", err
	}
	defer dom.EndFrame()

	var b strings.Builder
	if err := html.Render(&b, dom.Root()); err != nil {
		return "", err
	}
	return b.String(), nil
}
