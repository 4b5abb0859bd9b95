// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package render defines the shared renderer capability trait (spec
// C10): a Backend that the canvas (immediate-mode) and DOM
// (retained-mode) implementations both satisfy, so the controller
// drives either of them identically. SSR (internal/render/ssr) does not
// implement Backend; it is a single Render function over the DOM
// renderer's node tree. Grounded on the teacher's use of a single
// bubbletea tea.Model as the renderer substrate, generalized into an
// explicit interface so alternate backends can share the same
// controller wiring.
package render

// HitKind classifies what a pointer hit landed on (spec.md §4.5/§4.6).
type HitKind int

const (
	HitNone HitKind = iota
	HitCorner
	HitColumnHeader
	HitRowHeader
	HitBodyCell
	HitActionRegion
	HitFillHandle
)

// Hit describes the result of a hit-test at a point.
type Hit struct {
	Kind   HitKind
	RowKey string
	ColKey string
}

// Cursor is the logical pointer cursor a backend should present for a
// hit, per spec.md §4.5's cursor policy.
type Cursor string

const (
	CursorCell      Cursor = "cell"
	CursorCrosshair Cursor = "crosshair"
	CursorColResize Cursor = "col-resize"
	CursorPointer   Cursor = "pointer"
	CursorText      Cursor = "text"
	CursorDefault   Cursor = "default"
)

// Backend is the capability trait shared by the canvas and DOM
// renderers. Mount/Destroy bracket a backend's lifecycle; SetActiveCell
// and SetSelection update cursor/selection state without a full
// Render; Render repaints (or, for DOM, rebuilds the node tree of) the visible
// viewport; HitTest/HitTestAction resolve a pointer hit to a logical
// target.
type Backend interface {
	Mount() error
	SetActiveCell(rowKey, colKey string)
	SetSelection(rowKeys, colKeys []string)
	Render() error
	HitTest(x, y int) Hit
	HitTestAction(x, y int) (kind string, ok bool)
	Destroy()
}
