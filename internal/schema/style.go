// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package schema

// Align is the base horizontal alignment for a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// StyleDelta is a sparse set of style overrides. Every field is a pointer
// so "unset" (don't override) is distinguishable from "set to false/empty".
// Deltas stack column-base -> conditional -> cell-style, last-wins per
// field (spec.md §3).
type StyleDelta struct {
	Bold            *bool
	Italic          *bool
	Underline       *bool
	Strike          *bool
	TextColor       *string
	BackgroundColor *string
	Align           *Align
}

// Merge overlays non-nil fields of `over` onto a copy of the receiver and
// returns the result; `over` wins per field when both are set.
func (d StyleDelta) Merge(over StyleDelta) StyleDelta {
	out := d
	if over.Bold != nil {
		out.Bold = over.Bold
	}
	if over.Italic != nil {
		out.Italic = over.Italic
	}
	if over.Underline != nil {
		out.Underline = over.Underline
	}
	if over.Strike != nil {
		out.Strike = over.Strike
	}
	if over.TextColor != nil {
		out.TextColor = over.TextColor
	}
	if over.BackgroundColor != nil {
		out.BackgroundColor = over.BackgroundColor
	}
	if over.Align != nil {
		out.Align = over.Align
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

// WithBold returns a StyleDelta with Bold set, for convenient construction
// by hosts and tests.
func WithBold(b bool) StyleDelta { return StyleDelta{Bold: boolPtr(b)} }

// WithBackground returns a StyleDelta with BackgroundColor set.
func WithBackground(color string) StyleDelta { return StyleDelta{BackgroundColor: &color} }

// WithTextColor returns a StyleDelta with TextColor set.
func WithTextColor(color string) StyleDelta { return StyleDelta{TextColor: &color} }
