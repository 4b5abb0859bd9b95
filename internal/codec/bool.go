// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package codec

// BoolFormat configures boolean rendering (spec.md §6): the default
// checkbox glyphs, a single label shown only when true, or a
// [trueLabel, falseLabel] pair.
type BoolFormat struct {
	// Mode selects which of the three renderings below applies.
	Mode       BoolFormatMode
	TrueLabel  string
	FalseLabel string
}

type BoolFormatMode int

const (
	BoolModeCheckbox BoolFormatMode = iota
	BoolModeSingleLabel
	BoolModePair
)

const (
	CheckboxChecked   = "☑" // ☑
	CheckboxUnchecked = "☐" // ☐
)

// FormatBool renders a boolean per f.
func FormatBool(f BoolFormat, v bool) string {
	switch f.Mode {
	case BoolModeSingleLabel:
		if v {
			return f.TrueLabel
		}
		return ""
	case BoolModePair:
		if v {
			return f.TrueLabel
		}
		return f.FalseLabel
	default:
		if v {
			return CheckboxChecked
		}
		return CheckboxUnchecked
	}
}
