// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package derive

import (
	"github.com/tabulon-dev/tabulon/internal/codec"
	"github.com/tabulon-dev/tabulon/internal/schema"
)

// formatValue produces the display text for a value per its column's
// type and configured format (spec.md §4.2 step 6, §6). The second
// return value reports whether the text should use the negativeRed
// color, for number/int/uint columns configured with NegativeRed.
func formatValue(col schema.Column, v schema.Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}

	switch col.Type {
	case schema.TypeNumber:
		n, ok := v.AsNumber()
		if !ok {
			return "", false
		}
		return codec.FormatNumber(numberFormat(col), n)

	case schema.TypeInt, schema.TypeUint:
		n, ok := v.AsNumber()
		if !ok {
			return "", false
		}
		nf := numberFormat(col)
		if nf.Style == codec.StyleBinary || nf.Style == codec.StyleOctal || nf.Style == codec.StyleHex {
			return codec.FormatInt(nf.Style, int64(n)), false
		}
		return codec.FormatNumber(nf, n)

	case schema.TypeBoolean:
		b, ok := v.AsBool()
		if !ok {
			return "", false
		}
		bf := codec.BoolFormat{}
		if col.BoolFormat != nil {
			bf = *col.BoolFormat
		}
		return codec.FormatBool(bf, b), false

	case schema.TypeDate, schema.TypeTime, schema.TypeDateTime:
		t, ok := v.AsTime()
		if !ok {
			return "", false
		}
		return codec.FormatDate(dateFormat(col), t), false

	default:
		return v.Label(), false
	}
}

func numberFormat(col schema.Column) codec.NumberFormat {
	if col.NumberFormat != nil {
		return *col.NumberFormat
	}
	return codec.NumberFormat{Style: codec.StyleDecimal}
}

func dateFormat(col schema.Column) codec.DateFormat {
	kind := codec.KindDate
	switch col.Type {
	case schema.TypeTime:
		kind = codec.KindTime
	case schema.TypeDateTime:
		kind = codec.KindDateTime
	}
	if col.DateFormat != nil {
		return *col.DateFormat
	}
	return codec.DateFormat{Kind: kind}
}
