// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package schema

import (
	"fmt"
	"regexp"

	"github.com/iancoleman/strcase"
	"github.com/tabulon-dev/tabulon/internal/codec"
)

// Type is a column's declared cell type (spec.md §3).
type Type string

const (
	TypeString   Type = "string"
	TypeNumber   Type = "number"
	TypeInt      Type = "int"
	TypeUint     Type = "uint"
	TypeBoolean  Type = "boolean"
	TypeDate     Type = "date"
	TypeTime     Type = "time"
	TypeDateTime Type = "datetime"
	TypeEnum     Type = "enum"
	TypeTags     Type = "tags"
	TypeButton   Type = "button"
	TypeLink     Type = "link"
)

// Column is an immutable column definition (spec.md §3).
type Column struct {
	Key      string
	Type     Type
	Header   string
	Readonly bool
	Unique   bool
	Nullable bool
	Width    int
	WrapText bool

	// NonNegative rejects negative values for a number column (spec.md
	// §7's "Expected a non-negative number"), the float counterpart of
	// TypeUint's integer-only non-negative check.
	NonNegative bool

	Style            StyleDelta
	Formula          Formula
	ConditionalStyle ConditionalStyle

	NumberFormat *codec.NumberFormat // number, int, uint
	DateFormat   *codec.DateFormat   // date, time, datetime
	BoolFormat   *codec.BoolFormat   // boolean

	EnumOptions []string // enum
	TagOptions  []string // tags; nil means any tag is allowed
	MaxLength   *int     // string
	Pattern     *regexp.Regexp
}

// DisplayHeader returns Header if set, else Key with its word
// boundaries turned into spaces and lower-cased (e.g. "unit_price" ->
// "unit price"), mirroring how the teacher
// derives labels for generated form fields.
func (c Column) DisplayHeader() string {
	if c.Header != "" {
		return c.Header
	}
	return strcase.ToDelimited(c.Key, ' ')
}

// validate checks a single column definition for internal consistency.
// Unknown format keys are a construction-time error except for date
// patterns, which the codec package itself coerces to a safe preset
// rather than rejecting (spec.md §9).
func (c Column) validate() error {
	if c.Key == "" {
		return fmt.Errorf("column: key must not be empty")
	}
	switch c.Type {
	case TypeString, TypeNumber, TypeInt, TypeUint, TypeBoolean,
		TypeDate, TypeTime, TypeDateTime, TypeEnum, TypeTags,
		TypeButton, TypeLink:
	default:
		return fmt.Errorf("column %q: unknown type %q", c.Key, c.Type)
	}
	if c.NumberFormat != nil && c.Type != TypeNumber && c.Type != TypeInt && c.Type != TypeUint {
		return fmt.Errorf("column %q: numberFormat only applies to number/int/uint columns", c.Key)
	}
	if c.DateFormat != nil && c.Type != TypeDate && c.Type != TypeTime && c.Type != TypeDateTime {
		return fmt.Errorf("column %q: dateFormat only applies to date/time/datetime columns", c.Key)
	}
	if c.BoolFormat != nil && c.Type != TypeBoolean {
		return fmt.Errorf("column %q: boolFormat only applies to boolean columns", c.Key)
	}
	if c.Type == TypeEnum && len(c.EnumOptions) == 0 {
		return fmt.Errorf("column %q: enum columns require enumOptions", c.Key)
	}
	if (c.Type == TypeInt || c.Type == TypeUint) && c.NumberFormat != nil {
		switch c.NumberFormat.Style {
		case codec.StyleDecimal, codec.StyleScientific, codec.StyleBinary, codec.StyleOctal, codec.StyleHex:
		default:
			return fmt.Errorf("column %q: unknown integer format %q", c.Key, c.NumberFormat.Style)
		}
	}
	if c.Type == TypeNumber && c.NumberFormat != nil {
		switch c.NumberFormat.Style {
		case codec.StyleDecimal, codec.StyleScientific:
		default:
			return fmt.Errorf("column %q: number columns cannot use %q format", c.Key, c.NumberFormat.Style)
		}
	}
	return nil
}
