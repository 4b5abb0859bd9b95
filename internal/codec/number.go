// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package codec implements the pure value codecs (spec C1): parsing and
// formatting numbers (decimal, scientific, signed binary/octal/hex
// integers) and dates (a token-based pattern subset). Grounded on the
// teacher's internal/data/validation.go (dustin/go-humanize-based money
// formatting) and generalized from dollars-only to arbitrary numeric
// columns.
package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"
)

// NumberStyle selects the numeric rendering family for a column.
type NumberStyle string

const (
	StyleDecimal    NumberStyle = "decimal"
	StyleScientific NumberStyle = "scientific"
	StyleBinary     NumberStyle = "binary"
	StyleOctal      NumberStyle = "octal"
	StyleHex        NumberStyle = "hex"
)

// NumberFormat configures number/integer rendering (spec.md §6).
type NumberFormat struct {
	Style             NumberStyle
	Precision         *int
	Scale             *float64
	ThousandSeparator bool
	NegativeRed       bool
	Signed            bool
}

func (f NumberFormat) precision() int {
	if f.Precision != nil {
		return *f.Precision
	}
	return 2
}

// FormatNumber renders a decimal or scientific number. The second return
// value reports whether the text should be painted in the negativeRed
// color (spec.md §6).
func FormatNumber(f NumberFormat, v float64) (text string, negativeRed bool) {
	scaled := v
	if f.Scale != nil {
		scaled = v * *f.Scale
	}
	prec := f.precision()

	switch f.Style {
	case StyleScientific:
		text = strconv.FormatFloat(scaled, 'e', prec, 64)
	default:
		if f.ThousandSeparator {
			text = humanize.CommafWithDigits(scaled, prec)
		} else {
			text = strconv.FormatFloat(scaled, 'f', prec, 64)
		}
	}

	if f.Signed && scaled > 0 {
		text = "+" + text
	}
	return text, f.NegativeRed && scaled < 0
}

// ParseNumber parses a decimal/scientific number string, tolerating
// thousand separators. "Infinity", "-Infinity", and "NaN" are rejected:
// spec.md §8 requires parse("Infinity") to be invalid.
func ParseNumber(input string) (float64, error) {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("invalid number %q", input)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid number %q", input)
	}
	return v, nil
}

// FormatInt renders a signed, prefixed binary/octal/hex string, e.g.
// "-0x1a", "0b101", "0o10" (spec.md §6, §8).
func FormatInt(style NumberStyle, v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		if v == math.MinInt64 {
			u = uint64(math.MaxInt64) + 1
		} else {
			u = uint64(-v)
		}
	}
	switch style {
	case StyleBinary:
		return sign + "0b" + strconv.FormatUint(u, 2)
	case StyleOctal:
		return sign + "0o" + strconv.FormatUint(u, 8)
	case StyleHex:
		return sign + "0x" + strconv.FormatUint(u, 16)
	default:
		return sign + strconv.FormatUint(u, 10)
	}
}

// ParseInt parses an optionally-signed, optionally-prefixed integer
// string ("+0x1a", "-0o10", "0b11"), NFKC-normalizing the input first per
// spec.md §6.
func ParseInt(input string) (int64, error) {
	s := norm.NFKC.String(strings.TrimSpace(input))
	if s == "" {
		return 0, fmt.Errorf("invalid integer %q", input)
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' {
		switch s[1] {
		case 'b', 'B':
			base = 2
			s = s[2:]
		case 'o', 'O':
			base = 8
			s = s[2:]
		case 'x', 'X':
			base = 16
			s = s[2:]
		}
	}
	if s == "" {
		return 0, fmt.Errorf("invalid integer %q", input)
	}

	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", input, err)
	}
	n := int64(u)
	if neg {
		n = -n
	}
	return n, nil
}
