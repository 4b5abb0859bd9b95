// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntAcceptsSignedPrefixed(t *testing.T) {
	v, err := ParseInt("+0x1a")
	require.NoError(t, err)
	assert.EqualValues(t, 26, v)

	v, err = ParseInt("-0o10")
	require.NoError(t, err)
	assert.EqualValues(t, -8, v)

	v, err = ParseInt("0b11")
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}

func TestParseIntRejectsInvalid(t *testing.T) {
	_, err := ParseInt("0b102")
	assert.Error(t, err)

	_, err = ParseInt("Infinity")
	assert.Error(t, err)
}

func TestFormatIntRoundTrip(t *testing.T) {
	assert.Equal(t, "-0x1a", FormatInt(StyleHex, -26))
	assert.Equal(t, "0b11", FormatInt(StyleBinary, 3))

	for _, tc := range []struct {
		style NumberStyle
		value int64
	}{
		{StyleHex, -26},
		{StyleBinary, 3},
		{StyleOctal, 8},
		{StyleHex, 0},
	} {
		text := FormatInt(tc.style, tc.value)
		parsed, err := ParseInt(text)
		require.NoError(t, err)
		assert.Equal(t, tc.value, parsed)
	}
}

func TestParseNumberRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"Infinity", "-Infinity", "NaN"} {
		_, err := ParseNumber(s)
		assert.Error(t, err, s)
	}
}

func TestParseNumberStripsThousandSeparators(t *testing.T) {
	v, err := ParseNumber("1,234.50")
	require.NoError(t, err)
	assert.InDelta(t, 1234.50, v, 0.0001)
}

func TestFormatNumberNegativeRed(t *testing.T) {
	text, red := FormatNumber(NumberFormat{Style: StyleDecimal, NegativeRed: true}, -5.5)
	assert.Equal(t, "-5.50", text)
	assert.True(t, red)

	text, red = FormatNumber(NumberFormat{Style: StyleDecimal, NegativeRed: true}, 5.5)
	assert.Equal(t, "5.50", text)
	assert.False(t, red)
}

func TestFormatNumberThousandSeparator(t *testing.T) {
	text, _ := FormatNumber(NumberFormat{Style: StyleDecimal, ThousandSeparator: true}, 1234567.891)
	assert.Equal(t, "1,234,567.89", text)
}
