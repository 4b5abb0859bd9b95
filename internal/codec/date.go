// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package codec

import (
	"sort"
	"strings"
	"time"
)

// DateKind selects which token subset and preset family a DateFormat uses.
type DateKind int

const (
	KindDate DateKind = iota
	KindTime
	KindDateTime
)

// DateFormat configures date/time/datetime rendering (spec.md §6). Pattern
// is either empty (kind's ISO preset), a named preset, or a token pattern
// using the documented subset (yyyy, MM, dd, HH, hh, mm, ss, a, with
// '...' literal escapes).
type DateFormat struct {
	Kind    DateKind
	Pattern string
}

var dateTokenLayout = map[string]string{
	"yyyy": "2006",
	"MM":   "01",
	"dd":   "02",
	"HH":   "15",
	"hh":   "03",
	"mm":   "04",
	"ss":   "05",
	"a":    "PM",
}

// tokensByLength lists recognized tokens longest-first so the scanner in
// translatePattern matches greedily ("yyyy" before "yy", "MM" before "M").
var tokensByLength = func() []string {
	toks := make([]string, 0, len(dateTokenLayout))
	for t := range dateTokenLayout {
		toks = append(toks, t)
	}
	sort.Slice(toks, func(i, j int) bool { return len(toks[i]) > len(toks[j]) })
	return toks
}()

var allowedTokensByKind = map[DateKind]map[string]bool{
	KindDate:     {"yyyy": true, "MM": true, "dd": true},
	KindTime:     {"HH": true, "hh": true, "mm": true, "ss": true, "a": true},
	KindDateTime: {"yyyy": true, "MM": true, "dd": true, "HH": true, "hh": true, "mm": true, "ss": true, "a": true},
}

var presetPatterns = map[DateKind]map[string]string{
	KindDate: {
		"iso": "yyyy-MM-dd",
		"us":  "MM/dd/yyyy",
		"eu":  "dd/MM/yyyy",
	},
	KindTime: {
		"iso": "HH:mm:ss",
		"24h": "HH:mm",
		"12h": "hh:mm a",
	},
	KindDateTime: {
		"iso":     "yyyy-MM-dd'T'HH:mm:ss",
		"iso-24h": "yyyy-MM-dd HH:mm",
		"iso-12h": "yyyy-MM-dd hh:mm a",
		"us":      "MM/dd/yyyy HH:mm:ss",
		"us-24h":  "MM/dd/yyyy HH:mm",
		"us-12h":  "MM/dd/yyyy hh:mm a",
		"eu":      "dd/MM/yyyy HH:mm:ss",
		"eu-24h":  "dd/MM/yyyy HH:mm",
		"eu-12h":  "dd/MM/yyyy hh:mm a",
	},
}

// isoPreset returns the ISO pattern for a kind, used as the coercion
// target when a pattern is unknown or uses disallowed tokens.
func isoPreset(kind DateKind) string {
	return presetPatterns[kind]["iso"]
}

// translatePattern converts a token pattern to a Go reference-time layout,
// returning the set of tokens used and whether every run was recognized
// (quoted literals and pass-through separator characters always succeed).
func translatePattern(pattern string) (layout string, used map[string]bool, ok bool) {
	used = map[string]bool{}
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		if pattern[i] == '\'' {
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return "", nil, false
			}
			b.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		matched := false
		for _, tok := range tokensByLength {
			if strings.HasPrefix(pattern[i:], tok) {
				b.WriteString(dateTokenLayout[tok])
				used[tok] = true
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			c := pattern[i]
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				// An unquoted letter that is not a known token makes the
				// whole pattern unrecognized.
				return "", nil, false
			}
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), used, true
}

// resolveLayout resolves a DateFormat to a concrete Go layout string,
// coercing to the kind's ISO preset when the pattern is unknown or uses
// tokens disallowed for its kind (spec.md §6).
func resolveLayout(f DateFormat) string {
	pattern := f.Pattern
	if pattern == "" {
		pattern = isoPreset(f.Kind)
	} else if preset, ok := presetPatterns[f.Kind][pattern]; ok {
		pattern = preset
	}

	layout, used, ok := translatePattern(pattern)
	if !ok {
		layout, _, _ = translatePattern(isoPreset(f.Kind))
		return layout
	}
	allowed := allowedTokensByKind[f.Kind]
	for tok := range used {
		if !allowed[tok] {
			layout, _, _ = translatePattern(isoPreset(f.Kind))
			return layout
		}
	}
	return layout
}

// FormatDate renders t according to f, coercing unknown/disallowed
// patterns to the kind's ISO preset.
func FormatDate(f DateFormat, t time.Time) string {
	return t.Format(resolveLayout(f))
}

// parseLayouts are tried in order when parsing a raw date/time/datetime
// string; the wire format is independent of the display pattern.
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
	"15:04",
}

// ParseDateTime parses a raw date/time/datetime string against the
// accepted wire formats, used by spec.md §8's
// "2026-02-09T10:11:12Z" example and by validation (§7).
func ParseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
