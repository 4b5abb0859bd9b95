// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package schema defines the column schema registry (spec C2) and the
// tagged-union cell value type shared by the data model, derivation
// pipeline, and renderers.
package schema

import "time"

// Kind tags the active member of a Value sum type.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindEnum
	KindTags
	KindLookup
	KindButton
	KindLink
)

// ActionButton is the value carried by a button-kind cell. Label is always
// populated; Command/CommandFor are optional but must appear together.
type ActionButton struct {
	Label      string
	Command    string
	CommandFor string
}

// ActionLink is the value carried by a link-kind cell.
type ActionLink struct {
	Label  string
	Href   string
	Target string
}

// Lookup is a labeled reference to an external entity: the display label
// plus the raw underlying value (id, record, whatever the host supplies).
type Lookup struct {
	Label string
	Raw   any
}

// Value is a dynamically-typed cell value modeled as a tagged union rather
// than `any`, so the derivation pipeline and format caches can switch on
// Kind explicitly instead of doing runtime type assertions everywhere.
type Value struct {
	kind   Kind
	str    string
	num    float64
	b      bool
	t      time.Time
	tags   []string
	lookup Lookup
	button ActionButton
	link   ActionLink
}

func Null() Value                { return Value{kind: KindNull} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value     { return Value{kind: KindDate, t: t} }
func Enum(label string) Value    { return Value{kind: KindEnum, str: label} }
func Tags(tags []string) Value   { return Value{kind: KindTags, tags: append([]string(nil), tags...)} }
func LookupValue(l Lookup) Value { return Value{kind: KindLookup, lookup: l} }
func Button(b ActionButton) Value { return Value{kind: KindButton, button: b} }
func Link(l ActionLink) Value     { return Value{kind: KindLink, link: l} }

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the raw string payload for String/Enum cells.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString, KindEnum:
		return v.str, true
	default:
		return "", false
	}
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind == KindNumber {
		return v.num, true
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

func (v Value) AsTime() (time.Time, bool) {
	if v.kind == KindDate {
		return v.t, true
	}
	return time.Time{}, false
}

func (v Value) AsTags() ([]string, bool) {
	if v.kind == KindTags {
		return v.tags, true
	}
	return nil, false
}

func (v Value) AsLookup() (Lookup, bool) {
	if v.kind == KindLookup {
		return v.lookup, true
	}
	return Lookup{}, false
}

func (v Value) AsButton() (ActionButton, bool) {
	if v.kind == KindButton {
		return v.button, true
	}
	return ActionButton{}, false
}

func (v Value) AsLink() (ActionLink, bool) {
	if v.kind == KindLink {
		return v.link, true
	}
	return ActionLink{}, false
}

// Label unwraps enum/tags/lookup-labeled values to a display string, per
// spec.md §3 ("For enum/tags/lookup-labeled objects, unwrap to label or
// string array"). Tags are joined with ", "; strings, lookups, buttons,
// links and booleans give their text form; Null, Number and Date values
// give an empty string.
func (v Value) Label() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString, KindEnum:
		return v.str
	case KindTags:
		out := ""
		for i, t := range v.tags {
			if i > 0 {
				out += ", "
			}
			out += t
		}
		return out
	case KindLookup:
		return v.lookup.Label
	case KindButton:
		return v.button.Label
	case KindLink:
		return v.link.Label
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Equal implements the value-semantic equality spec.md §4.1 requires for
// pending-vs-raw comparison: Date values compare by timestamp, tags
// compare element-wise, everything else compares by primitive/identity
// equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindEnum:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindDate:
		return v.t.Equal(other.t)
	case KindTags:
		if len(v.tags) != len(other.tags) {
			return false
		}
		for i := range v.tags {
			if v.tags[i] != other.tags[i] {
				return false
			}
		}
		return true
	case KindLookup:
		return v.lookup.Label == other.lookup.Label
	case KindButton:
		return v.button == other.button
	case KindLink:
		return v.link == other.link
	default:
		return false
	}
}

// IsEmpty reports whether the value counts as "empty" for uniqueness
// purposes (spec.md §3: "among non-empty values... duplicates mark...").
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindEnum:
		return v.str == ""
	case KindTags:
		return len(v.tags) == 0
	default:
		return false
	}
}
