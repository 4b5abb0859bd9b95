// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package api

import (
	"fmt"

	"github.com/tabulon-dev/tabulon/internal/schema"
)

// valueDTO is the wire form of a schema.Value: a kind tag plus a
// kind-appropriate payload. schema.Value keeps no JSON tags of its own
// since it is a tagged union over unexported fields, so this package
// owns the wire mapping rather than the schema package reaching for a
// transport concern it otherwise has no need of.
type valueDTO struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

func encodeValue(v schema.Value) valueDTO {
	switch v.Kind() {
	case schema.KindNull:
		return valueDTO{Kind: "null"}
	case schema.KindString:
		s, _ := v.AsString()
		return valueDTO{Kind: "string", Value: s}
	case schema.KindEnum:
		s, _ := v.AsString()
		return valueDTO{Kind: "enum", Value: s}
	case schema.KindNumber:
		n, _ := v.AsNumber()
		return valueDTO{Kind: "number", Value: n}
	case schema.KindBool:
		b, _ := v.AsBool()
		return valueDTO{Kind: "bool", Value: b}
	case schema.KindDate:
		t, _ := v.AsTime()
		return valueDTO{Kind: "date", Value: t}
	case schema.KindTags:
		tags, _ := v.AsTags()
		return valueDTO{Kind: "tags", Value: tags}
	case schema.KindLookup:
		l, _ := v.AsLookup()
		return valueDTO{Kind: "lookup", Value: l.Label}
	case schema.KindButton:
		b, _ := v.AsButton()
		return valueDTO{Kind: "button", Value: map[string]string{
			"label": b.Label, "command": b.Command, "commandFor": b.CommandFor,
		}}
	case schema.KindLink:
		l, _ := v.AsLink()
		return valueDTO{Kind: "link", Value: map[string]string{
			"label": l.Label, "href": l.Href, "target": l.Target,
		}}
	default:
		return valueDTO{Kind: "null"}
	}
}

func decodeValue(dto valueDTO) (schema.Value, error) {
	switch dto.Kind {
	case "", "null":
		return schema.Null(), nil
	case "string":
		s, ok := dto.Value.(string)
		if !ok {
			return schema.Value{}, fmt.Errorf("value: expected string for kind %q", dto.Kind)
		}
		return schema.String(s), nil
	case "enum":
		s, ok := dto.Value.(string)
		if !ok {
			return schema.Value{}, fmt.Errorf("value: expected string for kind %q", dto.Kind)
		}
		return schema.Enum(s), nil
	case "number":
		n, ok := dto.Value.(float64)
		if !ok {
			return schema.Value{}, fmt.Errorf("value: expected number for kind %q", dto.Kind)
		}
		return schema.Number(n), nil
	case "bool":
		b, ok := dto.Value.(bool)
		if !ok {
			return schema.Value{}, fmt.Errorf("value: expected bool for kind %q", dto.Kind)
		}
		return schema.Bool(b), nil
	case "tags":
		raw, ok := dto.Value.([]any)
		if !ok {
			return schema.Value{}, fmt.Errorf("value: expected array for kind %q", dto.Kind)
		}
		tags := make([]string, 0, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				return schema.Value{}, fmt.Errorf("value: tags entries must be strings")
			}
			tags = append(tags, s)
		}
		return schema.Tags(tags), nil
	default:
		return schema.Value{}, fmt.Errorf("value: unsupported kind %q over the wire", dto.Kind)
	}
}
