// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package demo generates schema-driven sample datasets for manual
// exercising and screenshots (ambient addition, SPEC_FULL.md §6).
// Grounded on the teacher's internal/fake package: a thin wrapper
// around a seeded *gofakeit.Faker with one generator method per
// entity, except here the entities are table schemas rather than
// house-renovation domain objects.
package demo

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/sheet"
)

// Generator produces random schemas and rows from a seeded faker.
type Generator struct {
	f *gofakeit.Faker
}

// New returns a Generator seeded for reproducible output.
func New(seed uint64) *Generator {
	return &Generator{f: gofakeit.New(seed)}
}

var productCategories = []string{"Hardware", "Software", "Accessories", "Services"}

// ProductsSchema returns a small product-catalog schema: name, sku,
// category (enum), price, inStock (boolean), and a tags column.
func ProductsSchema() (*schema.Schema, error) {
	return schema.New([]schema.Column{
		{Key: "name", Type: schema.TypeString, Header: "Product"},
		{Key: "sku", Type: schema.TypeString, Unique: true},
		{Key: "category", Type: schema.TypeEnum, EnumOptions: productCategories},
		{Key: "price", Type: schema.TypeNumber},
		{Key: "inStock", Type: schema.TypeBoolean},
		{Key: "tags", Type: schema.TypeTags},
	})
}

// Products generates n rows conforming to ProductsSchema.
func (g *Generator) Products(n int) []sheet.Record {
	out := make([]sheet.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sheet.Record{
			"name":     schema.String(g.f.ProductName()),
			"sku":      schema.String(fmt.Sprintf("SKU-%05d", g.f.IntRange(0, 99999))),
			"category": schema.Enum(g.pick(productCategories)),
			"price":    schema.Number(g.f.Price(1.99, 999.99)),
			"inStock":  schema.Bool(g.f.Bool()),
			"tags":     schema.Tags(g.tags()),
		})
	}
	return out
}

var auditConditions = []string{"New", "Good", "Worn", "Damaged"}

// InventoryAuditSchema returns a schema exercising every column type
// named in SPEC_FULL.md §3: string, number, int, uint, boolean, date,
// time, datetime, enum, tags, link, and button.
func InventoryAuditSchema() (*schema.Schema, error) {
	return schema.New([]schema.Column{
		{Key: "sku", Type: schema.TypeString, Unique: true},
		{Key: "quantity", Type: schema.TypeInt},
		{Key: "weightKg", Type: schema.TypeNumber},
		{Key: "lowStockThreshold", Type: schema.TypeUint},
		{Key: "verified", Type: schema.TypeBoolean},
		{Key: "auditedOn", Type: schema.TypeDate},
		{Key: "auditedAt", Type: schema.TypeTime},
		{Key: "lastMovementAt", Type: schema.TypeDateTime},
		{Key: "condition", Type: schema.TypeEnum, EnumOptions: auditConditions},
		{Key: "tags", Type: schema.TypeTags},
		{Key: "viewDetails", Type: schema.TypeLink},
		{Key: "flagForReview", Type: schema.TypeButton},
	})
}

// InventoryAudit generates n rows conforming to InventoryAuditSchema.
func (g *Generator) InventoryAudit(n int) []sheet.Record {
	out := make([]sheet.Record, 0, n)
	for i := 0; i < n; i++ {
		sku := fmt.Sprintf("INV-%05d", g.f.IntRange(0, 99999))
		auditedOn := g.f.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
		movedAt := g.f.DateRange(auditedOn.AddDate(0, -1, 0), time.Now())

		out = append(out, sheet.Record{
			"sku":               schema.String(sku),
			"quantity":          schema.Number(float64(g.f.IntRange(0, 500))),
			"weightKg":          schema.Number(g.f.Float64Range(0.05, 80)),
			"lowStockThreshold": schema.Number(float64(g.f.IntRange(1, 20))),
			"verified":          schema.Bool(g.f.Bool()),
			"auditedOn":         schema.Date(auditedOn),
			"auditedAt":         schema.Date(auditedOn),
			"lastMovementAt":    schema.Date(movedAt),
			"condition":         schema.Enum(g.pick(auditConditions)),
			"tags":              schema.Tags(g.tags()),
			"viewDetails": schema.Link(schema.ActionLink{
				Label:  "View",
				Href:   fmt.Sprintf("/inventory/%s", sku),
				Target: "_self",
			}),
			"flagForReview": schema.Button(schema.ActionButton{
				Label:      "Flag",
				Command:    "flag-for-review",
				CommandFor: sku,
			}),
		})
	}
	return out
}

func (g *Generator) pick(items []string) string {
	return items[g.f.IntN(len(items))]
}

var tagPool = []string{"fragile", "bulk", "seasonal", "backorder", "clearance", "imported"}

// tags returns between 0 and 3 random, non-repeating tags from a fixed
// pool so tag-column faceting has something to group on.
func (g *Generator) tags() []string {
	n := g.f.IntRange(0, 3)
	if n == 0 {
		return nil
	}
	picked := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		t := g.pick(tagPool)
		if picked[t] {
			continue
		}
		picked[t] = true
		out = append(out, t)
	}
	return out
}
