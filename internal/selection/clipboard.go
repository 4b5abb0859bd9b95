// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package selection

import (
	"strings"

	"golang.org/x/net/html"
)

// Grid is a rectangular text grid parsed from clipboard content.
type Grid [][]string

// ParseTSV parses a tab/newline-delimited clipboard payload into a Grid.
// Trailing empty line from a final newline is dropped.
func ParseTSV(tsv string) Grid {
	lines := strings.Split(tsv, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	grid := make(Grid, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		grid[i] = strings.Split(line, "\t")
	}
	return grid
}

// ParseHTMLTable parses a clipboard HTML payload's first <table> into a
// Grid. It returns nil if the payload has no table, or if any cell uses
// rowspan/colspan greater than 1 (spec.md §8: merged cells are not
// reconstructed into a grid).
func ParseHTMLTable(htmlSrc string) Grid {
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return nil
	}
	table := findTable(doc)
	if table == nil {
		return nil
	}

	var grid Grid
	rows := findAll(table, "tr")
	for _, tr := range rows {
		var row []string
		for _, cell := range findDirectCells(tr) {
			if spanGreaterThanOne(cell, "rowspan") || spanGreaterThanOne(cell, "colspan") {
				return nil
			}
			row = append(row, textContent(cell))
		}
		grid = append(grid, row)
	}
	return grid
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findDirectCells(tr *html.Node) []*html.Node {
	var out []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			out = append(out, c)
		}
	}
	return out
}

func spanGreaterThanOne(n *html.Node, attr string) bool {
	for _, a := range n.Attr {
		if a.Key == attr && a.Val != "" && a.Val != "1" {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
