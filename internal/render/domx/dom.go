// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package domx implements the retained-mode DOM renderer (spec C10b): a
// literal golang.org/x/net/html node tree rebuilt on each Render call,
// carrying data-col-key/data-raw attributes and class markers so the
// spec's DOM-shape contracts are testable by walking real nodes rather
// than by substring-matching serialized HTML. Grounded on the shape of
// internal/selection/clipboard.go's read-side node walking, mirrored
// here for node construction, since the teacher itself has no DOM
// renderer to generalize from.
package domx

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/render"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

// measureKey is the off-DOM measurement cache key (spec.md §4.6:
// "cached per frame with an LRU eviction at end of frame").
type measureKey struct {
	rowID   sheet.RowID
	colKey  string
	version uint64
	width   int
	text    string
}

const measureCacheCap = 2000

// DOM is the retained-mode backend: Render rebuilds a fresh node tree
// every call (no incremental patching), since spec.md specifies the
// node shape, not a diffing algorithm.
type DOM struct {
	sh       *sheet.Sheet
	pipeline *derive.Pipeline
	viewSt   *view.State
	sel      *selection.Selection

	width int

	activeRowID sheet.RowID
	activeCol   string
	selRowKeys  map[string]bool
	selColKeys  map[string]bool

	measureCache map[measureKey]int
	measureOrder []measureKey

	root *html.Node
}

// New builds a DOM backend rendering cells at a fixed measurement width
// (characters, reused from the canvas convention since this module has
// no font metrics to size against).
func New(sh *sheet.Sheet, pipeline *derive.Pipeline, viewSt *view.State, sel *selection.Selection, width int) *DOM {
	if width <= 0 {
		width = 12
	}
	return &DOM{
		sh:           sh,
		pipeline:     pipeline,
		viewSt:       viewSt,
		sel:          sel,
		width:        width,
		selRowKeys:   map[string]bool{},
		selColKeys:   map[string]bool{},
		measureCache: map[measureKey]int{},
	}
}

func (d *DOM) Mount() error { return nil }

func (d *DOM) SetActiveCell(rowKey, colKey string) {
	d.activeCol = colKey
	for _, id := range d.sh.Rows() {
		if fmt.Sprintf("%d", id) == rowKey {
			d.activeRowID = id
			break
		}
	}
}

func (d *DOM) SetSelection(rowKeys, colKeys []string) {
	d.selRowKeys = toSet(rowKeys)
	d.selColKeys = toSet(colKeys)
}

func toSet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Root returns the last rendered document node, for tests and the SSR
// emitter, which reuses this package's node-building rather than
// re-implementing it.
func (d *DOM) Root() *html.Node {
	return d.root
}

// Render rebuilds the node tree: a <table> with a header <tr> and one
// body <tr> per visible row, in view.Visible order.
func (d *DOM) Render() error {
	cols := d.columnOrder()
	visible := view.Visible(d.sh, d.pipeline, d.viewSt)

	table := elem(atom.Table, "data-component", "tabulon")
	thead := elem(atom.Thead)
	table.AppendChild(thead)
	thead.AppendChild(d.headerRow(cols))

	tbody := elem(atom.Tbody)
	table.AppendChild(tbody)
	for _, rowID := range visible {
		tbody.AppendChild(d.bodyRow(rowID, cols))
	}

	d.root = table
	return nil
}

func (d *DOM) columnOrder() []string {
	var out []string
	for _, col := range d.sh.Schema().Columns() {
		if d.viewSt != nil && d.viewSt.IsColumnHidden(col.Key) {
			continue
		}
		out = append(out, col.Key)
	}
	return out
}

func (d *DOM) headerRow(cols []string) *html.Node {
	tr := elem(atom.Tr)
	tr.AppendChild(elem(atom.Th))
	for _, key := range cols {
		col, _ := d.sh.Schema().Column(key)
		th := elem(atom.Th, "data-col-key", key)
		th.AppendChild(text(col.DisplayHeader()))
		tr.AppendChild(th)
	}
	return tr
}

func (d *DOM) bodyRow(rowID sheet.RowID, cols []string) *html.Node {
	rowKey := fmt.Sprintf("%d", rowID)
	rowSelected := d.selRowKeys[rowKey]

	tr := elem(atom.Tr, "data-row-id", rowKey)
	th := elem(atom.Th)
	th.AppendChild(text(fmt.Sprintf("%d", d.sh.IndexOf(rowID)+1)))
	tr.AppendChild(th)

	for _, colKey := range cols {
		tr.AppendChild(d.cell(rowID, colKey, rowKey, rowSelected))
	}
	return tr
}

func (d *DOM) cell(rowID sheet.RowID, colKey, rowKey string, rowSelected bool) *html.Node {
	col, _ := d.sh.Schema().Column(colKey)
	result := d.pipeline.Cell(rowID, colKey)
	raw := d.sh.GetRawCell(rowID, colKey)
	pending := !d.sh.GetCell(rowID, colKey).Equal(raw)

	classes := []string{"cell"}
	if d.sh.IsReadonly(rowID, colKey) {
		classes = append(classes, "readonly")
	} else {
		classes = append(classes, "editable")
	}
	if col.Type == schema.TypeButton || col.Type == schema.TypeLink {
		classes = append(classes, "disabled")
	}
	if raw.IsEmpty() {
		classes = append(classes, "muted")
	}
	if pending {
		classes = append(classes, "pending")
	}
	if result.Diagnostic != nil {
		switch result.Diagnostic.Level {
		case schema.LevelWarning:
			classes = append(classes, "diag-warning")
		case schema.LevelError:
			classes = append(classes, "diag-error")
		}
	}
	colSelected := d.selColKeys[colKey] || d.selColKeys[selection.AllColKey]
	if rowSelected && colSelected {
		classes = append(classes, "selected")
	}
	if rowID == d.activeRowID && colKey == d.activeCol {
		classes = append(classes, "active-cell")
	}

	attrs := []string{
		"data-col-key", colKey,
		"data-raw", raw.Label(),
		"class", strings.Join(classes, " "),
	}
	if css := cssStyle(result.Style); css != "" {
		attrs = append(attrs, "style", css)
	}
	td := elem(atom.Td, attrs...)

	d.measure(rowID, colKey, result.Text)

	switch col.Type {
	case schema.TypeTags:
		td.AppendChild(d.tagsNode(raw))
	case schema.TypeButton, schema.TypeLink:
		td.AppendChild(d.actionNode(col, raw))
	case schema.TypeBoolean:
		if col.Unique {
			td.AppendChild(d.radioNode(rowID, colKey, result))
		} else {
			td.AppendChild(text(result.Text))
		}
	default:
		td.AppendChild(text(result.Text))
	}
	return td
}

func (d *DOM) tagsNode(v schema.Value) *html.Node {
	tags, _ := v.AsTags()
	wrap := elem(atom.Span, "class", "tags")
	for i, tag := range tags {
		chip := elem(atom.Span, "class", "chip", "data-index", fmt.Sprintf("%d", i))
		chip.AppendChild(text(tag))
		remove := elem(atom.Button, "class", "chip-remove", "data-index", fmt.Sprintf("%d", i))
		chip.AppendChild(remove)
		wrap.AppendChild(chip)
	}
	return wrap
}

func (d *DOM) actionNode(col schema.Column, v schema.Value) *html.Node {
	kind := "link"
	label := ""
	if b, ok := v.AsButton(); ok {
		kind = "button"
		label = b.Label
	} else if l, ok := v.AsLink(); ok {
		kind = "link"
		label = l.Label
	}
	action := elem(atom.A, "class", "action", "data-kind", kind)
	action.AppendChild(text(label))
	return action
}

// radioNode paints the current/previous/default color classes unique
// boolean columns use (spec.md §4.6), sourced from the sheet's
// commit-transition tracking (sheet.Sheet.UniqueBooleanTransition, spec.md
// §3 "Uniqueness for boolean-unique columns"). Before any commit has flipped
// the column, it falls back to the raw value so a sheet loaded with one row
// already true still paints radio-current.
func (d *DOM) radioNode(rowID sheet.RowID, colKey string, result derive.Result) *html.Node {
	class := "radio-default"
	t := d.sh.UniqueBooleanTransition(colKey)
	switch {
	case t.HasCurrent && t.CurrentRowID == rowID:
		class = "radio-current"
	case t.HasPrevious && t.PreviousRowID == rowID:
		class = "radio-previous"
	case !t.HasCurrent:
		if b, ok := result.Value.AsBool(); ok && b {
			class = "radio-current"
		}
	}
	return elem(atom.Span, "class", "radio "+class)
}

// measure records a cell's text width in the off-DOM measurement cache
// keyed by (rowId, colKey, version, width, text), evicting oldest-first
// once the frame-scoped cap is reached (spec.md §4.6).
func (d *DOM) measure(rowID sheet.RowID, colKey, text string) int {
	key := measureKey{rowID: rowID, colKey: colKey, version: d.sh.GetRowVersion(rowID), width: d.width, text: text}
	if w, ok := d.measureCache[key]; ok {
		return w
	}
	w := len([]rune(text))
	if len(d.measureOrder) >= measureCacheCap {
		oldest := d.measureOrder[0]
		d.measureOrder = d.measureOrder[1:]
		delete(d.measureCache, oldest)
	}
	d.measureCache[key] = w
	d.measureOrder = append(d.measureOrder, key)
	return w
}

// EndFrame evicts the entire off-DOM measurement cache, matching
// spec.md §4.6's "LRU eviction at end of frame" contract literally: the
// cache is scoped to a single render pass, not retained across frames.
func (d *DOM) EndFrame() {
	d.measureCache = map[measureKey]int{}
	d.measureOrder = nil
}

// cssStyle renders a resolved style delta (column-base ⊕ conditional-style
// ⊕ cell-style, already merged by the derivation pipeline) as an inline
// CSS declaration list for a host page's stylesheet-free consumption.
// Returns "" when the delta sets nothing, so callers can skip the style
// attribute entirely for the common unstyled cell.
func cssStyle(delta schema.StyleDelta) string {
	var decls []string
	if delta.Bold != nil {
		if *delta.Bold {
			decls = append(decls, "font-weight:bold")
		} else {
			decls = append(decls, "font-weight:normal")
		}
	}
	if delta.Italic != nil {
		if *delta.Italic {
			decls = append(decls, "font-style:italic")
		} else {
			decls = append(decls, "font-style:normal")
		}
	}
	if delta.Underline != nil || delta.Strike != nil {
		var parts []string
		if delta.Underline != nil && *delta.Underline {
			parts = append(parts, "underline")
		}
		if delta.Strike != nil && *delta.Strike {
			parts = append(parts, "line-through")
		}
		if len(parts) == 0 {
			parts = append(parts, "none")
		}
		decls = append(decls, "text-decoration:"+strings.Join(parts, " "))
	}
	if delta.TextColor != nil {
		decls = append(decls, "color:"+*delta.TextColor)
	}
	if delta.BackgroundColor != nil {
		decls = append(decls, "background-color:"+*delta.BackgroundColor)
	}
	if delta.Align != nil {
		decls = append(decls, "text-align:"+cssAlign(*delta.Align))
	}
	return strings.Join(decls, ";")
}

func cssAlign(a schema.Align) string {
	switch a {
	case schema.AlignRight:
		return "right"
	case schema.AlignCenter:
		return "center"
	default:
		return "left"
	}
}

func elem(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// HitTest is unsupported for the retained-mode backend: pointer
// resolution in a DOM host happens via the browser's own element
// picking against data-col-key/data-row-id attributes, not by replaying
// coordinate math here.
func (d *DOM) HitTest(x, y int) render.Hit {
	return render.Hit{Kind: render.HitNone}
}

func (d *DOM) HitTestAction(x, y int) (string, bool) {
	return "", false
}

func (d *DOM) Destroy() {
	d.root = nil
	d.EndFrame()
}
