// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package canvas implements the immediate-mode renderer (spec C10a): a
// full repaint of the row-header column, sticky header row, and body
// rows on every Render call. Only the active cell is highlighted; no
// selection-range overlay is painted. Grounded on the teacher's
// internal/app/table.go viewport/header painting and styles.go palette,
// generalized from the fixed house/project/vendor columns to an
// arbitrary schema-driven column set. Uses github.com/charmbracelet/
// lipgloss for styling and github.com/charmbracelet/x/ansi for cell
// width measurement, so wide runes and ANSI-styled cell text still line
// up in fixed-width columns.
package canvas

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/height"
	"github.com/tabulon-dev/tabulon/internal/render"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

const (
	minDim = 1
	maxDim = 8192

	rowHeaderWidth   = 4
	defaultColWidth  = 12
	defaultRowHeight = 1
)

// textMeasureCacheCap bounds the text-measurement cache (spec.md §4.5);
// once full, the oldest-inserted entry is evicted.
const textMeasureCacheCap = 2000

type measureKey struct {
	bold, italic bool
	width        int
	text         string
}

// Canvas is the immediate-mode backend: it repaints the full visible
// viewport into a single string buffer on every Render call.
type Canvas struct {
	sh       *sheet.Sheet
	pipeline *derive.Pipeline
	viewSt   *view.State
	sel      *selection.Selection
	heights  *height.Scheduler

	widthChars  int
	heightRows  int

	activeRowID sheet.RowID
	activeCol   string

	measureCache map[measureKey]int
	measureOrder []measureKey

	lastFrame string
	readonly  bool
}

// New builds a Canvas backend. widthChars/heightRows are clamped to
// [1, 8192], the canvas dimension bound spec.md §4.5 specifies for pixel
// dimensions, reinterpreted here as terminal cell dimensions.
func New(sh *sheet.Sheet, pipeline *derive.Pipeline, viewSt *view.State, sel *selection.Selection, heights *height.Scheduler, widthChars, heightRows int, readonly bool) *Canvas {
	return &Canvas{
		sh:           sh,
		pipeline:     pipeline,
		viewSt:       viewSt,
		sel:          sel,
		heights:      heights,
		widthChars:   clamp(widthChars, minDim, maxDim),
		heightRows:   clamp(heightRows, minDim, maxDim),
		measureCache: make(map[measureKey]int),
		readonly:     readonly,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c *Canvas) Mount() error { return nil }

func (c *Canvas) SetActiveCell(rowKey, colKey string) {
	c.activeCol = colKey
	// rowKey is the decimal string form of a sheet.RowID, as the
	// controller formats it; it is resolved back against the sheet's
	// current rows. SetActiveRow takes the RowID directly.
	for _, id := range c.sh.Rows() {
		if fmt.Sprintf("%d", id) == rowKey {
			c.activeRowID = id
			break
		}
	}
}

// SetActiveRow is the typed counterpart to SetActiveCell, used by
// in-process callers (tests, the controller) that already hold a
// sheet.RowID rather than its string form.
func (c *Canvas) SetActiveRow(id sheet.RowID, colKey string) {
	c.activeRowID = id
	c.activeCol = colKey
}

func (c *Canvas) SetSelection(rowKeys, colKeys []string) {
	// No-op: Render paints no selection range (it reads neither these
	// keys nor c.sel); this only satisfies the Backend trait.
}

// columnOrder returns the schema's visible column keys in declared
// order, honoring hidden-column view state.
func (c *Canvas) columnOrder() []string {
	var out []string
	for _, col := range c.sh.Schema().Columns() {
		if c.viewSt != nil && c.viewSt.IsColumnHidden(col.Key) {
			continue
		}
		out = append(out, col.Key)
	}
	return out
}

func (c *Canvas) columnWidth(colKey string) int {
	if c.viewSt != nil {
		if w, ok := c.viewSt.ColumnWidth(colKey); ok {
			return w
		}
	}
	return defaultColWidth
}

// measure returns the display width of text, memoized in a bounded cache
// (oldest-inserted entry evicted first) keyed by (bold, italic, width budget, text) — the canvas renderer's
// analogue of spec.md §4.5's font/text-measurement cache, sized for
// wrap-line computation rather than font metrics since a terminal has no
// sub-cell font rendering.
func (c *Canvas) measure(bold, italic bool, width int, text string) int {
	key := measureKey{bold: bold, italic: italic, width: width, text: text}
	if w, ok := c.measureCache[key]; ok {
		return w
	}
	w := lipgloss.Width(text)
	if len(c.measureOrder) >= textMeasureCacheCap {
		oldest := c.measureOrder[0]
		c.measureOrder = c.measureOrder[1:]
		delete(c.measureCache, oldest)
	}
	c.measureCache[key] = w
	c.measureOrder = append(c.measureOrder, key)
	return w
}

// Render repaints the full visible viewport: row-header column, sticky
// header row, and body rows (via the view engine's visible ordering),
// never drawing outside the widthChars×heightRows rectangle (spec.md
// §4.5). The active cell is shown in reverse video; no selection-range
// overlay is painted.
func (c *Canvas) Render() error {
	cols := c.columnOrder()
	visible := view.Visible(c.sh, c.pipeline, c.viewSt)

	var b strings.Builder
	b.WriteString(ansi.Truncate(c.renderHeaderRow(cols), c.widthChars, ""))
	b.WriteByte('\n')

	bodyRows := c.heightRows - 1 // one row consumed by the sticky header
	if bodyRows < 0 {
		bodyRows = 0
	}
	for i, rowID := range visible {
		if i >= bodyRows {
			break
		}
		b.WriteString(ansi.Truncate(c.renderRow(rowID, cols), c.widthChars, ""))
		b.WriteByte('\n')
	}

	c.lastFrame = strings.TrimSuffix(b.String(), "\n")
	return nil
}

// LastFrame returns the last rendered frame, for tests and terminal
// output.
func (c *Canvas) LastFrame() string {
	return c.lastFrame
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	errorColor  = lipgloss.Color("#D55E00")
	warnColor   = lipgloss.Color("#F0E442")
)

func (c *Canvas) renderHeaderRow(cols []string) string {
	cells := make([]string, 0, len(cols)+1)
	cells = append(cells, headerStyle.Width(rowHeaderWidth).Render(""))
	for _, key := range cols {
		col, _ := c.sh.Schema().Column(key)
		w := c.columnWidth(key)
		cells = append(cells, headerStyle.Width(w).Render(truncate(col.DisplayHeader(), w)))
	}
	return strings.Join(cells, " ")
}

func (c *Canvas) renderRow(rowID sheet.RowID, cols []string) string {
	rowIdx := c.sh.IndexOf(rowID) + 1
	cells := make([]string, 0, len(cols)+1)
	cells = append(cells, lipgloss.NewStyle().Width(rowHeaderWidth).Render(fmt.Sprintf("%d", rowIdx)))

	for _, key := range cols {
		w := c.columnWidth(key)
		result := c.pipeline.Cell(rowID, key)
		text := truncate(result.Text, w)

		style := applyStyleDelta(lipgloss.NewStyle().Width(w), result.Style)
		if result.Diagnostic != nil {
			switch result.Diagnostic.Level {
			case schema.LevelError:
				style = style.Foreground(errorColor)
			case schema.LevelWarning:
				style = style.Foreground(warnColor)
			}
		}
		if rowID == c.activeRowID && key == c.activeCol {
			style = style.Reverse(true)
		}
		cells = append(cells, style.Render(text))
	}
	return strings.Join(cells, " ")
}

// applyStyleDelta overlays a resolved style delta (column-base ⊕
// conditional-style ⊕ cell-style, already merged by the derivation
// pipeline) onto a lipgloss style. Only fields the delta actually sets
// are touched, so diagnostic and active-cell styling layered on
// afterward can still override just the foreground/reverse video
// without losing bold/italic/alignment, etc.
func applyStyleDelta(base lipgloss.Style, delta schema.StyleDelta) lipgloss.Style {
	if delta.Bold != nil {
		base = base.Bold(*delta.Bold)
	}
	if delta.Italic != nil {
		base = base.Italic(*delta.Italic)
	}
	if delta.Underline != nil {
		base = base.Underline(*delta.Underline)
	}
	if delta.Strike != nil {
		base = base.Strikethrough(*delta.Strike)
	}
	if delta.TextColor != nil {
		base = base.Foreground(lipgloss.Color(*delta.TextColor))
	}
	if delta.BackgroundColor != nil {
		base = base.Background(lipgloss.Color(*delta.BackgroundColor))
	}
	if delta.Align != nil {
		base = base.Align(alignPosition(*delta.Align))
	}
	return base
}

func alignPosition(a schema.Align) lipgloss.Position {
	switch a {
	case schema.AlignRight:
		return lipgloss.Right
	case schema.AlignCenter:
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// HitTest resolves a pointer hit in character coordinates to a logical
// target (spec.md §4.5).
func (c *Canvas) HitTest(x, y int) render.Hit {
	if x < rowHeaderWidth && y == 0 {
		return render.Hit{Kind: render.HitCorner}
	}
	if y == 0 {
		return render.Hit{Kind: render.HitColumnHeader, ColKey: c.colAt(x)}
	}
	if x < rowHeaderWidth {
		return render.Hit{Kind: render.HitRowHeader, RowKey: c.rowKeyAt(y)}
	}
	return render.Hit{Kind: render.HitBodyCell, RowKey: c.rowKeyAt(y), ColKey: c.colAt(x)}
}

func (c *Canvas) colAt(x int) string {
	cols := c.columnOrder()
	pos := rowHeaderWidth
	for _, key := range cols {
		w := c.columnWidth(key) + 1
		if x < pos+w {
			return key
		}
		pos += w
	}
	return ""
}

func (c *Canvas) rowKeyAt(y int) string {
	visible := view.Visible(c.sh, c.pipeline, c.viewSt)
	idx := y - 1
	if idx < 0 || idx >= len(visible) {
		return ""
	}
	return fmt.Sprintf("%d", visible[idx])
}

// HitTestAction resolves a hit to an action-region (button/link label
// bounding box), if any. Canvas has no sub-cell action regions in this
// text-grid rendering, so it always reports no hit.
func (c *Canvas) HitTestAction(x, y int) (string, bool) {
	return "", false
}

func (c *Canvas) Destroy() {}
