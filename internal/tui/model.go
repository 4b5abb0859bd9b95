// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package tui is the terminal event loop, grounded on the teacher's
// internal/app bubbletea Model (Init/Update/View as the single owning
// aggregate, hjkl/arrow navigation, esc-to-cancel editing). It wires a
// canvas.Canvas backend into a controller.Controller rather than
// re-implementing per-row rendering itself, since that concern now
// lives in internal/render/canvas.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/tabulon-dev/tabulon/internal/codec"
	"github.com/tabulon-dev/tabulon/internal/command"
	"github.com/tabulon-dev/tabulon/internal/config"
	"github.com/tabulon-dev/tabulon/internal/controller"
	"github.com/tabulon-dev/tabulon/internal/derive"
	"github.com/tabulon-dev/tabulon/internal/render/canvas"
	"github.com/tabulon-dev/tabulon/internal/schema"
	"github.com/tabulon-dev/tabulon/internal/selection"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

// Model is the top-level bubbletea model for the terminal table editor.
type Model struct {
	sh       *sheet.Sheet
	pipeline *derive.Pipeline
	viewSt   *view.State
	queue    *command.Queue
	sel      *selection.Selection
	cfg      config.Render

	ctrl   *controller.Controller
	canvas *canvas.Canvas

	cols []string

	editing   bool
	editValue string
	form      *huh.Form
	statusMsg string
}

// New builds a Model over an already-populated sheet. The canvas
// backend and controller are constructed lazily, on the first
// tea.WindowSizeMsg, since canvas dimensions are not known until then.
func New(sh *sheet.Sheet, pipeline *derive.Pipeline, viewSt *view.State, queue *command.Queue, sel *selection.Selection, cfg config.Render) *Model {
	return &Model{
		sh:       sh,
		pipeline: pipeline,
		viewSt:   viewSt,
		queue:    queue,
		sel:      sel,
		cfg:      cfg,
		cols:     sh.Schema().Keys(),
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.ctrl == nil {
			m.build(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if m.ctrl == nil {
			return m, nil
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}
	if m.editing {
		return m.updateEditing(msg)
	}
	return m, nil
}

func (m *Model) build(width, height int) {
	backend := canvas.New(m.sh, m.pipeline, m.viewSt, m.sel, nil, width, height, m.cfg.EditMode == config.EditModeReadonly)
	m.canvas = backend
	m.ctrl = controller.New(m.sh, m.pipeline, m.viewSt, m.queue, m.sel, nil, backend, m.cfg)
	m.ctrl.Render() //nolint:errcheck
}

func (m *Model) updateNormal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.move(-1, 0)
	case "down", "j":
		m.move(1, 0)
	case "left", "h":
		m.move(0, -1)
	case "right", "l":
		m.move(0, 1)
	case "enter", "i":
		cmd = m.startEdit()
	case "ctrl+z", "u":
		if m.ctrl.Undo() {
			m.statusMsg = "undo"
		}
	case "ctrl+y", "ctrl+r":
		if m.ctrl.Redo() {
			m.statusMsg = "redo"
		}
	case "ctrl+s":
		m.ctrl.Commit()
		m.statusMsg = "committed"
	case "d":
		m.deleteActiveRow()
	}
	m.ctrl.Render() //nolint:errcheck
	return m, cmd
}

// updateEditing delegates msg to the active huh.Form (grounded on the
// teacher's internal/app Model, which embeds a *huh.Form the same way:
// forward the message, reassign the form from the type-asserted result,
// then branch on form.State). huh.StateCompleted commits the edit,
// huh.StateAborted discards it.
func (m *Model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.form.Update(msg)
	if form, ok := updated.(*huh.Form); ok {
		m.form = form
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.commitEdit()
	case huh.StateAborted:
		m.editing = false
		m.form = nil
	}
	return m, cmd
}

// startEdit opens a single-field inline edit form over the active cell,
// grounded on the teacher's openInlineEdit (huh.NewForm wrapping one
// huh.NewGroup of a single field). The form prefills with the cell's
// current label, Excel-F2-style.
func (m *Model) startEdit() tea.Cmd {
	active := m.sel.Active()
	if active.RowID == selection.AllRowID || active.ColKey == "" {
		return nil
	}
	m.editValue = m.ctrl.GetCell(active.RowID, active.ColKey).Label()
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(active.ColKey).Value(&m.editValue),
		),
	).WithShowErrors(true)
	m.editing = true
	return m.form.Init()
}

func (m *Model) commitEdit() {
	active := m.sel.Active()
	col, ok := m.sh.Schema().Column(active.ColKey)
	if !ok {
		m.editing = false
		m.form = nil
		return
	}
	v, err := parseEditValue(col, m.editValue)
	if err != nil {
		m.statusMsg = fmt.Sprintf("invalid value: %s", err)
		m.editing = false
		m.form = nil
		return
	}
	id := active.RowID
	m.ctrl.SetCellValue(controller.Addr{RowID: &id, ColKey: active.ColKey}, v)
	m.editing = false
	m.form = nil
}

func (m *Model) move(dRow, dCol int) {
	active := m.sel.Active()
	rowIdx := m.sh.IndexOf(active.RowID) + dRow
	colIdx := indexOf(m.cols, active.ColKey) + dCol

	if rowIdx < 0 {
		rowIdx = 0
	}
	if rowIdx >= m.sh.Len() {
		rowIdx = m.sh.Len() - 1
	}
	if colIdx < 0 {
		colIdx = 0
	}
	if colIdx >= len(m.cols) {
		colIdx = len(m.cols) - 1
	}
	if rowIdx < 0 || colIdx < 0 {
		return
	}

	id, ok := m.sh.RowAt(rowIdx)
	if !ok {
		return
	}
	m.ctrl.SetActiveCell(selection.Cell{RowID: id, ColKey: m.cols[colIdx]})
}

func (m *Model) deleteActiveRow() {
	active := m.sel.Active()
	if active.RowID == selection.AllRowID {
		return
	}
	m.ctrl.DeleteRow(active.RowID)
}

func (m *Model) View() string {
	if m.canvas == nil {
		return "initializing..."
	}
	var b strings.Builder
	b.WriteString(m.canvas.LastFrame())
	b.WriteByte('\n')
	if m.editing && m.form != nil {
		b.WriteString(m.form.View())
		b.WriteByte('\n')
	}
	if m.statusMsg != "" {
		fmt.Fprintf(&b, "-- %s --\n", m.statusMsg)
	}
	return b.String()
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

// parseEditValue converts a typed-in edit buffer into a schema.Value
// appropriate to col's declared type, using internal/codec's parsers
// for the same accepted formats the derivation pipeline formats with.
func parseEditValue(col schema.Column, text string) (schema.Value, error) {
	switch col.Type {
	case schema.TypeNumber:
		n, err := codec.ParseNumber(text)
		if err != nil {
			return schema.Value{}, err
		}
		return schema.Number(n), nil
	case schema.TypeInt, schema.TypeUint:
		n, err := codec.ParseInt(text)
		if err != nil {
			return schema.Value{}, err
		}
		return schema.Number(float64(n)), nil
	case schema.TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "yes", "1", "y":
			return schema.Bool(true), nil
		case "false", "no", "0", "n", "":
			return schema.Bool(false), nil
		default:
			return schema.Value{}, fmt.Errorf("invalid boolean %q", text)
		}
	case schema.TypeDate, schema.TypeTime, schema.TypeDateTime:
		t, err := codec.ParseDateTime(text)
		if err != nil {
			return schema.Value{}, err
		}
		return schema.Date(t), nil
	case schema.TypeEnum:
		return schema.Enum(text), nil
	case schema.TypeTags:
		if text == "" {
			return schema.Tags(nil), nil
		}
		return schema.Tags(strings.Split(text, ",")), nil
	default:
		return schema.String(text), nil
	}
}
