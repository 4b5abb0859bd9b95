// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package api

import (
	"net/http"

	"github.com/tabulon-dev/tabulon/internal/controller"
	"github.com/tabulon-dev/tabulon/internal/render/ssr"
	"github.com/tabulon-dev/tabulon/internal/sheet"
	"github.com/tabulon-dev/tabulon/internal/view"
)

// api holds the controller reference for all handlers, mirroring the
// teacher's API{store} grouping.
type api struct {
	ctrl *controller.Controller
}

// viewDTO is the serializable subset of view.State. Filters are
// host-supplied Go closures (view.FilterFunc) and have no wire
// representation, so they are intentionally omitted here; a remote
// client can hide/show/sort/size/wrap columns but cannot install a
// custom filter predicate over HTTP.
type viewDTO struct {
	Sorts         []view.SortKey `json:"sorts"`
	HiddenColumns []string       `json:"hiddenColumns"`
	ColumnWidths  map[string]int `json:"columnWidths"`
	WrapColumns   []string       `json:"wrapColumns"`
}

// GetView returns the current view shape.
func (a *api) GetView(w http.ResponseWriter, r *http.Request) {
	vs := a.ctrl.ViewState()
	dto := viewDTO{
		Sorts:        vs.Sorts(),
		WrapColumns:  vs.WrapEnabledColumns(),
		ColumnWidths: map[string]int{},
	}
	for _, key := range a.ctrl.Sheet().Schema().Keys() {
		if vs.IsColumnHidden(key) {
			dto.HiddenColumns = append(dto.HiddenColumns, key)
		}
		if width, ok := vs.ColumnWidth(key); ok {
			dto.ColumnWidths[key] = width
		}
	}
	jsonOK(w, dto)
}

// PutView replaces sorts, hidden columns, widths, and wrap toggles
// wholesale from the request body.
func (a *api) PutView(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeBody[viewDTO](r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	vs := a.ctrl.ViewState()
	vs.SetSorts(dto.Sorts)

	hidden := make(map[string]bool, len(dto.HiddenColumns))
	for _, key := range dto.HiddenColumns {
		hidden[key] = true
	}
	wrap := make(map[string]bool, len(dto.WrapColumns))
	for _, key := range dto.WrapColumns {
		wrap[key] = true
	}
	for _, key := range a.ctrl.Sheet().Schema().Keys() {
		vs.SetColumnHidden(key, hidden[key])
		vs.SetWrapEnabled(key, wrap[key])
	}
	for key, width := range dto.ColumnWidths {
		vs.SetColumnWidth(key, width)
	}

	jsonOK(w, dto)
}

// rowDTO is one visible row's cells, keyed by column.
type rowDTO struct {
	RowID uint64              `json:"rowId"`
	Cells map[string]cellDTO  `json:"cells"`
}

type cellDTO struct {
	Raw        valueDTO `json:"raw"`
	Display    string   `json:"display"`
	Diagnostic string   `json:"diagnostic,omitempty"`
}

// GetRows returns every currently visible row, in display order.
func (a *api) GetRows(w http.ResponseWriter, r *http.Request) {
	sh := a.ctrl.Sheet()
	pipeline := a.ctrl.Pipeline()
	visible := view.Visible(sh, pipeline, a.ctrl.ViewState())
	keys := sh.Schema().Keys()

	rows := make([]rowDTO, 0, len(visible))
	for _, id := range visible {
		cells := make(map[string]cellDTO, len(keys))
		for _, key := range keys {
			result := pipeline.Cell(id, key)
			cell := cellDTO{Raw: encodeValue(result.Value), Display: result.Text}
			if result.Diagnostic != nil {
				cell.Diagnostic = result.Diagnostic.Message
			}
			cells[key] = cell
		}
		rows = append(rows, rowDTO{RowID: uint64(id), Cells: cells})
	}
	jsonOK(w, rows)
}

// commandRequest is the POST /api/commands wire envelope. Op selects
// which controller entry point runs; only the fields that op needs
// must be populated.
type commandRequest struct {
	Op       string   `json:"op"`
	RowID    *uint64  `json:"rowId,omitempty"`
	ColKey   string   `json:"colKey,omitempty"`
	Value    valueDTO `json:"value,omitempty"`
	Index    *int     `json:"index,omitempty"`
	RowData  map[string]valueDTO `json:"rowData,omitempty"`
}

// PostCommand applies one mutating operation through the controller's
// typed entry points. Raw command.Command values are never accepted
// over the wire: they may carry unexported or closure-typed fields
// (UpdateViewCommand.do/undo), so the wire contract is this small,
// named operation set instead.
func (a *api) PostCommand(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[commandRequest](r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Op {
	case "setCell":
		if req.RowID == nil || req.ColKey == "" {
			jsonError(w, http.StatusBadRequest, "setCell requires rowId and colKey")
			return
		}
		v, err := decodeValue(req.Value)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		id := sheet.RowID(*req.RowID)
		ok := a.ctrl.SetCellValue(controller.Addr{RowID: &id, ColKey: req.ColKey}, v)
		jsonOK(w, map[string]bool{"applied": ok})

	case "insertRow":
		rec := sheet.Record{}
		for key, dto := range req.RowData {
			v, err := decodeValue(dto)
			if err != nil {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
			rec[key] = v
		}
		index := a.ctrl.Sheet().Len()
		if req.Index != nil {
			index = *req.Index
		}
		id := a.ctrl.InsertRowAt(rec, index)
		jsonOK(w, map[string]uint64{"rowId": uint64(id)})

	case "deleteRow":
		if req.RowID == nil {
			jsonError(w, http.StatusBadRequest, "deleteRow requires rowId")
			return
		}
		a.ctrl.DeleteRow(sheet.RowID(*req.RowID))
		jsonOK(w, map[string]bool{"applied": true})

	case "commit":
		a.ctrl.Commit()
		jsonOK(w, map[string]bool{"applied": true})

	case "undo":
		jsonOK(w, map[string]bool{"applied": a.ctrl.Undo()})

	case "redo":
		jsonOK(w, map[string]bool{"applied": a.ctrl.Redo()})

	default:
		jsonError(w, http.StatusBadRequest, "unknown op "+req.Op)
	}
}

// GetExportHTML serves a one-shot, fully static HTML rendering of the
// current visible table, reusing the retained-mode DOM renderer
// (internal/render/ssr).
func (a *api) GetExportHTML(w http.ResponseWriter, r *http.Request) {
	out, err := ssr.Render(a.ctrl.Sheet(), a.ctrl.Pipeline(), a.ctrl.ViewState())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out)) //nolint:errcheck
}
