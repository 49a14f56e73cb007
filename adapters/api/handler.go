package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"qastats/app"
	"qastats/domain/core"
	"qastats/internal/errors"
	"qastats/internal/workbook"
	"qastats/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler implements the JSON endpoints
type Handler struct {
	store       *workbook.Store
	comparisons *app.ComparisonService
	sweeps      *app.SweepService
}

// NewHandler creates a handler over the shared services
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		store:       deps.Store,
		comparisons: deps.Comparisons,
		sweeps:      deps.Sweeps,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"workbooks": h.store.Len(),
	})
}

func (h *Handler) ListWorkbooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"workbooks": h.store.List(),
	})
}

func (h *Handler) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	wb, err := h.store.Put(header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	src, err := h.store.Source(wb.ID)
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	sheets, err := src.Sheets()
	if err != nil {
		_ = h.store.Delete(wb.ID)
		writeError(w, r, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	writeJSON(w, r, http.StatusCreated, WorkbookResponse{Workbook: wb, Sheets: sheets})
}

func (h *Handler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	id, err := workbookID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	wb, err := h.store.Get(id)
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	writeJSON(w, r, http.StatusOK, WorkbookResponse{Workbook: wb})
}

func (h *Handler) DeleteWorkbook(w http.ResponseWriter, r *http.Request) {
	id, err := workbookID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSheets(w http.ResponseWriter, r *http.Request) {
	src, err := h.source(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sheets, err := src.Sheets()
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	writeJSON(w, r, http.StatusOK, SheetsResponse{Sheets: sheets})
}

func (h *Handler) ListColumns(w http.ResponseWriter, r *http.Request) {
	src, err := h.source(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := src.ReadSheet(pathParam(r, "sheet"))
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	writeJSON(w, r, http.StatusOK, ColumnsResponse{Sheet: data.Sheet, Columns: data.Headers, Rows: len(data.Rows)})
}

func (h *Handler) ListValues(w http.ResponseWriter, r *http.Request) {
	src, err := h.source(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := src.ReadSheet(pathParam(r, "sheet"))
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	column := pathParam(r, "column")
	values, err := data.DistinctValues(column)
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, r, http.StatusOK, ValuesResponse{Column: column, Values: values, Count: len(values)})
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req app.ComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	src, err := h.source(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.comparisons.Compare(r.Context(), src, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, CompareResponse{Report: report, Text: report.Text(), Markdown: report.Markdown()})
}

func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req app.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	src, err := h.source(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Sheet == "" {
		sheets, err := src.Sheets()
		if err != nil || len(sheets) == 0 {
			writeError(w, r, errors.InvalidInput("workbook has no readable sheets"))
			return
		}
		req.Sheet = sheets[0]
	}
	data, err := src.ReadSheet(req.Sheet)
	if err != nil {
		writeError(w, r, errors.FromDomain(err))
		return
	}

	result, err := h.sweeps.Sweep(r.Context(), data, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// source resolves the {id} path parameter to a workbook reader
func (h *Handler) source(r *http.Request) (ports.WorkbookSource, error) {
	id, err := workbookID(r)
	if err != nil {
		return nil, err
	}
	src, err := h.store.Source(id)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return src, nil
}

func workbookID(r *http.Request) (core.ID, error) {
	raw := chi.URLParam(r, "id")
	id, err := core.ParseID(raw)
	if err != nil {
		return "", errors.FromDomain(core.NewNotFoundError(core.ErrWorkbookNotFound, raw))
	}
	return id, nil
}

// pathParam returns a decoded path parameter. Sheet and column names may
// contain spaces and slashes.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, r, status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}
