package timesheet

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListOwn(ctx context.Context, p internal.Principal) ([]Timesheet, error)
	Create(ctx context.Context, p internal.Principal, form Form) (*Timesheet, error)
	Update(ctx context.Context, p internal.Principal, id string, form Form) (*Timesheet, error)
	Delete(ctx context.Context, p internal.Principal, id string) error
	ExportOwn(ctx context.Context, p internal.Principal) ([]byte, error)
	PDFOwn(ctx context.Context, p internal.Principal) ([]byte, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
	}
}

// List handles GET /timesheets
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	items, err := h.Service.ListOwn(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, items)
}

// Create handles POST /timesheets
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var form Form
	if !h.DecodeJSON(w, r, &form) {
		return
	}

	ts, err := h.Service.Create(r.Context(), p, form)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ts)
}

// Update handles PUT /timesheets/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var form Form
	if !h.DecodeJSON(w, r, &form) {
		return
	}

	ts, err := h.Service.Update(r.Context(), p, chi.URLParam(r, "id"), form)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

// Delete handles DELETE /timesheets/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Timesheet deleted"})
}

// ExportCSV handles GET /timesheets/export/csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	data, err := h.Service.ExportOwn(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteAttachment(w, CSVContentType, "timesheets.csv", data)
}

// DownloadPDF handles GET /timesheets/download-pdf
func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	data, err := h.Service.PDFOwn(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteAttachment(w, PDFContentType, "timesheets.pdf", data)
}
