package admin

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListTimesheets(ctx context.Context, filter timesheet.Filter) ([]timesheet.Timesheet, error)
	Review(ctx context.Context, reviewer internal.Principal, id string, dto timesheet.ReviewDTO) (*timesheet.Timesheet, error)
	Export(ctx context.Context, filter timesheet.Filter) ([]byte, error)
	Dashboard(ctx context.Context) (*Stats, error)
}

// Handler serves /admin/timesheets and /admin/dashboard. The router mounts it
// behind the admin role check.
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

// ListTimesheets handles GET /admin/timesheets
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListTimesheets(r.Context(), timesheet.FilterFromQuery(r.URL.Query()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

// Review handles PUT /admin/timesheets/{id}/review
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto timesheet.ReviewDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	ts, err := h.Service.Review(r.Context(), p, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ts)
}

// Export handles GET /admin/timesheets/export/csv
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.Export(r.Context(), timesheet.FilterFromQuery(r.URL.Query()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteAttachment(w, timesheet.CSVContentType, "all-timesheets.csv", data)
}

// Dashboard handles GET /admin/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}
