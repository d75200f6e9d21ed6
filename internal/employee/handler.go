package employee

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, form Form) (*Employee, error)
	Update(ctx context.Context, id string, form Form) (*Employee, error)
	Delete(ctx context.Context, actor internal.Principal, id string) error
}

// Handler serves /admin/employees. The router mounts it behind the admin
// role check.
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form Form
	if !h.DecodeJSON(w, r, &form) {
		return
	}

	e, err := h.Service.Create(r.Context(), form)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var form Form
	if !h.DecodeJSON(w, r, &form) {
		return
	}

	e, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
}
