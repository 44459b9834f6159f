package catalog

import (
	"context"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/transport"
)

type ServiceAPI interface {
	ListAreas(ctx context.Context) ([]*Area, error)
	CreateArea(ctx context.Context, dto AreaDTO) (*Area, error)
	UpdateArea(ctx context.Context, id int64, dto AreaDTO) (*Area, error)
	DeleteArea(ctx context.Context, id int64) error

	ListBranches(ctx context.Context, areaID *int64) ([]*Branch, error)
	CreateBranch(ctx context.Context, dto BranchDTO) (*Branch, error)
	UpdateBranch(ctx context.Context, id int64, dto BranchDTO) (*Branch, error)
	DeleteBranch(ctx context.Context, id int64) error

	ListItems(ctx context.Context) ([]*Item, error)
	CreateItem(ctx context.Context, dto ItemDTO) (*Item, error)
	UpdateItem(ctx context.Context, id int64, dto ItemDTO) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Service.ListAreas(r.Context())
	if err != nil {
		h.Logger.Error("ListAreas: failed to list areas", "error", err)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AreasResponse{Areas: areas})
}

func (h *Handler) CreateArea(w http.ResponseWriter, r *http.Request) {
	var dto AreaDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	area, err := h.Service.CreateArea(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, area)
}

func (h *Handler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto AreaDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	area, err := h.Service.UpdateArea(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, area)
}

func (h *Handler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteArea)
}

// ListBranches handles GET /branches, optionally narrowed by ?areaId=
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	var areaID *int64
	if raw := r.URL.Query().Get("areaId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteAppError(w, errors.NewValidationFieldError("areaId", "invalid areaId", errors.ErrCodeValidationFailed))
			return
		}
		areaID = &id
	}

	branches, err := h.Service.ListBranches(r.Context(), areaID)
	if err != nil {
		h.Logger.Error("ListBranches: failed to list branches", "error", err)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, BranchesResponse{Branches: branches})
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var dto BranchDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	branch, err := h.Service.CreateBranch(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, branch)
}

func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto BranchDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	branch, err := h.Service.UpdateBranch(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, branch)
}

func (h *Handler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteBranch)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems(r.Context())
	if err != nil {
		h.Logger.Error("ListItems: failed to list items", "error", err)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ItemsResponse{Items: items})
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var dto ItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	item, err := h.Service.CreateItem(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto ItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Service.DeleteItem)
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, del func(context.Context, int64) error) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := del(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
