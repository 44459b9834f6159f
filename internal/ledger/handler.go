package ledger

import (
	"context"
	"net/http"

	"github.com/frahmantamala/stock-management/internal/transport"
)

type ServiceAPI interface {
	AddStock(ctx context.Context, dto AddStockDTO) (*Stock, error)
	IssueStock(ctx context.Context, dto IssueStockDTO) (*Stock, error)
	AdjustStock(ctx context.Context, stockID int64, dto AdjustStockDTO) (*Stock, error)
	DeleteStock(ctx context.Context, stockID int64) error
	DeleteTransaction(ctx context.Context, transactionID int64) error
	ListStockWithDetails(ctx context.Context) ([]StockView, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]TransactionView, error)
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

// ListStock handles GET /stock
func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListStockWithDetails(r.Context())
	if err != nil {
		h.Logger.Error("ListStock: service error", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StockListResponse{Stock: rows})
}

// AddStock handles POST /stock
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	var dto AddStockDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	stock, err := h.Service.AddStock(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, stock)
}

// IssueStock handles POST /stock/issue
func (h *Handler) IssueStock(w http.ResponseWriter, r *http.Request) {
	var dto IssueStockDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	stock, err := h.Service.IssueStock(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stock)
}

// AdjustStock handles PUT /stock/{id}
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto AdjustStockDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	stock, err := h.Service.AdjustStock(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stock)
}

// DeleteStock handles DELETE /stock/{id}
func (h *Handler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.DeleteStock(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTransactions handles GET /transactions?startDate=&endDate=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseTransactionFilter(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	rows, err := h.Service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListTransactions: service error", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TransactionListResponse{Transactions: rows})
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.DeleteTransaction(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
