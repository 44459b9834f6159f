package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/frahmantamala/stock-management/internal/transport"
)

type ServiceAPI interface {
	Generate(ctx context.Context, startDate, endDate string) (*Report, error)
	Export(ctx context.Context, w io.Writer, startDate, endDate string) (string, error)
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

// GetReport handles GET /reports?startDate=&endDate=
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := h.Service.Generate(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rep)
}

// ExportCSV handles GET /reports/export?startDate=&endDate=
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// buffered so a failure can still become a JSON error
	var buf bytes.Buffer
	filename, err := h.Service.Export(r.Context(), &buf, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("ExportCSV: failed to write response", "error", err)
	}
}
