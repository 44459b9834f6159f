package report

import (
	"context"
	"io"
	"log/slog"

	errors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/ledger"
)

// TransactionSource is satisfied by the ledger service.
type TransactionSource interface {
	ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionView, error)
}

type Service struct {
	source TransactionSource
	logger *slog.Logger
}

func NewService(source TransactionSource, logger *slog.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Generate returns the transactions dated within the inclusive range.
func (s *Service) Generate(ctx context.Context, startDate, endDate string) (*Report, error) {
	r, err := ParseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	rows, err := s.source.ListTransactions(ctx, r.Filter())
	if err != nil {
		return nil, err
	}

	s.logger.Info("report generated", "start", startDate, "end", endDate, "rows", len(rows))
	return newReport(r, rows), nil
}

// Export writes the CSV rendering of the range to w and returns the file
// name to present it under.
func (s *Service) Export(ctx context.Context, w io.Writer, startDate, endDate string) (string, error) {
	r, err := ParseRange(startDate, endDate)
	if err != nil {
		return "", err
	}

	rows, err := s.source.ListTransactions(ctx, r.Filter())
	if err != nil {
		return "", err
	}

	if err := WriteCSV(w, rows); err != nil {
		s.logger.Error("failed to write csv export", "error", err)
		return "", errors.NewInternalError("failed to write report", err)
	}
	return r.Filename(), nil
}
