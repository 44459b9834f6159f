package report

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/core/common/validation"
	"github.com/frahmantamala/stock-management/internal/ledger"
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange requires both ends in YYYY-MM-DD form with start <= end.
func ParseRange(startDate, endDate string) (Range, error) {
	var r Range
	if strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
		return r, errors.NewValidationError("Start date and end date are required", errors.ErrCodeInvalidDateRange)
	}

	start, err := validation.ParseDate("startDate", strings.TrimSpace(startDate))
	if err != nil {
		return r, err
	}
	end, err := validation.ParseDate("endDate", strings.TrimSpace(endDate))
	if err != nil {
		return r, err
	}
	if rangeErr := validation.ValidateDateRange(start, end); rangeErr != nil {
		return r, rangeErr
	}

	return Range{Start: start, End: end}, nil
}

func (r Range) Filter() ledger.TransactionFilter {
	start, end := r.Start, r.End
	return ledger.TransactionFilter{StartDate: &start, EndDate: &end}
}

// Filename is the attachment name used for CSV exports.
func (r Range) Filename() string {
	return fmt.Sprintf("stock-report-%s-to-%s.csv", r.Start.Format(validation.DateLayout), r.End.Format(validation.DateLayout))
}

type Report struct {
	StartDate    string                   `json:"start_date"`
	EndDate      string                   `json:"end_date"`
	TotalAdded   int64                    `json:"total_added"`
	TotalIssued  int64                    `json:"total_issued"`
	Transactions []ledger.TransactionView `json:"transactions"`
}

func newReport(r Range, rows []ledger.TransactionView) *Report {
	rep := &Report{
		StartDate:    r.Start.Format(validation.DateLayout),
		EndDate:      r.End.Format(validation.DateLayout),
		Transactions: rows,
	}
	for _, row := range rows {
		switch row.Type {
		case ledger.TransactionTypeAdd:
			rep.TotalAdded += row.Quantity
		case ledger.TransactionTypeIssue:
			rep.TotalIssued += row.Quantity
		}
	}
	return rep
}
