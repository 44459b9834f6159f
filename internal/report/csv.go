package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/frahmantamala/stock-management/internal/core/common/validation"
	"github.com/frahmantamala/stock-management/internal/ledger"
)

var csvHeader = []string{"Date", "Area", "Branch", "Item", "Quantity", "Type", "Person", "Remarks"}

// WriteCSV renders rows with RFC 4180 quoting.
func WriteCSV(w io.Writer, rows []ledger.TransactionView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.TransactionDate.UTC().Format(validation.DateLayout),
			row.AreaName,
			row.BranchName,
			row.ItemName,
			strconv.FormatInt(row.Quantity, 10),
			row.Type.Label(),
			deref(row.PersonName),
			deref(row.Remarks),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
