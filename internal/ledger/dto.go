package ledger

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/core/common/validation"
)

type AddStockDTO struct {
	BranchID int64  `json:"branch_id"`
	ItemID   int64  `json:"item_id"`
	Quantity int64  `json:"quantity"`
	Date     string `json:"date"`
	Remarks  string `json:"remarks,omitempty"`
}

func (dto AddStockDTO) Validate() (time.Time, error) {
	v := validation.NewValidator()
	v.Field("branch_id", dto.BranchID).Required()
	v.Field("item_id", dto.ItemID).Required()
	v.Field("quantity", dto.Quantity).Positive(errors.ErrCodeInvalidQuantity)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}

	date, err := validation.ParseDate("date", dto.Date)
	if err != nil {
		return time.Time{}, err
	}
	return date, nil
}

type IssueStockDTO struct {
	BranchID   int64  `json:"branch_id"`
	ItemID     int64  `json:"item_id"`
	Quantity   int64  `json:"quantity"`
	PersonName string `json:"person_name"`
	Date       string `json:"date"`
	Remarks    string `json:"remarks,omitempty"`
}

func (dto IssueStockDTO) Validate() (time.Time, error) {
	v := validation.NewValidator()
	v.Field("branch_id", dto.BranchID).Required()
	v.Field("item_id", dto.ItemID).Required()
	v.Field("quantity", dto.Quantity).Positive(errors.ErrCodeInvalidQuantity)
	v.Field("person_name", dto.PersonName).Required().MaxLength(validation.MaxNameLength)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}

	date, err := validation.ParseDate("date", dto.Date)
	if err != nil {
		return time.Time{}, err
	}
	return date, nil
}

type AdjustStockDTO struct {
	Quantity *int64 `json:"quantity"`
}

func (dto AdjustStockDTO) Validate() error {
	if dto.Quantity == nil {
		return errors.NewValidationFieldError("quantity", "quantity is required", errors.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	v.Field("quantity", *dto.Quantity).MinInt(0, errors.ErrCodeInvalidQuantity)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ParseTransactionFilter reads optional YYYY-MM-DD bounds.
func ParseTransactionFilter(startDate, endDate string) (TransactionFilter, error) {
	var filter TransactionFilter

	if s := strings.TrimSpace(startDate); s != "" {
		start, err := validation.ParseDate("startDate", s)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &start
	}
	if e := strings.TrimSpace(endDate); e != "" {
		end, err := validation.ParseDate("endDate", e)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		if err := validation.ValidateDateRange(*filter.StartDate, *filter.EndDate); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

type StockListResponse struct {
	Stock []StockView `json:"stock"`
}

type TransactionListResponse struct {
	Transactions []TransactionView `json:"transactions"`
}
