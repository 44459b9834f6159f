package ledger

import (
	"time"

	ledgerDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/ledger"
)

type TransactionType string

const (
	TransactionTypeAdd   TransactionType = "add"
	TransactionTypeIssue TransactionType = "issue"
)

// Label is the human readable form used in reports.
func (t TransactionType) Label() string {
	switch t {
	case TransactionTypeAdd:
		return "Added"
	case TransactionTypeIssue:
		return "Issued"
	default:
		return string(t)
	}
}

// Stock is the on-hand quantity of one item at one branch.
type Stock struct {
	ID          int64     `json:"id"`
	BranchID    int64     `json:"branch_id"`
	ItemID      int64     `json:"item_id"`
	Quantity    int64     `json:"quantity"`
	LastUpdated time.Time `json:"last_updated"`
}

type Transaction struct {
	ID              int64           `json:"id"`
	BranchID        int64           `json:"branch_id"`
	ItemID          int64           `json:"item_id"`
	Quantity        int64           `json:"quantity"`
	Type            TransactionType `json:"type"`
	PersonName      *string         `json:"person_name,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Remarks         *string         `json:"remarks,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func NewAddTransaction(branchID, itemID, quantity int64, date time.Time, remarks string) *Transaction {
	return &Transaction{
		BranchID:        branchID,
		ItemID:          itemID,
		Quantity:        quantity,
		Type:            TransactionTypeAdd,
		TransactionDate: date,
		Remarks:         optional(remarks),
	}
}

func NewIssueTransaction(branchID, itemID, quantity int64, personName string, date time.Time, remarks string) *Transaction {
	return &Transaction{
		BranchID:        branchID,
		ItemID:          itemID,
		Quantity:        quantity,
		Type:            TransactionTypeIssue,
		PersonName:      optional(personName),
		TransactionDate: date,
		Remarks:         optional(remarks),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StockView is a stock row joined with its area, branch and item names.
type StockView struct {
	ID          int64     `json:"id" db:"id"`
	BranchID    int64     `json:"branch_id" db:"branch_id"`
	ItemID      int64     `json:"item_id" db:"item_id"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	AreaID      int64     `json:"area_id" db:"area_id"`
	AreaName    string    `json:"area_name" db:"area_name"`
	BranchName  string    `json:"branch_name" db:"branch_name"`
	ItemName    string    `json:"item_name" db:"item_name"`
}

type TransactionView struct {
	ID              int64           `json:"id" db:"id"`
	BranchID        int64           `json:"branch_id" db:"branch_id"`
	ItemID          int64           `json:"item_id" db:"item_id"`
	Quantity        int64           `json:"quantity" db:"quantity"`
	Type            TransactionType `json:"type" db:"type"`
	PersonName      *string         `json:"person_name,omitempty" db:"person_name"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	Remarks         *string         `json:"remarks,omitempty" db:"remarks"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	AreaName        string          `json:"area_name" db:"area_name"`
	BranchName      string          `json:"branch_name" db:"branch_name"`
	ItemName        string          `json:"item_name" db:"item_name"`
}

// TransactionFilter bounds transaction_date; both ends are inclusive
// calendar dates and either may be nil.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

func StockFromDataModel(s *ledgerDatamodel.Stock) *Stock {
	return &Stock{
		ID:          s.ID,
		BranchID:    s.BranchID,
		ItemID:      s.ItemID,
		Quantity:    s.Quantity,
		LastUpdated: s.LastUpdated,
	}
}

func TransactionToDataModel(t *Transaction) *ledgerDatamodel.Transaction {
	return &ledgerDatamodel.Transaction{
		ID:              t.ID,
		BranchID:        t.BranchID,
		ItemID:          t.ItemID,
		Quantity:        t.Quantity,
		Type:            string(t.Type),
		PersonName:      t.PersonName,
		TransactionDate: t.TransactionDate,
		Remarks:         t.Remarks,
		CreatedAt:       t.CreatedAt,
	}
}

func TransactionFromDataModel(t *ledgerDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:              t.ID,
		BranchID:        t.BranchID,
		ItemID:          t.ItemID,
		Quantity:        t.Quantity,
		Type:            TransactionType(t.Type),
		PersonName:      t.PersonName,
		TransactionDate: t.TransactionDate,
		Remarks:         t.Remarks,
		CreatedAt:       t.CreatedAt,
	}
}
