package ledger

import "time"

type Stock struct {
	ID          int64     `gorm:"primaryKey"`
	BranchID    int64     `gorm:"column:branch_id;not null;uniqueIndex:idx_stocks_branch_item"`
	ItemID      int64     `gorm:"column:item_id;not null;uniqueIndex:idx_stocks_branch_item"`
	Quantity    int64     `gorm:"column:quantity;not null;default:0"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

func (Stock) TableName() string {
	return "stocks"
}

// Transaction rows are append-only.
type Transaction struct {
	ID              int64     `gorm:"primaryKey"`
	BranchID        int64     `gorm:"column:branch_id;not null;index"`
	ItemID          int64     `gorm:"column:item_id;not null;index"`
	Quantity        int64     `gorm:"column:quantity;not null"`
	Type            string    `gorm:"column:type;not null"`
	PersonName      *string   `gorm:"column:person_name"`
	TransactionDate time.Time `gorm:"column:transaction_date;not null;index"`
	Remarks         *string   `gorm:"column:remarks"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Transaction) TableName() string {
	return "stock_transactions"
}
