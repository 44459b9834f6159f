package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	appErrors "github.com/frahmantamala/stock-management/internal"
	catalogDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/catalog"
	ledgerDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/ledger"
	"github.com/frahmantamala/stock-management/internal/ledger"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository writes through gorm and reads joined views through sqlx.
// Both must share the same *sql.DB.
type LedgerRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewLedgerRepository(db *gorm.DB, reader *sqlx.DB) ledger.Repository {
	return &LedgerRepository{db: db, reader: reader}
}

func (r *LedgerRepository) Do(ctx context.Context, fn func(tx ledger.TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx *gorm.DB
}

func (t *txRepository) UpsertStock(ctx context.Context, branchID, itemID, quantity int64, at time.Time) (*ledger.Stock, error) {
	row := &ledgerDatamodel.Stock{
		BranchID:    branchID,
		ItemID:      itemID,
		Quantity:    quantity,
		LastUpdated: at,
	}

	err := t.tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "branch_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":     gorm.Expr("stocks.quantity + excluded.quantity"),
			"last_updated": gorm.Expr("excluded.last_updated"),
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	return t.find(ctx, branchID, itemID)
}

func (t *txRepository) DecrementStock(ctx context.Context, branchID, itemID, quantity int64, at time.Time) (*ledger.Stock, error) {
	// check and decrement in one statement so concurrent issues serialize on the row
	res := t.tx.WithContext(ctx).
		Model(&ledgerDatamodel.Stock{}).
		Where("branch_id = ? AND item_id = ? AND quantity >= ?", branchID, itemID, quantity).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity - ?", quantity),
			"last_updated": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, appErrors.ErrInsufficientStock
	}

	return t.find(ctx, branchID, itemID)
}

func (t *txRepository) AppendTransaction(ctx context.Context, tx *ledger.Transaction) error {
	row := ledger.TransactionToDataModel(tx)
	if err := t.tx.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	tx.ID = row.ID
	tx.CreatedAt = row.CreatedAt
	return nil
}

func (t *txRepository) find(ctx context.Context, branchID, itemID int64) (*ledger.Stock, error) {
	var row ledgerDatamodel.Stock
	err := t.tx.WithContext(ctx).
		Where("branch_id = ? AND item_id = ?", branchID, itemID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return ledger.StockFromDataModel(&row), nil
}

func (r *LedgerRepository) BranchExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalogDatamodel.Branch{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *LedgerRepository) ItemExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalogDatamodel.Item{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *LedgerRepository) GetStockByID(ctx context.Context, id int64) (*ledger.Stock, error) {
	var row ledgerDatamodel.Stock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ledger.StockFromDataModel(&row), nil
}

func (r *LedgerRepository) SetStockQuantity(ctx context.Context, id, quantity int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ledgerDatamodel.Stock{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":     quantity,
			"last_updated": at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *LedgerRepository) DeleteStock(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&ledgerDatamodel.Stock{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *LedgerRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&ledgerDatamodel.Transaction{}, id)
	return res.RowsAffected > 0, res.Error
}

const stockDetailsQuery = `
	SELECT s.id, s.branch_id, s.item_id, s.quantity, s.last_updated,
	       b.area_id, a.name AS area_name, b.name AS branch_name, i.name AS item_name
	FROM stocks s
	JOIN branches b ON b.id = s.branch_id
	JOIN areas a ON a.id = b.area_id
	JOIN items i ON i.id = s.item_id
	ORDER BY a.name, b.name, i.name`

func (r *LedgerRepository) ListStockWithDetails(ctx context.Context) ([]ledger.StockView, error) {
	var rows []ledger.StockView
	if err := r.reader.SelectContext(ctx, &rows, r.reader.Rebind(stockDetailsQuery)); err != nil {
		return nil, err
	}
	return rows, nil
}

const transactionDetailsQuery = `
	SELECT t.id, t.branch_id, t.item_id, t.quantity, t.type, t.person_name,
	       t.transaction_date, t.remarks, t.created_at,
	       a.name AS area_name, b.name AS branch_name, i.name AS item_name
	FROM stock_transactions t
	JOIN branches b ON b.id = t.branch_id
	JOIN areas a ON a.id = b.area_id
	JOIN items i ON i.id = t.item_id`

func (r *LedgerRepository) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionView, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.StartDate != nil {
		conditions = append(conditions, "t.transaction_date >= ?")
		args = append(args, startOfDay(*filter.StartDate))
	}
	if filter.EndDate != nil {
		// inclusive end: everything before the following midnight
		conditions = append(conditions, "t.transaction_date < ?")
		args = append(args, startOfDay(*filter.EndDate).AddDate(0, 0, 1))
	}

	query := transactionDetailsQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	var rows []ledger.TransactionView
	if err := r.reader.SelectContext(ctx, &rows, r.reader.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
