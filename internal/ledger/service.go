package ledger

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/core/events"
)

// TxRepository is the write side of a single unit of work. Every call made
// through it commits or rolls back together.
type TxRepository interface {
	// UpsertStock increments the (branch, item) counter, creating it when absent.
	UpsertStock(ctx context.Context, branchID, itemID, quantity int64, at time.Time) (*Stock, error)
	// DecrementStock subtracts quantity only if the counter holds at least that
	// much; otherwise it returns errors.ErrInsufficientStock and changes nothing.
	DecrementStock(ctx context.Context, branchID, itemID, quantity int64, at time.Time) (*Stock, error)
	AppendTransaction(ctx context.Context, tx *Transaction) error
}

type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxRepository) error) error
}

type Repository interface {
	UnitOfWork

	BranchExists(ctx context.Context, id int64) (bool, error)
	ItemExists(ctx context.Context, id int64) (bool, error)

	GetStockByID(ctx context.Context, id int64) (*Stock, error)
	SetStockQuantity(ctx context.Context, id, quantity int64, at time.Time) (bool, error)
	DeleteStock(ctx context.Context, id int64) (bool, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)

	ListStockWithDetails(ctx context.Context) ([]StockView, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]TransactionView, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo         Repository
	publisher    EventPublisher
	logger       *slog.Logger
	queryTimeout time.Duration
	now          func() time.Time
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger, queryTimeout time.Duration) *Service {
	return &Service{
		repo:         repo,
		publisher:    publisher,
		logger:       logger,
		queryTimeout: queryTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) AddStock(ctx context.Context, dto AddStockDTO) (*Stock, error) {
	date, err := dto.Validate()
	if err != nil {
		s.logger.Warn("add stock validation failed", "error", err)
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.ensureReferences(ctx, dto.BranchID, dto.ItemID); err != nil {
		return nil, err
	}

	var stock *Stock
	err = s.repo.Do(ctx, func(tx TxRepository) error {
		now := s.now()
		updated, err := tx.UpsertStock(ctx, dto.BranchID, dto.ItemID, dto.Quantity, now)
		if err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, NewAddTransaction(dto.BranchID, dto.ItemID, dto.Quantity, date, dto.Remarks)); err != nil {
			return err
		}
		stock = updated
		return nil
	})
	if err != nil {
		return nil, s.storageError("add stock", err, "branch_id", dto.BranchID, "item_id", dto.ItemID)
	}

	s.logger.Info("stock added",
		"branch_id", dto.BranchID,
		"item_id", dto.ItemID,
		"quantity", dto.Quantity,
		"on_hand", stock.Quantity)

	s.publish(ctx, events.NewStockAddedEvent(dto.BranchID, dto.ItemID, dto.Quantity, stock.Quantity))
	return stock, nil
}

// IssueStock hands quantity to a named person. It fails with
// errors.ErrInsufficientStock, leaving the ledger untouched, when the branch
// does not hold enough of the item.
func (s *Service) IssueStock(ctx context.Context, dto IssueStockDTO) (*Stock, error) {
	date, err := dto.Validate()
	if err != nil {
		s.logger.Warn("issue stock validation failed", "error", err)
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.ensureReferences(ctx, dto.BranchID, dto.ItemID); err != nil {
		return nil, err
	}

	var stock *Stock
	err = s.repo.Do(ctx, func(tx TxRepository) error {
		now := s.now()
		updated, err := tx.DecrementStock(ctx, dto.BranchID, dto.ItemID, dto.Quantity, now)
		if err != nil {
			return err
		}
		issue := NewIssueTransaction(dto.BranchID, dto.ItemID, dto.Quantity, dto.PersonName, date, dto.Remarks)
		if err := tx.AppendTransaction(ctx, issue); err != nil {
			return err
		}
		stock = updated
		return nil
	})
	if err != nil {
		if stdErrors.Is(err, errors.ErrInsufficientStock) {
			s.logger.Info("issue rejected: insufficient stock",
				"branch_id", dto.BranchID,
				"item_id", dto.ItemID,
				"requested", dto.Quantity)
			return nil, errors.ErrInsufficientStock
		}
		return nil, s.storageError("issue stock", err, "branch_id", dto.BranchID, "item_id", dto.ItemID)
	}

	s.logger.Info("stock issued",
		"branch_id", dto.BranchID,
		"item_id", dto.ItemID,
		"quantity", dto.Quantity,
		"person_name", dto.PersonName,
		"on_hand", stock.Quantity)

	s.publish(ctx, events.NewStockIssuedEvent(dto.BranchID, dto.ItemID, dto.Quantity, stock.Quantity))
	return stock, nil
}

// AdjustStock overwrites the on-hand quantity without recording a movement.
func (s *Service) AdjustStock(ctx context.Context, stockID int64, dto AdjustStockDTO) (*Stock, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := s.repo.SetStockQuantity(ctx, stockID, *dto.Quantity, s.now())
	if err != nil {
		return nil, s.storageError("adjust stock", err, "stock_id", stockID)
	}
	if !found {
		return nil, errors.ErrStockNotFound
	}

	stock, err := s.repo.GetStockByID(ctx, stockID)
	if err != nil {
		return nil, s.storageError("reload stock", err, "stock_id", stockID)
	}
	if stock == nil {
		return nil, errors.ErrStockNotFound
	}

	s.logger.Info("stock adjusted",
		"stock_id", stockID,
		"quantity", stock.Quantity,
		"user_id", errors.UserIDFromContext(ctx))
	return stock, nil
}

func (s *Service) DeleteStock(ctx context.Context, stockID int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := s.repo.DeleteStock(ctx, stockID)
	if err != nil {
		return s.storageError("delete stock", err, "stock_id", stockID)
	}
	if !found {
		return errors.ErrStockNotFound
	}

	s.logger.Info("stock deleted", "stock_id", stockID, "user_id", errors.UserIDFromContext(ctx))
	return nil
}

func (s *Service) DeleteTransaction(ctx context.Context, transactionID int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	found, err := s.repo.DeleteTransaction(ctx, transactionID)
	if err != nil {
		return s.storageError("delete transaction", err, "transaction_id", transactionID)
	}
	if !found {
		return errors.ErrTransactionNotFound
	}

	s.logger.Info("transaction deleted", "transaction_id", transactionID, "user_id", errors.UserIDFromContext(ctx))
	return nil
}

func (s *Service) ListStockWithDetails(ctx context.Context) ([]StockView, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.ListStockWithDetails(ctx)
	if err != nil {
		return nil, s.storageError("list stock", err)
	}
	if rows == nil {
		rows = []StockView{}
	}
	return rows, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]TransactionView, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, errors.NewValidationFieldError("endDate", "endDate must not be before startDate", errors.ErrCodeInvalidDateRange)
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, s.storageError("list transactions", err)
	}
	if rows == nil {
		rows = []TransactionView{}
	}
	return rows, nil
}

func (s *Service) ensureReferences(ctx context.Context, branchID, itemID int64) error {
	ok, err := s.repo.BranchExists(ctx, branchID)
	if err != nil {
		return s.storageError("lookup branch", err, "branch_id", branchID)
	}
	if !ok {
		return errors.ErrBranchNotFound
	}

	ok, err = s.repo.ItemExists(ctx, itemID)
	if err != nil {
		return s.storageError("lookup item", err, "item_id", itemID)
	}
	if !ok {
		return errors.ErrItemNotFound
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// storageError logs an infrastructure failure and returns it as a retryable
// error. Application errors pass through unchanged.
func (s *Service) storageError(op string, err error, attrs ...any) error {
	if appErr, ok := errors.IsAppError(err); ok {
		return appErr
	}
	s.logger.Error("ledger storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return errors.NewUnavailableError("Storage unavailable, please retry", err)
}
