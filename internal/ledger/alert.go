package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/stock-management/internal/core/events"
)

// LowStockAlert warns when an issue leaves a branch at or below threshold.
type LowStockAlert struct {
	threshold int64
	logger    *slog.Logger
}

func NewLowStockAlert(threshold int64, logger *slog.Logger) *LowStockAlert {
	return &LowStockAlert{threshold: threshold, logger: logger}
}

func (a *LowStockAlert) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeStockIssued, a.Handle)
}

func (a *LowStockAlert) Handle(ctx context.Context, event events.Event) error {
	moved, ok := event.(*events.StockMovedEvent)
	if !ok {
		return fmt.Errorf("low stock alert: unexpected event %T", event)
	}

	if moved.Remaining > a.threshold {
		return nil
	}

	a.logger.Warn("stock running low",
		"branch_id", moved.BranchID,
		"item_id", moved.ItemID,
		"remaining", moved.Remaining,
		"threshold", a.threshold,
		"event_id", moved.EventID())
	return nil
}
