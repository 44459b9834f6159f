package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeStockAdded  = "stock.added"
	EventTypeStockIssued = "stock.issued"
)

type StockMovedEvent struct {
	BaseEvent
	BranchID  int64 `json:"branch_id"`
	ItemID    int64 `json:"item_id"`
	Quantity  int64 `json:"quantity"`
	Remaining int64 `json:"remaining"`
}

func newStockMovedEvent(eventType string, branchID, itemID, quantity, remaining int64) *StockMovedEvent {
	return &StockMovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"branch_id": branchID,
				"item_id":   itemID,
				"quantity":  quantity,
				"remaining": remaining,
			},
		},
		BranchID:  branchID,
		ItemID:    itemID,
		Quantity:  quantity,
		Remaining: remaining,
	}
}

func NewStockAddedEvent(branchID, itemID, quantity, remaining int64) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockAdded, branchID, itemID, quantity, remaining)
}

// NewStockIssuedEvent carries the balance left on the (branch, item) pair
// after the issue committed.
func NewStockIssuedEvent(branchID, itemID, quantity, remaining int64) *StockMovedEvent {
	return newStockMovedEvent(EventTypeStockIssued, branchID, itemID, quantity, remaining)
}
