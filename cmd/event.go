package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/stock-management/internal/core/events"
	"github.com/frahmantamala/stock-management/internal/ledger"
	"github.com/frahmantamala/stock-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish stock events to the in-process bus to check subscribers such as the low stock alert`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [stock.added|stock.issued]",
	Short: "Publish a test stock event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventBranchID  int64
	eventItemID    int64
	eventQuantity  int64
	eventRemaining int64
	eventThreshold int64
)

func publishTestEvent(eventType string) error {
	log := logger.LoggerWrapper()

	var event *events.StockMovedEvent
	switch eventType {
	case events.EventTypeStockAdded:
		event = events.NewStockAddedEvent(eventBranchID, eventItemID, eventQuantity, eventRemaining)
	case events.EventTypeStockIssued:
		event = events.NewStockIssuedEvent(eventBranchID, eventItemID, eventQuantity, eventRemaining)
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	bus := events.NewEventBus(log)
	ledger.NewLowStockAlert(eventThreshold, log).Register(bus)
	bus.Subscribe(eventType, func(ctx context.Context, e events.Event) error {
		log.Info("test handler received event",
			"event_id", e.EventID(),
			"event_type", e.EventType(),
			"payload", e.Payload())
		return nil
	})

	log.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	log.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventBranchID, "branch", 1, "branch id")
	publishEventCmd.Flags().Int64Var(&eventItemID, "item", 1, "item id")
	publishEventCmd.Flags().Int64Var(&eventQuantity, "quantity", 1, "quantity moved")
	publishEventCmd.Flags().Int64Var(&eventRemaining, "remaining", 0, "balance after the movement")
	publishEventCmd.Flags().Int64Var(&eventThreshold, "threshold", 5, "low stock threshold")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
