package ledger_test

import (
	"bytes"
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/stock-management/internal/core/events"
	"github.com/frahmantamala/stock-management/internal/ledger"
)

var _ = Describe("LowStockAlert", func() {
	var (
		buf   *bytes.Buffer
		alert *ledger.LowStockAlert
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		alert = ledger.NewLowStockAlert(5, slog.New(slog.NewTextHandler(buf, nil)))
	})

	It("warns at the threshold", func() {
		Expect(alert.Handle(context.Background(), events.NewStockIssuedEvent(1, 2, 5, 5))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("stock running low"))
		Expect(buf.String()).To(ContainSubstring("remaining=5"))
	})

	It("stays quiet above the threshold", func() {
		Expect(alert.Handle(context.Background(), events.NewStockIssuedEvent(1, 2, 1, 6))).To(Succeed())
		Expect(buf.Len()).To(BeZero())
	})

	It("rejects foreign event types", func() {
		foreign := events.BaseEvent{ID: "x", Type: events.EventTypeStockIssued}
		Expect(alert.Handle(context.Background(), foreign)).To(MatchError(ContainSubstring("unexpected event")))
	})

	It("is driven by the event bus", func() {
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		done := make(chan struct{})
		alert.Register(bus)
		bus.Subscribe(events.EventTypeStockIssued, func(ctx context.Context, event events.Event) error {
			close(done)
			return nil
		})

		Expect(bus.PublishSync(context.Background(), events.NewStockIssuedEvent(1, 2, 9, 0))).To(Succeed())
		Eventually(done).Should(BeClosed())
		Expect(buf.String()).To(ContainSubstring("threshold=5"))
	})
})
