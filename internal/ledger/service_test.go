package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/core/events"
	"github.com/frahmantamala/stock-management/internal/ledger"
	"github.com/frahmantamala/stock-management/pkg/logger"
)

func TestLedger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ledger Suite")
}

type pairKey struct{ branchID, itemID int64 }

// MockRepository keeps stock in memory and applies a unit of work to a
// scratch copy that is only committed when fn succeeds.
type MockRepository struct {
	mu           sync.Mutex
	branches     map[int64]bool
	items        map[int64]bool
	stock        map[pairKey]*ledger.Stock
	transactions []*ledger.Transaction
	nextID       int64
	failWith     error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		branches: map[int64]bool{1: true, 2: true},
		items:    map[int64]bool{1: true},
		stock:    make(map[pairKey]*ledger.Stock),
	}
}

type mockTx struct {
	repo         *MockRepository
	stock        map[pairKey]*ledger.Stock
	transactions []*ledger.Transaction
}

func (m *MockRepository) Do(ctx context.Context, fn func(tx ledger.TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}

	scratch := make(map[pairKey]*ledger.Stock, len(m.stock))
	for k, v := range m.stock {
		cp := *v
		scratch[k] = &cp
	}
	tx := &mockTx{repo: m, stock: scratch}
	if err := fn(tx); err != nil {
		return err
	}
	m.stock = scratch
	m.transactions = append(m.transactions, tx.transactions...)
	return nil
}

func (t *mockTx) UpsertStock(ctx context.Context, branchID, itemID, quantity int64, at time.Time) (*ledger.Stock, error) {
	key := pairKey{branchID, itemID}
	s, ok := t.stock[key]
	if !ok {
		t.repo.nextID++
		s = &ledger.Stock{ID: t.repo.nextID, BranchID: branchID, ItemID: itemID}
		t.stock[key] = s
	}
	s.Quantity += quantity
	s.LastUpdated = at
	cp := *s
	return &cp, nil
}

func (t *mockTx) DecrementStock(ctx context.Context, branchID, itemID, quantity int64, at time.Time) (*ledger.Stock, error) {
	s, ok := t.stock[pairKey{branchID, itemID}]
	if !ok || s.Quantity < quantity {
		return nil, appErrors.ErrInsufficientStock
	}
	s.Quantity -= quantity
	s.LastUpdated = at
	cp := *s
	return &cp, nil
}

func (t *mockTx) AppendTransaction(ctx context.Context, tx *ledger.Transaction) error {
	t.transactions = append(t.transactions, tx)
	return nil
}

func (m *MockRepository) BranchExists(ctx context.Context, id int64) (bool, error) {
	return m.branches[id], m.failWith
}

func (m *MockRepository) ItemExists(ctx context.Context, id int64) (bool, error) {
	return m.items[id], m.failWith
}

func (m *MockRepository) GetStockByID(ctx context.Context, id int64) (*ledger.Stock, error) {
	for _, s := range m.stock {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, m.failWith
}

func (m *MockRepository) SetStockQuantity(ctx context.Context, id, quantity int64, at time.Time) (bool, error) {
	for _, s := range m.stock {
		if s.ID == id {
			s.Quantity = quantity
			s.LastUpdated = at
			return true, nil
		}
	}
	return false, m.failWith
}

func (m *MockRepository) DeleteStock(ctx context.Context, id int64) (bool, error) {
	for k, s := range m.stock {
		if s.ID == id {
			delete(m.stock, k)
			return true, nil
		}
	}
	return false, m.failWith
}

func (m *MockRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	return false, m.failWith
}

func (m *MockRepository) ListStockWithDetails(ctx context.Context) ([]ledger.StockView, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return nil, nil
}

func (m *MockRepository) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionView, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return nil, nil
}

func (m *MockRepository) quantity(branchID, itemID int64) (int64, bool) {
	s, ok := m.stock[pairKey{branchID, itemID}]
	if !ok {
		return 0, false
	}
	return s.Quantity, true
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var _ = Describe("Ledger Service", func() {
	var (
		repo      *MockRepository
		publisher *recordingPublisher
		service   *ledger.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		publisher = &recordingPublisher{}
		service = ledger.NewService(repo, publisher, logger.Discard(), time.Second)
		ctx = context.Background()
	})

	Describe("AddStock", func() {
		It("sums every add on the same pair", func() {
			for _, q := range []int64{1, 2, 3, 4} {
				_, err := service.AddStock(ctx, ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: q, Date: "2024-01-01"})
				Expect(err).NotTo(HaveOccurred())
			}

			qty, ok := repo.quantity(1, 1)
			Expect(ok).To(BeTrue())
			Expect(qty).To(Equal(int64(10)))
			Expect(repo.transactions).To(HaveLen(4))
			Expect(publisher.events).To(HaveLen(4))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeStockAdded))
		})

		DescribeTable("rejects invalid input",
			func(dto ledger.AddStockDTO) {
				_, err := service.AddStock(ctx, dto)
				appErr, ok := appErrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(appErrors.ErrorTypeValidation))
				Expect(repo.transactions).To(BeEmpty())
			},
			Entry("zero quantity", ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: 0, Date: "2024-01-01"}),
			Entry("negative quantity", ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: -3, Date: "2024-01-01"}),
			Entry("missing branch", ledger.AddStockDTO{ItemID: 1, Quantity: 1, Date: "2024-01-01"}),
			Entry("missing date", ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: 1}),
			Entry("malformed date", ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: 1, Date: "01/01/2024"}),
		)

		It("returns NotFound for unknown items", func() {
			_, err := service.AddStock(ctx, ledger.AddStockDTO{BranchID: 1, ItemID: 42, Quantity: 1, Date: "2024-01-01"})
			Expect(err).To(MatchError(appErrors.ErrItemNotFound))
		})

		It("surfaces storage failures as retryable", func() {
			repo.failWith = errors.New("connection refused")

			_, err := service.AddStock(ctx, ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: 1, Date: "2024-01-01"})
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(appErrors.ErrorTypeUnavailable))
			Expect(appErr.Retryable).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("connection refused")))
		})
	})

	Describe("IssueStock", func() {
		BeforeEach(func() {
			_, err := service.AddStock(ctx, ledger.AddStockDTO{BranchID: 1, ItemID: 1, Quantity: 10, Date: "2024-01-01"})
			Expect(err).NotTo(HaveOccurred())
			publisher.events = nil
		})

		It("leaves six after issuing four of ten", func() {
			stock, err := service.IssueStock(ctx, ledger.IssueStockDTO{BranchID: 1, ItemID: 1, Quantity: 4, PersonName: "Alice", Date: "2024-01-02"})
			Expect(err).NotTo(HaveOccurred())
			Expect(stock.Quantity).To(Equal(int64(6)))

			Expect(repo.transactions).To(HaveLen(2))
			issued := repo.transactions[1]
			Expect(issued.Type).To(Equal(ledger.TransactionTypeIssue))
			Expect(issued.Quantity).To(Equal(int64(4)))
			Expect(*issued.PersonName).To(Equal("Alice"))
			Expect(issued.TransactionDate).To(Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

			Expect(publisher.events).To(HaveLen(1))
			moved := publisher.events[0].(*events.StockMovedEvent)
			Expect(moved.EventType()).To(Equal(events.EventTypeStockIssued))
			Expect(moved.Remaining).To(Equal(int64(6)))
		})

		It("fails with InsufficientStock and mutates nothing", func() {
			_, err := service.IssueStock(ctx, ledger.IssueStockDTO{BranchID: 1, ItemID: 1, Quantity: 11, PersonName: "Bob", Date: "2024-01-02"})
			Expect(err).To(MatchError(appErrors.ErrInsufficientStock))

			qty, _ := repo.quantity(1, 1)
			Expect(qty).To(Equal(int64(10)))
			Expect(repo.transactions).To(HaveLen(1))
			Expect(publisher.events).To(BeEmpty())
		})

		It("fails on a pair without stock and creates no row", func() {
			_, err := service.IssueStock(ctx, ledger.IssueStockDTO{BranchID: 2, ItemID: 1, Quantity: 1, PersonName: "Carol", Date: "2024-01-02"})
			Expect(err).To(MatchError(appErrors.ErrInsufficientStock))

			_, ok := repo.quantity(2, 1)
			Expect(ok).To(BeFalse())
		})

		It("requires a person name", func() {
			_, err := service.IssueStock(ctx, ledger.IssueStockDTO{BranchID: 1, ItemID: 1, Quantity: 1, PersonName: "  ", Date: "2024-01-02"})
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(appErrors.ErrorTypeValidation))
			Expect(appErr.Error()).To(Equal("person_name is required"))
		})

		It("keeps insufficient stock distinct from storage failures", func() {
			repo.failWith = errors.New("disk full")
			_, err := service.IssueStock(ctx, ledger.IssueStockDTO{BranchID: 1, ItemID: 1, Quantity: 1, PersonName: "Dan", Date: "2024-01-02"})
			Expect(err).NotTo(MatchError(appErrors.ErrInsufficientStock))
			appErr, _ := appErrors.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(503))
		})
	})

	Describe("AdjustStock", func() {
		It("rejects negative quantities", func() {
			q := int64(-1)
			_, err := service.AdjustStock(ctx, 1, ledger.AdjustStockDTO{Quantity: &q})
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(appErrors.ErrorTypeValidation))
		})

		It("requires a quantity", func() {
			_, err := service.AdjustStock(ctx, 1, ledger.AdjustStockDTO{})
			Expect(err).To(MatchError(ContainSubstring("quantity is required")))
		})
	})

	Describe("listing", func() {
		It("returns empty slices rather than nil", func() {
			rows, err := service.ListStockWithDetails(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).NotTo(BeNil())
			Expect(rows).To(BeEmpty())
		})
	})
})
