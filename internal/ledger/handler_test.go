package ledger_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	appErrors "github.com/frahmantamala/stock-management/internal"
	catalogDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/catalog"
	ledgerDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/ledger"
	"github.com/frahmantamala/stock-management/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/stock-management/internal/ledger/postgres"
	"github.com/frahmantamala/stock-management/internal/transport"
	"github.com/frahmantamala/stock-management/pkg/logger"
)

var _ = Describe("Ledger Handler Integration", func() {
	var (
		db     *gorm.DB
		router *chi.Mux
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&catalogDatamodel.Area{},
			&catalogDatamodel.Branch{},
			&catalogDatamodel.Item{},
			&ledgerDatamodel.Stock{},
			&ledgerDatamodel.Transaction{},
		)).To(Succeed())

		area := &catalogDatamodel.Area{Name: "Central"}
		Expect(db.Create(area).Error).To(Succeed())
		Expect(db.Create(&catalogDatamodel.Branch{Name: "Main", AreaID: area.ID}).Error).To(Succeed())
		Expect(db.Create(&catalogDatamodel.Item{Name: "Gloves"}).Error).To(Succeed())

		repo := ledgerPostgres.NewLedgerRepository(db, sqlx.NewDb(sqlDB, "sqlite3"))
		service := ledger.NewService(repo, nil, logger.Discard(), 5*time.Second)
		handler := ledger.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Get("/stock", handler.ListStock)
		router.Post("/stock", handler.AddStock)
		router.Post("/stock/issue", handler.IssueStock)
		router.Put("/stock/{id}", handler.AdjustStock)
		router.Delete("/stock/{id}", handler.DeleteStock)
		router.Get("/transactions", handler.ListTransactions)
		router.Delete("/transactions/{id}", handler.DeleteTransaction)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body["error"]
	}

	It("adds, issues and lists stock", func() {
		w := do(http.MethodPost, "/stock", `{"branch_id":1,"item_id":1,"quantity":10,"date":"2024-01-01"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodPost, "/stock/issue", `{"branch_id":1,"item_id":1,"quantity":4,"person_name":"Alice","date":"2024-01-02"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var stock ledger.Stock
		Expect(json.NewDecoder(w.Body).Decode(&stock)).To(Succeed())
		Expect(stock.Quantity).To(Equal(int64(6)))

		w = do(http.MethodGet, "/stock", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list ledger.StockListResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Stock).To(HaveLen(1))
		Expect(list.Stock[0].BranchName).To(Equal("Main"))
		Expect(list.Stock[0].ItemName).To(Equal("Gloves"))
	})

	It("answers an overdraw with 400 INSUFFICIENT_STOCK", func() {
		w := do(http.MethodPost, "/stock/issue", `{"branch_id":1,"item_id":1,"quantity":1,"person_name":"Bob","date":"2024-01-02"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		errBody := decodeError(w)
		Expect(errBody["type"]).To(Equal(string(appErrors.ErrorTypeInsufficientStock)))
		Expect(errBody["message"]).To(Equal("Not enough stock available"))
	})

	It("rejects malformed bodies", func() {
		w := do(http.MethodPost, "/stock", `{"branch_id":"one"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("adjusts and deletes stock by id", func() {
		Expect(do(http.MethodPost, "/stock", `{"branch_id":1,"item_id":1,"quantity":3,"date":"2024-01-01"}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPut, "/stock/1", `{"quantity":7}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		Expect(do(http.MethodDelete, "/stock/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, "/stock/1", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/stock/abc", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("filters transactions by date", func() {
		Expect(do(http.MethodPost, "/stock", `{"branch_id":1,"item_id":1,"quantity":3,"date":"2024-01-01"}`).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/stock", `{"branch_id":1,"item_id":1,"quantity":5,"date":"2024-03-01"}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/transactions?startDate=2024-02-01&endDate=2024-03-01", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list ledger.TransactionListResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Transactions).To(HaveLen(1))
		Expect(list.Transactions[0].Quantity).To(Equal(int64(5)))

		Expect(do(http.MethodGet, "/transactions?startDate=bad", "").Code).To(Equal(http.StatusBadRequest))

		Expect(do(http.MethodDelete, "/transactions/1", "").Code).To(Equal(http.StatusNoContent))
	})
})
