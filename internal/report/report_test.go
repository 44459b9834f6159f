package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/ledger"
	"github.com/frahmantamala/stock-management/internal/report"
	"github.com/frahmantamala/stock-management/internal/transport"
	"github.com/frahmantamala/stock-management/pkg/logger"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

type fakeSource struct {
	rows       []ledger.TransactionView
	lastFilter ledger.TransactionFilter
	calls      int
}

func (f *fakeSource) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionView, error) {
	f.calls++
	f.lastFilter = filter
	return f.rows, nil
}

func str(s string) *string { return &s }

func date(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	Expect(err).NotTo(HaveOccurred())
	return d
}

var _ = Describe("Report Service", func() {
	var (
		source  *fakeSource
		service *report.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		source = &fakeSource{rows: []ledger.TransactionView{
			{ID: 2, Quantity: 3, Type: ledger.TransactionTypeIssue, TransactionDate: date("2024-01-05"),
				AreaName: "North", BranchName: "Main, Floor 2", ItemName: "Gloves", PersonName: str(`Ann "Boss" Lee`)},
			{ID: 1, Quantity: 10, Type: ledger.TransactionTypeAdd, TransactionDate: date("2024-01-01"),
				AreaName: "North", BranchName: "Main", ItemName: "Gloves", Remarks: str("first\ndelivery")},
		}}
		service = report.NewService(source, logger.Discard())
	})

	Describe("Generate", func() {
		It("passes the inclusive range through and totals by type", func() {
			rep, err := service.Generate(ctx, "2024-01-01", "2024-01-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.TotalAdded).To(Equal(int64(10)))
			Expect(rep.TotalIssued).To(Equal(int64(3)))
			Expect(*source.lastFilter.StartDate).To(BeTemporally("==", date("2024-01-01")))
			Expect(*source.lastFilter.EndDate).To(BeTemporally("==", date("2024-01-31")))
		})

		It("accepts a single day", func() {
			_, err := service.Generate(ctx, "2024-01-05", "2024-01-05")
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("rejects bad ranges before touching storage",
			func(start, end string) {
				_, err := service.Generate(ctx, start, end)
				appErr, ok := appErrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(appErrors.ErrorTypeValidation))
				Expect(source.calls).To(BeZero())
			},
			Entry("start after end", "2024-02-01", "2024-01-01"),
			Entry("missing start", "", "2024-01-01"),
			Entry("missing end", "2024-01-01", ""),
			Entry("malformed date", "01/01/2024", "2024-01-31"),
		)
	})

	Describe("Export", func() {
		It("writes an escaped CSV and names the file after the range", func() {
			var buf bytes.Buffer
			name, err := service.Export(ctx, &buf, "2024-01-01", "2024-01-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("stock-report-2024-01-01-to-2024-01-31.csv"))

			Expect(buf.String()).To(HavePrefix("Date,Area,Branch,Item,Quantity,Type,Person,Remarks\n"))
			Expect(buf.String()).To(ContainSubstring(`"Main, Floor 2"`))
			Expect(buf.String()).To(ContainSubstring(`"Ann ""Boss"" Lee"`))

			records, err := csv.NewReader(&buf).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[1]).To(Equal([]string{"2024-01-05", "North", "Main, Floor 2", "Gloves", "3", "Issued", `Ann "Boss" Lee`, ""}))
			Expect(records[2]).To(Equal([]string{"2024-01-01", "North", "Main", "Gloves", "10", "Added", "", "first\ndelivery"}))
		})

		It("writes only the header for an empty range", func() {
			source.rows = nil
			var buf bytes.Buffer
			_, err := service.Export(ctx, &buf, "2024-01-01", "2024-01-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(Equal("Date,Area,Branch,Item,Quantity,Type,Person,Remarks\n"))
		})
	})
})

var _ = Describe("Report Handler", func() {
	var handler *report.Handler

	BeforeEach(func() {
		source := &fakeSource{rows: []ledger.TransactionView{
			{ID: 1, Quantity: 4, Type: ledger.TransactionTypeAdd, TransactionDate: date("2024-03-01"), AreaName: "A", BranchName: "B", ItemName: "I"},
		}}
		handler = report.NewHandler(transport.NewBaseHandler(logger.Discard()), report.NewService(source, logger.Discard()))
	})

	It("serves the CSV as an attachment", func() {
		w := httptest.NewRecorder()
		handler.ExportCSV(w, httptest.NewRequest(http.MethodGet, "/reports/export?startDate=2024-03-01&endDate=2024-03-31", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="stock-report-2024-03-01-to-2024-03-31.csv"`))
		Expect(w.Body.String()).To(ContainSubstring("2024-03-01,A,B,I,4,Added,,"))
	})

	It("answers an inverted range with 400 JSON", func() {
		w := httptest.NewRecorder()
		handler.GetReport(w, httptest.NewRequest(http.MethodGet, "/reports?startDate=2024-03-31&endDate=2024-03-01", nil))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
	})
})
