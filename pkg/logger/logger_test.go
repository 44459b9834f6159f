package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/stock-management/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	It("writes JSON records in production", func() {
		var buf bytes.Buffer
		lg := logger.Setup(logger.Options{Env: "production", Output: &buf})

		lg.Info("stock issued", "branch_id", 1)

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("stock issued"))
		Expect(record["branch_id"]).To(BeNumerically("==", 1))
	})

	It("drops records below the configured level", func() {
		var buf bytes.Buffer
		lg := logger.Setup(logger.Options{Env: "development", Level: "warn", Output: &buf})

		lg.Info("ignored")
		Expect(buf.Len()).To(BeZero())

		lg.Warn("kept")
		Expect(buf.String()).To(ContainSubstring("kept"))
	})

	It("carries fields through the context", func() {
		var buf bytes.Buffer
		logger.Setup(logger.Options{Format: "text", Output: &buf})

		ctx := logger.With(context.Background(), "traceID", "abc")
		logger.From(ctx).Info("hello")

		Expect(buf.String()).To(ContainSubstring("traceID=abc"))
	})

	It("only finds loggers that were stored in the context", func() {
		_, ok := logger.Lookup(context.Background())
		Expect(ok).To(BeFalse())

		ctx := logger.With(context.Background(), "userID", 7)
		lg, ok := logger.Lookup(ctx)
		Expect(ok).To(BeTrue())
		Expect(lg).NotTo(BeNil())
	})
})
