package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/stock-management/internal/transport/middleware"
	"github.com/frahmantamala/stock-management/pkg/logger"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"token":"abc","name":"Main"}`))
})

var _ = Describe("LoggingMiddleware", func() {
	It("masks credentials in request and response bodies", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, nil))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-token")

		middleware.LoggingMiddleware(lg)(okHandler).ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).To(ContainSubstring("incoming request"))
		Expect(out).To(ContainSubstring(`admin`))
		Expect(out).NotTo(ContainSubstring("admin123"))
		Expect(out).NotTo(ContainSubstring("secret-token"))
		Expect(out).NotTo(ContainSubstring(`\"token\":\"abc\"`))
		Expect(out).To(ContainSubstring("[FILTERED]"))
	})

	It("leaves the request body readable for the handler", func() {
		var seen string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			seen = body["name"]
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/areas", strings.NewReader(`{"name":"North"}`))
		req.Header.Set("Content-Type", "application/json")
		middleware.LoggingMiddleware(logger.Discard())(handler).ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal("North"))
	})

	It("does not echo CSV bodies", func() {
		var buf bytes.Buffer
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("Date,Area\n2024-01-01,North\n"))
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/export", nil)
		middleware.LoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))(handler).ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).NotTo(ContainSubstring("2024-01-01,North"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers a panic with a JSON 500", func() {
		panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})

		w := httptest.NewRecorder()
		middleware.RecoveryMiddleware(logger.Discard())(panicky).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["message"]).To(Equal("Internal server error"))
	})

	It("re-panics on http.ErrAbortHandler", func() {
		aborting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		})

		Expect(func() {
			middleware.RecoveryMiddleware(logger.Discard())(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(PanicWith(http.ErrAbortHandler))
	})
})

var _ = Describe("RequestID", func() {
	It("reuses an incoming trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceHeader, "trace-1")
		w := httptest.NewRecorder()

		var hasLogger bool
		middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasLogger = logger.Lookup(r.Context())
		})).ServeHTTP(w, req)

		Expect(w.Header().Get(middleware.TraceHeader)).To(Equal("trace-1"))
		Expect(hasLogger).To(BeTrue())
	})

	It("generates one when absent", func() {
		w := httptest.NewRecorder()
		middleware.RequestID(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Header().Get(middleware.TraceHeader)).To(HaveLen(36))
	})
})

var _ = Describe("CORS", func() {
	cors := middleware.CORS([]string{"http://localhost:3000"})

	It("allows configured origins with credentials", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		cors(okHandler).ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(w.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
	})

	It("ignores other origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		w := httptest.NewRecorder()
		cors(okHandler).ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("answers preflight requests without reaching the handler", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/stock", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		cors(okHandler).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.Len()).To(BeZero())
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(w.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring(http.MethodPost))
	})

	It("never pairs a wildcard origin with the caller's origin", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		w := httptest.NewRecorder()
		middleware.CORS([]string{"*"})(okHandler).ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).NotTo(Equal("http://evil.test"))
	})

	It("adds no headers when no origins are configured", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		middleware.CORS(nil)(okHandler).ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})

const testDocument = `openapi: 3.0.3
info:
  title: test
  version: 1.0.0
servers:
  - url: /api/v1
paths:
  /stock/issue:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [branch_id, quantity]
              properties:
                branch_id:
                  type: integer
                quantity:
                  type: integer
      responses:
        "200":
          description: ok
  /reports:
    get:
      parameters:
        - name: startDate
          in: query
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
`

var _ = Describe("OpenAPIValidator", func() {
	var handler http.Handler

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "openapi.yml")
		Expect(os.WriteFile(path, []byte(testDocument), 0o600)).To(Succeed())

		validator, err := middleware.NewOpenAPIValidator(path, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		handler = validator.Middleware(okHandler)
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	It("passes conforming requests", func() {
		Expect(serve(http.MethodPost, "/api/v1/stock/issue", `{"branch_id":1,"quantity":2}`).Code).To(Equal(http.StatusOK))
	})

	It("rejects bodies missing required fields", func() {
		w := serve(http.MethodPost, "/api/v1/stock/issue", `{"branch_id":1}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("invalid request body"))
	})

	It("rejects missing required query parameters", func() {
		w := serve(http.MethodGet, "/api/v1/reports", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`invalid parameter \"startDate\"`))
	})

	It("lets undocumented paths through", func() {
		Expect(serve(http.MethodGet, "/api/v1/unknown", "").Code).To(Equal(http.StatusOK))
	})

	It("fails to build from a missing document", func() {
		_, err := middleware.NewOpenAPIValidator("/nonexistent/openapi.yml", logger.Discard())
		Expect(err).To(HaveOccurred())
	})
})
