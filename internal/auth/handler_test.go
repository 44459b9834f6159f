package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/stock-management/internal/auth"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
	"github.com/frahmantamala/stock-management/internal/transport"
	"github.com/frahmantamala/stock-management/pkg/logger"
)

var _ = Describe("Auth Handler", func() {
	var router *chi.Mux

	BeforeEach(func() {
		service := newAuthService(openTestDB())
		handler := auth.NewHandler(transport.NewBaseHandler(logger.Discard()), service, auth.CookieConfig{Name: "session"})

		router = chi.NewRouter()
		router.Post("/auth/login", handler.Login)
		router.Post("/auth/logout", handler.Logout)
		router.Group(func(r chi.Router) {
			r.Use(handler.RequireAuthenticated)
			r.Get("/auth/me", handler.Me)
			r.Post("/auth/change-password", handler.ChangePassword)
		})
		router.Group(func(r chi.Router) {
			r.Use(handler.RequireAdmin)
			r.Get("/admin-only", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})

	do := func(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	login := func(username, password string) *http.Cookie {
		w := do(http.MethodPost, "/auth/login", `{"username":"`+username+`","password":"`+password+`"}`, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		for _, c := range w.Result().Cookies() {
			if c.Name == "session" {
				return c
			}
		}
		Fail("no session cookie set")
		return nil
	}

	It("sets a hardened session cookie on login", func() {
		w := do(http.MethodPost, "/auth/login", `{"username":"admin","password":"admin123"}`, nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp auth.LoginResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.User.Role).To(Equal(coreUser.RoleAdmin))

		cookies := w.Result().Cookies()
		Expect(cookies).To(HaveLen(1))
		Expect(cookies[0].HttpOnly).To(BeTrue())
		Expect(cookies[0].SameSite).To(Equal(http.SameSiteLaxMode))
		Expect(cookies[0].Path).To(Equal("/"))
		Expect(cookies[0].Value).To(Equal(resp.Token))
	})

	It("answers bad credentials with 401", func() {
		w := do(http.MethodPost, "/auth/login", `{"username":"admin","password":"bad"}`, nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Result().Cookies()).To(BeEmpty())
	})

	It("resolves the current user from the cookie or a bearer header", func() {
		cookie := login("user", "user123")

		w := do(http.MethodGet, "/auth/me", "", cookie)
		Expect(w.Code).To(Equal(http.StatusOK))
		var me coreUser.Principal
		Expect(json.NewDecoder(w.Body).Decode(&me)).To(Succeed())
		Expect(me.Username).To(Equal("user"))

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("gates admin routes", func() {
		Expect(do(http.MethodGet, "/admin-only", "", nil).Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodGet, "/admin-only", "", login("user", "user123")).Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodGet, "/admin-only", "", login("admin", "admin123")).Code).To(Equal(http.StatusOK))
	})

	It("clears the cookie and kills the session on logout", func() {
		cookie := login("admin", "admin123")

		w := do(http.MethodPost, "/auth/logout", "", cookie)
		Expect(w.Code).To(Equal(http.StatusNoContent))
		cleared := w.Result().Cookies()
		Expect(cleared).To(HaveLen(1))
		Expect(cleared[0].MaxAge).To(BeNumerically("<", 0))

		Expect(do(http.MethodGet, "/auth/me", "", cookie).Code).To(Equal(http.StatusUnauthorized))
	})

	It("changes the password for the signed-in account", func() {
		cookie := login("user", "user123")

		w := do(http.MethodPost, "/auth/change-password", `{"current_password":"user123","new_password":"short"}`, cookie)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = do(http.MethodPost, "/auth/change-password", `{"current_password":"user123","new_password":"longer-one"}`, cookie)
		Expect(w.Code).To(Equal(http.StatusNoContent))

		login("user", "longer-one")
	})
})
