package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/stock-management/internal/auth"
	"github.com/frahmantamala/stock-management/internal/catalog"
	"github.com/frahmantamala/stock-management/internal/ledger"
	"github.com/frahmantamala/stock-management/internal/report"
	"github.com/frahmantamala/stock-management/internal/transport/middleware"
	"github.com/frahmantamala/stock-management/internal/transport/swagger"
	"github.com/frahmantamala/stock-management/internal/user"
)

type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Catalog *catalog.Handler
	Ledger  *ledger.Handler
	Report  *report.Handler
}

type Options struct {
	AllowedOrigins []string
	OpenAPIPath    string
	// Validator is optional; when nil requests are not checked against the document.
	Validator *middleware.OpenAPIValidator
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	openAPIPath := opts.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/logout", h.Auth.Logout)
			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.RequireAuthenticated)
				pr.Get("/me", h.Auth.Me)
				pr.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		// signed-in staff
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.RequireAuthenticated)

			pr.Get("/areas", h.Catalog.ListAreas)
			pr.Get("/branches", h.Catalog.ListBranches)
			pr.Get("/items", h.Catalog.ListItems)

			pr.Get("/stock", h.Ledger.ListStock)
			pr.Post("/stock", h.Ledger.AddStock)
			pr.Post("/stock/issue", h.Ledger.IssueStock)
			pr.Get("/transactions", h.Ledger.ListTransactions)

			pr.Get("/reports", h.Report.GetReport)
			pr.Get("/reports/export", h.Report.ExportCSV)
		})

		// administrators
		r.Group(func(ar chi.Router) {
			ar.Use(h.Auth.RequireAdmin)

			ar.Post("/areas", h.Catalog.CreateArea)
			ar.Put("/areas/{id}", h.Catalog.UpdateArea)
			ar.Delete("/areas/{id}", h.Catalog.DeleteArea)
			ar.Post("/branches", h.Catalog.CreateBranch)
			ar.Put("/branches/{id}", h.Catalog.UpdateBranch)
			ar.Delete("/branches/{id}", h.Catalog.DeleteBranch)
			ar.Post("/items", h.Catalog.CreateItem)
			ar.Put("/items/{id}", h.Catalog.UpdateItem)
			ar.Delete("/items/{id}", h.Catalog.DeleteItem)

			ar.Put("/stock/{id}", h.Ledger.AdjustStock)
			ar.Delete("/stock/{id}", h.Ledger.DeleteStock)
			ar.Delete("/transactions/{id}", h.Ledger.DeleteTransaction)

			ar.Get("/users", h.User.ListUsers)
			ar.Post("/users", h.User.CreateUser)
			ar.Get("/users/{id}", h.User.GetUser)
			ar.Put("/users/{id}", h.User.UpdateUser)
			ar.Delete("/users/{id}", h.User.DeleteUser)
		})
	})
}
