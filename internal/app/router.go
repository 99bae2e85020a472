package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/comanda-pos/comanda/internal/auth"
	"github.com/comanda-pos/comanda/internal/bills"
	"github.com/comanda-pos/comanda/internal/cashregister"
	"github.com/comanda-pos/comanda/internal/catalog/categories"
	"github.com/comanda-pos/comanda/internal/catalog/products"
	"github.com/comanda-pos/comanda/internal/expenses"
	"github.com/comanda-pos/comanda/internal/observability"
	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/payments"
	"github.com/comanda-pos/comanda/internal/profiles"
	"github.com/comanda-pos/comanda/internal/reports"
	"github.com/comanda-pos/comanda/internal/shared"
	"github.com/comanda-pos/comanda/internal/stock"
	"github.com/comanda-pos/comanda/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics

	AuthHandler       *auth.Handler
	ProfilesHandler   *profiles.Handler
	OrdersHandler     *orders.Handler
	PaymentsHandler   *payments.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	ExpensesHandler   *expenses.Handler
	StockHandler      *stock.Handler
	RegisterHandler   *cashregister.Handler
	BillsHandler      *bills.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Route("/profiles", params.ProfilesHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		params.PaymentsHandler.MountRoutes(r)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/product-categories", params.CategoriesHandler.MountRoutes)
		r.Route("/expenses", params.ExpensesHandler.MountRoutes)
		r.Route("/stock", params.StockHandler.MountRoutes)
		r.Route("/cash-registers", params.RegisterHandler.MountRoutes)
		r.Route("/bills", params.BillsHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
