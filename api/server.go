/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, the middleware chain and every route. This is
  the wiring layer; role requirements live here, next to the paths they
  guard, and nowhere in the handlers.

ROUTE GROUPS:
  /healthz, /metrics        ops, public
  /api/auth/*               register and login, public (login throttled)
  /api/*                    everything else, bearer token required
  /api/scenarios/*          demo data (Admin; only when enabled)

SEE ALSO:
  - middleware.go: request pipeline
  - handlers*.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/erp-engine/generic"
)

// Options tune the router without touching the handlers.
type Options struct {
	AllowedOrigins []string
	LoginRate      float64
	LoginBurst     int
	Scenarios      bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog(h.Log))
	r.Use(instrument)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", h.Metrics())

	throttle := newLimiter(opts.LoginRate, opts.LoginBurst)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(throttle.middleware).Post("/login", h.Login)
			r.With(authenticate(h.Auth)).Get("/me", h.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate(h.Auth))

			admin := requireRoles(generic.RoleAdmin)
			hrWrite := requireRoles(generic.RoleAdmin, generic.RoleHRManager)
			leaveApprover := requireRoles(generic.RoleAdmin, generic.RoleHRManager, generic.RoleDepartmentManager)
			expenseApprover := requireRoles(generic.RoleAdmin, generic.RoleDepartmentManager, generic.RoleFinanceManager)
			finance := requireRoles(generic.RoleAdmin, generic.RoleFinanceManager)
			stock := requireRoles(generic.RoleAdmin, generic.RoleInventoryManager)
			buyer := requireRoles(generic.RoleAdmin, generic.RoleProcurementOfficer)

			r.With(admin).Put("/users/{id}/roles", h.AssignRoles)

			// HR
			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.ListDepartments)
				r.With(hrWrite).Post("/", h.CreateDepartment)
				r.Get("/{id}", h.GetDepartment)
				r.With(hrWrite).Put("/{id}", h.UpdateDepartment)
				r.With(admin).Delete("/{id}", h.DeleteDepartment)
				r.Get("/{id}/employees", h.DepartmentEmployees)
			})
			r.Route("/positions", func(r chi.Router) {
				r.Get("/", h.ListPositions)
				r.With(hrWrite).Post("/", h.CreatePosition)
				r.With(admin).Delete("/{id}", h.DeletePosition)
			})
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.With(hrWrite).Post("/", h.CreateEmployee)
				r.Get("/me", h.MyEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.With(hrWrite).Put("/{id}", h.UpdateEmployee)
				r.With(admin).Delete("/{id}", h.DeleteEmployee)
			})
			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.CheckIn)
				r.Post("/{id}/check-out", h.CheckOut)
				r.Get("/employee/{id}", h.AttendanceHistory)
			})
			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.RequestLeave)
				r.With(leaveApprover).Get("/pending", h.PendingLeaves)
				r.Get("/employee/{id}", h.EmployeeLeaves)
				r.Get("/{id}", h.GetLeave)
				r.With(leaveApprover).Post("/{id}/decision", h.DecideLeave)
			})

			// Finance
			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", h.CreateExpense)
				r.With(finance).Get("/", h.ListExpenses)
				r.Get("/mine", h.MyExpenses)
				r.With(expenseApprover).Get("/pending", h.PendingExpenses)
				r.Get("/{id}", h.GetExpense)
				r.With(expenseApprover).Post("/{id}/decision", h.DecideExpense)
			})
			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", h.ListBudgets)
				r.With(finance).Post("/", h.CreateBudget)
				r.Get("/{id}", h.GetBudget)
				r.With(finance).Put("/{id}", h.UpdateBudget)
				r.With(finance).Delete("/{id}", h.DeleteBudget)
			})

			// Inventory
			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.SearchProducts)
				r.With(stock).Post("/", h.CreateProduct)
				r.Get("/{id}", h.GetProduct)
				r.With(stock).Put("/{id}", h.UpdateProduct)
				r.With(admin).Delete("/{id}", h.DeleteProduct)
			})
			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", h.StockLevels)
				r.Get("/low-stock", h.LowStock)
				r.With(stock).Post("/adjust", h.AdjustStock)
				r.Get("/transactions", h.StockTransactions)
				r.Get("/{productID}/verify", h.VerifyStock)
			})

			// Procurement
			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", h.SearchSuppliers)
				r.With(buyer).Post("/", h.CreateSupplier)
				r.Get("/{id}", h.GetSupplier)
				r.With(buyer).Put("/{id}", h.UpdateSupplier)
				r.With(admin).Delete("/{id}", h.DeleteSupplier)
			})
			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.With(buyer).Post("/", h.CreateOrder)
				r.Get("/{id}", h.GetOrder)
				r.With(buyer).Post("/{id}/items", h.AddOrderItem)
				r.With(buyer).Post("/{id}/submit", h.SubmitOrder)
				r.With(finance).Post("/{id}/approve", h.ApproveOrder)
				r.With(stock).Post("/{id}/receive", h.ReceiveOrder)
			})

			if opts.Scenarios {
				r.Route("/scenarios", func(r chi.Router) {
					r.Use(admin)
					r.Get("/", h.ListScenarios)
					r.Get("/current", h.GetCurrentScenario)
					r.Post("/load", h.LoadScenarioHTTP)
				})
			}
		})
	})

	return r
}
