/*
handlers.go - HTTP handlers: wiring, auth and health

PURPOSE:
  Exposes the workflows over JSON. Handlers parse the request, call exactly
  one service method and write its result; every rule lives in the service.

ENDPOINTS:
  Auth (public):
    POST   /api/auth/register           create account, returns a token
    POST   /api/auth/login              returns a token (rate limited)
  Auth (bearer):
    GET    /api/auth/me                 the caller's account
    PUT    /api/users/{id}/roles        replace roles (Admin)

  HR, finance, inventory and procurement endpoints are listed in their own
  handlers_*.go files.

  Ops:
    GET    /healthz                     database ping
    GET    /metrics                     Prometheus exposition

ERROR HANDLING:
  writeError maps generic kinds: 404 NotFound, 409 Conflict, 400 Validation,
  403 Authorization, 500 otherwise. Missing or bad credentials are 401.

SEE ALSO:
  - dto.go: request bodies
  - server.go: routes and role guards
*/
package api

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/auth"
	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/metrics"
	"github.com/warp/erp-engine/procurement"
	"github.com/warp/erp-engine/store/rdb"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds every service the routes call.
type Handler struct {
	Store *rdb.Store
	Clock generic.Clock
	Log   zerolog.Logger

	Auth       *auth.Service
	Directory  *hr.Directory
	Attendance *hr.AttendanceTracker
	Leaves     *hr.LeaveWorkflow
	Expenses   *finance.ExpenseWorkflow
	Budgets    *finance.Budgets
	Catalog    *inventory.Catalog
	Ledger     *inventory.Ledger
	Suppliers  *procurement.Suppliers
	Orders     *procurement.Orders

	scenarioMu      sync.Mutex
	currentScenario string
}

// Deps are the settings NewHandler needs beyond the store.
type Deps struct {
	Tokens        *auth.Tokens
	Clock         generic.Clock
	Log           zerolog.Logger
	AllowNegative bool
}

// NewHandler builds every service on top of one store.
func NewHandler(store *rdb.Store, d Deps) *Handler {
	ledger := inventory.NewLedger(store, d.Clock, d.Log, d.AllowNegative)
	return &Handler{
		Store:      store,
		Clock:      d.Clock,
		Log:        d.Log,
		Auth:       auth.NewService(store, d.Tokens, d.Clock, d.Log),
		Directory:  hr.NewDirectory(store, d.Log),
		Attendance: hr.NewAttendanceTracker(store, d.Clock, d.Log),
		Leaves:     hr.NewLeaveWorkflow(store, d.Log),
		Expenses:   finance.NewExpenseWorkflow(store, d.Clock, d.Log),
		Budgets:    finance.NewBudgets(store, d.Log),
		Catalog:    inventory.NewCatalog(store, d.Clock, d.Log),
		Ledger:     ledger,
		Suppliers:  procurement.NewSuppliers(store, d.Log),
		Orders:     procurement.NewOrders(store, ledger, d.Clock, d.Log),
	}
}

// actor returns the authenticated caller. Routes behind authenticate always
// have one.
func actor(r *http.Request) generic.Actor {
	a, _ := generic.ActorFrom(r.Context())
	return a
}

// callerEmployee resolves the employee record linked to the caller.
func (h *Handler) callerEmployee(r *http.Request) (*hr.Employee, error) {
	a := actor(r)
	emp, err := h.Directory.EmployeeForUser(r.Context(), a.UserID)
	if generic.IsNotFound(err) {
		return nil, generic.Validation("user", "no employee record is linked to %s", a)
	}
	return emp, err
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register creates an account and logs it in.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.Auth.Issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, auth.Session{Token: token, User: user})
}

// Login verifies credentials. Any failure is a 401 with the same message.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if generic.KindOf(err) == generic.KindAuthorization {
		unauthorized(w, r, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.User(r.Context(), actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PUT /api/users/{id}/roles
func (h *Handler) AssignRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req RolesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Auth.AssignRoles(r.Context(), id, req.Roles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// =============================================================================
// OPS
// =============================================================================

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics refreshes the pool gauges before each scrape.
// GET /metrics
func (h *Handler) Metrics() http.Handler {
	inner := metrics.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ObserveDB(h.Store.Stats())
		inner.ServeHTTP(w, r)
	})
}
