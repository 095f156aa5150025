/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Populates the database with a small, realistic data set by driving the
	same services the HTTP handlers use. Every scenario creates its own login
	accounts; they all share DemoPassword.

AVAILABLE SCENARIOS:

	procurement-cycle:  stock adjustment, then a purchase order from draft
	                    to received (50 on hand, +10 received, 60 at the end)
	hr-basics:          two departments, a manager, attendance, a pending
	                    leave request and a pending expense

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create accounts and grant roles
 3. Run the workflow steps as those accounts
 All of it runs in one transaction; a failed step leaves nothing behind.

USAGE:

	POST /api/scenarios/load   {"scenario_id": "procurement-cycle"}
	server seed procurement-cycle

NOTE:

	Scenarios reset the database. Only use in development/demo environments.
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/procurement"
)

// DemoPassword is the password of every account a scenario creates.
const DemoPassword = "demo-password"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "procurement-cycle",
		Name:        "Procurement Cycle",
		Description: "Manual stock adjustment, then a purchase order submitted, approved and received into inventory",
		Category:    "procurement",
	},
	{
		ID:          "hr-basics",
		Name:        "HR Basics",
		Description: "Departments, employees, a check-in, a pending leave request and a pending expense",
		Category:    "hr",
	},
}

// Scenarios lists the loadable scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenarioHTTP resets the database and loads the requested scenario.
func (h *Handler) LoadScenarioHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.LoadScenario(r.Context(), req.ScenarioID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// LoadScenario wipes every table and seeds the named scenario.
func (h *Handler) LoadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "procurement-cycle":
		load = h.loadProcurementCycle
	case "hr-basics":
		load = h.loadHRBasics
	default:
		return generic.Validation("scenario_id", "unknown scenario %q", id)
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	err := h.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := h.Store.Reset(ctx); err != nil {
			return err
		}
		return load(ctx)
	})
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", id, err)
	}
	h.currentScenario = id
	h.Log.Info().Str("scenario", id).Msg("scenario loaded")
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadProcurementCycle(ctx context.Context) error {
	admin, err := h.demoUser(ctx, "admin", generic.RoleAdmin)
	if err != nil {
		return err
	}
	buyer, err := h.demoUser(ctx, "buyer", generic.RoleProcurementOfficer)
	if err != nil {
		return err
	}
	controller, err := h.demoUser(ctx, "controller", generic.RoleFinanceManager)
	if err != nil {
		return err
	}
	storekeeper, err := h.demoUser(ctx, "storekeeper", generic.RoleInventoryManager)
	if err != nil {
		return err
	}

	product, err := h.Catalog.Create(ctx, inventory.ProductInput{
		Name:          "Widget",
		SKU:           "WID-001",
		Category:      "Hardware",
		UnitCost:      decimal.RequireFromString("5.00"),
		UnitOfMeasure: "pcs",
	}, 0, 20)
	if err != nil {
		return err
	}
	if _, err := h.Ledger.Adjust(ctx, inventory.AdjustInput{
		ProductID: product.ID,
		Delta:     50,
		Reason:    "Opening count",
		ActorID:   admin.UserID,
	}); err != nil {
		return err
	}

	supplier, err := h.Suppliers.Create(ctx, procurement.SupplierInput{
		Name:          "Acme Supplies",
		ContactPerson: "Wile E. Coyote",
		Email:         "orders@acme.example",
	})
	if err != nil {
		return err
	}

	order, err := h.Orders.Create(ctx, buyer, procurement.OrderInput{SupplierID: supplier.ID, Notes: "Restock widgets"})
	if err != nil {
		return err
	}
	if _, err := h.Orders.AddItem(ctx, order.ID, procurement.ItemInput{
		ProductID: product.ID,
		Quantity:  10,
		UnitPrice: decimal.RequireFromString("5.00"),
	}); err != nil {
		return err
	}
	if _, err := h.Orders.Submit(ctx, order.ID); err != nil {
		return err
	}
	if _, err := h.Orders.Approve(ctx, order.ID, controller.UserID); err != nil {
		return err
	}
	_, err = h.Orders.Receive(ctx, order.ID, storekeeper.UserID)
	return err
}

func (h *Handler) loadHRBasics(ctx context.Context) error {
	if _, err := h.demoUser(ctx, "admin", generic.RoleAdmin); err != nil {
		return err
	}
	if _, err := h.demoUser(ctx, "hr", generic.RoleHRManager); err != nil {
		return err
	}
	managerUser, err := h.demoUser(ctx, "manager", generic.RoleDepartmentManager)
	if err != nil {
		return err
	}
	staffUser, err := h.demoUser(ctx, "alice", generic.RoleEmployee)
	if err != nil {
		return err
	}

	eng, err := h.Directory.CreateDepartment(ctx, hr.DepartmentInput{Name: "Engineering", Code: "ENG"})
	if err != nil {
		return err
	}
	if _, err := h.Directory.CreateDepartment(ctx, hr.DepartmentInput{Name: "Operations", Code: "OPS"}); err != nil {
		return err
	}
	lead, err := h.Directory.CreatePosition(ctx, hr.PositionInput{Title: "Engineering Manager", DepartmentID: eng.ID})
	if err != nil {
		return err
	}
	dev, err := h.Directory.CreatePosition(ctx, hr.PositionInput{Title: "Software Engineer", DepartmentID: eng.ID})
	if err != nil {
		return err
	}

	hired := generic.StartOfDay(h.Clock.Now()).AddDate(-1, 0, 0)
	manager, err := h.Directory.CreateEmployee(ctx, hr.EmployeeInput{
		Code: "E001", FirstName: "Maria", LastName: "Lopez", HireDate: hired,
		DepartmentID: eng.ID, PositionID: lead.ID,
		Salary: decimal.NewFromInt(95000), UserID: &managerUser.UserID,
	})
	if err != nil {
		return err
	}
	staff, err := h.Directory.CreateEmployee(ctx, hr.EmployeeInput{
		Code: "E002", FirstName: "Alice", LastName: "Ng", HireDate: hired,
		DepartmentID: eng.ID, PositionID: dev.ID,
		Salary: decimal.NewFromInt(72000), UserID: &staffUser.UserID,
	})
	if err != nil {
		return err
	}
	if _, err := h.Directory.UpdateDepartment(ctx, eng.ID, hr.DepartmentInput{
		Name: eng.Name, Code: eng.Code, ManagerID: &manager.ID,
	}); err != nil {
		return err
	}

	if _, err := h.Attendance.CheckIn(ctx, staff.ID, "on site"); err != nil {
		return err
	}

	start := generic.StartOfDay(h.Clock.Now()).AddDate(0, 0, 14)
	if _, err := h.Leaves.Request(ctx, hr.LeaveRequest{
		EmployeeID: staff.ID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 4),
		Type:       hr.LeaveAnnual,
		Reason:     "Family trip",
	}); err != nil {
		return err
	}

	_, err = h.Expenses.Create(ctx, staffUser, finance.ExpenseInput{
		Description: "Conference ticket",
		Amount:      decimal.RequireFromString("349.00"),
		Category:    "Training",
	})
	return err
}

// demoUser registers an account with DemoPassword and grants it one role.
func (h *Handler) demoUser(ctx context.Context, username string, role generic.Role) (generic.Actor, error) {
	user, err := h.Auth.Register(ctx, username, username+"@erp.example", DemoPassword)
	if err != nil {
		return generic.Actor{}, err
	}
	if role != generic.RoleEmployee {
		if user, err = h.Auth.AssignRoles(ctx, user.ID, []generic.Role{role}); err != nil {
			return generic.Actor{}, err
		}
	}
	return user.Actor(), nil
}
