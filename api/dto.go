/*
dto.go - Request bodies accepted by the API

NAMING:
  *Request: JSON body of a POST or PUT
  Responses are the domain types themselves; their json tags are the contract.

DATES:
  Calendar dates travel as "YYYY-MM-DD" strings and are parsed with
  generic.ParseDate. An unparsable date is a Validation error naming the field.

MONEY:
  decimal.Decimal accepts both JSON numbers and strings ("12.50").
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/finance"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/procurement"
)

// =============================================================================
// AUTH
// =============================================================================

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RolesRequest struct {
	Roles []generic.Role `json:"roles"`
}

// =============================================================================
// HR
// =============================================================================

type DepartmentRequest struct {
	Name      string      `json:"name"`
	Code      string      `json:"code"`
	ManagerID *generic.ID `json:"manager_id"`
}

func (d DepartmentRequest) input() hr.DepartmentInput {
	return hr.DepartmentInput{Name: d.Name, Code: d.Code, ManagerID: d.ManagerID}
}

type PositionRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DepartmentID generic.ID `json:"department_id"`
}

type EmployeeRequest struct {
	Code             string          `json:"employee_id"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	HireDate         string          `json:"hire_date"`
	DepartmentID     generic.ID      `json:"department_id"`
	PositionID       generic.ID      `json:"position_id"`
	Salary           decimal.Decimal `json:"salary"`
	ContactNumber    string          `json:"contact_number"`
	EmergencyContact string          `json:"emergency_contact"`
	UserID           *generic.ID     `json:"user_id"`
}

func (e EmployeeRequest) input() (hr.EmployeeInput, error) {
	hire, err := parseDate("hire_date", e.HireDate)
	if err != nil {
		return hr.EmployeeInput{}, err
	}
	return hr.EmployeeInput{
		Code:             e.Code,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		HireDate:         hire,
		DepartmentID:     e.DepartmentID,
		PositionID:       e.PositionID,
		Salary:           e.Salary,
		ContactNumber:    e.ContactNumber,
		EmergencyContact: e.EmergencyContact,
		UserID:           e.UserID,
	}, nil
}

// CheckInRequest checks in EmployeeID, or the caller's own employee record
// when it is zero.
type CheckInRequest struct {
	EmployeeID generic.ID `json:"employee_id"`
	Notes      string     `json:"notes"`
}

type LeaveRequestBody struct {
	EmployeeID generic.ID `json:"employee_id"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	LeaveType  string     `json:"leave_type"`
	Reason     string     `json:"reason"`
}

func (l LeaveRequestBody) request(employeeID generic.ID) (hr.LeaveRequest, error) {
	start, err := parseDate("start_date", l.StartDate)
	if err != nil {
		return hr.LeaveRequest{}, err
	}
	end, err := parseDate("end_date", l.EndDate)
	if err != nil {
		return hr.LeaveRequest{}, err
	}
	return hr.LeaveRequest{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		Type:       hr.LeaveType(l.LeaveType),
		Reason:     l.Reason,
	}, nil
}

// DecisionRequest is the body of every approve/reject endpoint.
type DecisionRequest struct {
	Decision generic.Decision `json:"status"`
	Comments string           `json:"comments"`
}

// =============================================================================
// FINANCE
// =============================================================================

type ExpenseRequest struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	DepartmentID generic.ID      `json:"department_id"`
	BudgetID     *generic.ID     `json:"budget_id"`
}

func (e ExpenseRequest) input() finance.ExpenseInput {
	return finance.ExpenseInput{
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     e.Category,
		DepartmentID: e.DepartmentID,
		BudgetID:     e.BudgetID,
	}
}

type BudgetRequest struct {
	DepartmentID generic.ID      `json:"department_id"`
	Amount       decimal.Decimal `json:"amount"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
}

func (b BudgetRequest) input() (finance.BudgetInput, error) {
	start, err := parseDate("start_date", b.StartDate)
	if err != nil {
		return finance.BudgetInput{}, err
	}
	end, err := parseDate("end_date", b.EndDate)
	if err != nil {
		return finance.BudgetInput{}, err
	}
	return finance.BudgetInput{
		DepartmentID: b.DepartmentID,
		Amount:       b.Amount,
		StartDate:    start,
		EndDate:      end,
		Category:     b.Category,
		Description:  b.Description,
	}, nil
}

// =============================================================================
// INVENTORY
// =============================================================================

type ProductRequest struct {
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	Barcode           string          `json:"barcode"`
	IsActive          *bool           `json:"is_active"`
	InitialQuantity   int64           `json:"initial_quantity"`
	MinimumStockLevel int64           `json:"minimum_stock_level"`
}

func (p ProductRequest) input() inventory.ProductInput {
	return inventory.ProductInput{
		Name:          p.Name,
		SKU:           p.SKU,
		Description:   p.Description,
		Category:      p.Category,
		UnitCost:      p.UnitCost,
		UnitOfMeasure: p.UnitOfMeasure,
		Barcode:       p.Barcode,
	}
}

type AdjustRequest struct {
	ProductID       generic.ID `json:"product_id"`
	Quantity        int64      `json:"quantity"`
	Reason          string     `json:"reason"`
	TransactionType string     `json:"transaction_type"`
}

// =============================================================================
// PROCUREMENT
// =============================================================================

type SupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	IsActive      *bool  `json:"is_active"`
}

func (s SupplierRequest) input() procurement.SupplierInput {
	return procurement.SupplierInput{
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
	}
}

type OrderRequest struct {
	SupplierID           generic.ID `json:"supplier_id"`
	ExpectedDeliveryDate string     `json:"expected_delivery_date"`
	Notes                string     `json:"notes"`
}

func (o OrderRequest) input() (procurement.OrderInput, error) {
	in := procurement.OrderInput{SupplierID: o.SupplierID, Notes: o.Notes}
	if o.ExpectedDeliveryDate != "" {
		d, err := parseDate("expected_delivery_date", o.ExpectedDeliveryDate)
		if err != nil {
			return in, err
		}
		in.ExpectedDeliveryDate = &d
	}
	return in, nil
}

type ItemRequest struct {
	ProductID generic.ID      `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// DECODING HELPERS
// =============================================================================

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return generic.Validation("body", "invalid request body: %v", err)
	}
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, generic.Validation(field, "%s is required", field)
	}
	t, err := generic.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, generic.Validation(field, "invalid %s %q, use YYYY-MM-DD", field, s)
	}
	return t, nil
}

func pathID(r *http.Request, name string) (generic.ID, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, generic.Validation(name, "invalid id %q", raw)
	}
	return id, nil
}

func queryID(r *http.Request, name string) (generic.ID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, generic.Validation(name, "invalid id %q", raw)
	}
	return id, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, generic.Validation(name, "invalid boolean %q", raw)
	}
	return &b, nil
}
