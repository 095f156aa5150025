/*
Package finance implements the Expense Workflow and department budgets.

KEY CONCEPTS:
  - Expense: a spending request raised by an employee, decided once
  - ExpenseApproval: append-only record of each decision
  - Budget: informational spending envelope of a department

The expense status is a cache of its latest approval record. Both are written
in the same unit of work, so they never disagree.

Budgets never constrain expenses: an expense may reference a budget but no
amount check is made against it.
*/
package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "Pending"
	ExpenseApproved ExpenseStatus = "Approved"
	ExpenseRejected ExpenseStatus = "Rejected"
)

func ParseExpenseStatus(s string) (ExpenseStatus, error) {
	for _, st := range []ExpenseStatus{ExpensePending, ExpenseApproved, ExpenseRejected} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", generic.Validation("status", "unknown expense status %q", s)
}

// Expense has a requester and a date stamped by the server, never by the caller.
type Expense struct {
	ID           generic.ID      `gorm:"primaryKey" json:"id"`
	DepartmentID generic.ID      `gorm:"not null;index" json:"department_id"`
	RequesterID  generic.ID      `gorm:"not null;index" json:"requester_id"`
	Description  string          `gorm:"size:500;not null" json:"description"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	ExpenseDate  time.Time       `gorm:"not null" json:"expense_date"`
	Status       ExpenseStatus   `gorm:"size:20;not null;index" json:"status"`
	Category     string          `gorm:"size:100" json:"category"`
	BudgetID     *generic.ID     `gorm:"index" json:"budget_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Approvals []ExpenseApproval `gorm:"-" json:"approvals,omitempty"`
}

func (Expense) TableName() string { return "expenses" }

type ExpenseApproval struct {
	ID           generic.ID    `gorm:"primaryKey" json:"id"`
	ExpenseID    generic.ID    `gorm:"not null;index" json:"expense_id"`
	ApproverID   generic.ID    `gorm:"not null" json:"approver_id"`
	ApprovalDate time.Time     `gorm:"not null" json:"approval_date"`
	Status       ExpenseStatus `gorm:"size:20;not null" json:"status"`
	Comments     string        `gorm:"size:1000" json:"comments"`
}

func (ExpenseApproval) TableName() string { return "expense_approvals" }

type Budget struct {
	ID           generic.ID      `gorm:"primaryKey" json:"id"`
	DepartmentID generic.ID      `gorm:"not null;index" json:"department_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	StartDate    time.Time       `gorm:"not null" json:"start_date"`
	EndDate      time.Time       `gorm:"not null" json:"end_date"`
	Category     string          `gorm:"size:100" json:"category"`
	Description  string          `gorm:"size:500" json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Budget) TableName() string { return "budgets" }
