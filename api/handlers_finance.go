package api

// Finance endpoints:
//
//	POST   /api/expenses
//	GET    /api/expenses                       all (Admin, FinanceManager)
//	GET    /api/expenses/mine
//	GET    /api/expenses/pending               (Admin, DepartmentManager, FinanceManager)
//	GET    /api/expenses/{id}
//	POST   /api/expenses/{id}/decision         (Admin, DepartmentManager, FinanceManager)
//	GET    /api/budgets?department_id=
//	POST   /api/budgets                        (Admin, FinanceManager)
//	GET    /api/budgets/{id}
//	PUT    /api/budgets/{id}                   (Admin, FinanceManager)
//	DELETE /api/budgets/{id}                   (Admin, FinanceManager)

import (
	"net/http"
)

// =============================================================================
// EXPENSES
// =============================================================================

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := h.Expenses.Create(r.Context(), actor(r), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	exps, err := h.Expenses.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exps)
}

func (h *Handler) MyExpenses(w http.ResponseWriter, r *http.Request) {
	exps, err := h.Expenses.Mine(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exps)
}

func (h *Handler) PendingExpenses(w http.ResponseWriter, r *http.Request) {
	exps, err := h.Expenses.PendingFor(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exps)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := h.Expenses.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *Handler) DecideExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req DecisionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := h.Expenses.Decide(r.Context(), actor(r), id, req.Decision, req.Comments)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// =============================================================================
// BUDGETS
// =============================================================================

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	deptID, err := queryID(r, "department_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	budgets, err := h.Budgets.List(r.Context(), deptID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Budgets.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Budgets.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req BudgetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Budgets.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Budgets.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
