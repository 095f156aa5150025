package api

// HR endpoints:
//
//	GET    /api/departments                    list
//	POST   /api/departments                    create (Admin, HRManager)
//	GET    /api/departments/{id}
//	PUT    /api/departments/{id}               update (Admin, HRManager)
//	DELETE /api/departments/{id}               delete (Admin)
//	GET    /api/departments/{id}/employees
//	GET    /api/positions
//	POST   /api/positions                      create (Admin, HRManager)
//	DELETE /api/positions/{id}                 delete (Admin)
//	GET    /api/employees
//	POST   /api/employees                      create (Admin, HRManager)
//	GET    /api/employees/me
//	GET    /api/employees/{id}
//	PUT    /api/employees/{id}                 update (Admin, HRManager)
//	DELETE /api/employees/{id}                 delete (Admin)
//	POST   /api/attendance/check-in
//	POST   /api/attendance/{id}/check-out     own row, or Admin/HRManager
//	GET    /api/attendance/employee/{id}
//	POST   /api/leaves
//	GET    /api/leaves/pending                 (Admin, HRManager, DepartmentManager)
//	GET    /api/leaves/employee/{id}
//	GET    /api/leaves/{id}
//	POST   /api/leaves/{id}/decision           (Admin, HRManager, DepartmentManager of the requester)

import (
	"net/http"

	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/hr"
)

// =============================================================================
// DEPARTMENTS AND POSITIONS
// =============================================================================

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.Directory.Departments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, depts)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req DepartmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	dept, err := h.Directory.CreateDepartment(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dept)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	dept, err := h.Directory.Department(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dept)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req DepartmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	dept, err := h.Directory.UpdateDepartment(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dept)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Directory.DeleteDepartment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DepartmentEmployees(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	emps, err := h.Directory.EmployeesInDepartment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emps)
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Directory.Positions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pos, err := h.Directory.CreatePosition(r.Context(), hr.PositionInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pos)
}

func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Directory.DeletePosition(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Directory.Employees(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emps)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	emp, err := h.Directory.CreateEmployee(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	emp, err := h.Directory.Employee(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) MyEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.callerEmployee(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req EmployeeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	emp, err := h.Directory.UpdateEmployee(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Directory.DeleteEmployee(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	employeeID, err := h.employeeOrSelf(r, req.EmployeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Attendance.CheckIn(r.Context(), employeeID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	open, err := h.Attendance.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.employeeOrSelf(r, open.EmployeeID); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.Attendance.CheckOut(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) AttendanceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.Attendance.History(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// =============================================================================
// LEAVE
// =============================================================================

func (h *Handler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequestBody
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	employeeID, err := h.employeeOrSelf(r, req.EmployeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lr, err := req.request(employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leave, err := h.Leaves.Request(r.Context(), lr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, leave)
}

// PendingLeaves lists what the caller, as a department manager, may decide.
func (h *Handler) PendingLeaves(w http.ResponseWriter, r *http.Request) {
	emp, err := h.callerEmployee(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leaves, err := h.Leaves.PendingApprovalsFor(r.Context(), emp.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

func (h *Handler) EmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	leaves, err := h.Leaves.ForEmployee(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	leave, err := h.Leaves.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leave)
}

func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
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
	approver, err := h.callerEmployee(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leave, err := h.Leaves.DecideAs(r.Context(), actor(r), id, approver.ID, req.Decision, req.Comments)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leave)
}

// employeeOrSelf returns id, or the caller's own employee id when id is zero.
// Acting for someone else needs an HR role.
func (h *Handler) employeeOrSelf(r *http.Request, id generic.ID) (generic.ID, error) {
	self, err := h.callerEmployee(r)
	if id == 0 {
		if err != nil {
			return 0, err
		}
		return self.ID, nil
	}
	if self != nil && self.ID == id {
		return id, nil
	}
	if a := actor(r); !a.Has(generic.RoleAdmin, generic.RoleHRManager) {
		return 0, generic.Forbidden("%s may not act for employee %d", a, id)
	}
	return id, nil
}
