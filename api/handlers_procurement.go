package api

// Procurement endpoints:
//
//	GET    /api/suppliers?q=&active=
//	POST   /api/suppliers                         (Admin, ProcurementOfficer)
//	GET    /api/suppliers/{id}
//	PUT    /api/suppliers/{id}                    (Admin, ProcurementOfficer)
//	DELETE /api/suppliers/{id}                    soft delete (Admin)
//	GET    /api/purchase-orders?status=
//	POST   /api/purchase-orders                   (Admin, ProcurementOfficer)
//	GET    /api/purchase-orders/{id}
//	POST   /api/purchase-orders/{id}/items        (Admin, ProcurementOfficer)
//	POST   /api/purchase-orders/{id}/submit       (Admin, ProcurementOfficer)
//	POST   /api/purchase-orders/{id}/approve      (Admin, FinanceManager)
//	POST   /api/purchase-orders/{id}/receive      (Admin, InventoryManager)

import (
	"context"
	"net/http"

	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/procurement"
)

// =============================================================================
// SUPPLIERS
// =============================================================================

func (h *Handler) SearchSuppliers(w http.ResponseWriter, r *http.Request) {
	active, err := queryBool(r, "active")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sups, err := h.Suppliers.Search(r.Context(), procurement.SupplierFilter{Term: r.URL.Query().Get("q"), Active: active})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sups)
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sup, err := h.Suppliers.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sup)
}

func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sup, err := h.Suppliers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sup)
}

func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req SupplierRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sup, err := h.Suppliers.Update(r.Context(), id, req.input(), req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sup)
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Suppliers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status procurement.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		var err error
		if status, err = procurement.ParseOrderStatus(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}
	orders, err := h.Orders.List(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.Orders.Create(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.Orders.AddItem(r.Context(), id, procurement.ItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	h.orderStep(w, r, h.Orders.Submit)
}

func (h *Handler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	approver := actor(r).UserID
	h.orderStep(w, r, func(ctx context.Context, id generic.ID) (*procurement.PurchaseOrder, error) {
		return h.Orders.Approve(ctx, id, approver)
	})
}

func (h *Handler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	receiver := actor(r).UserID
	h.orderStep(w, r, func(ctx context.Context, id generic.ID) (*procurement.PurchaseOrder, error) {
		return h.Orders.Receive(ctx, id, receiver)
	})
}

func (h *Handler) orderStep(w http.ResponseWriter, r *http.Request, step func(context.Context, generic.ID) (*procurement.PurchaseOrder, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := step(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
