package api

// Inventory endpoints:
//
//	GET    /api/products?q=&category=&active=
//	POST   /api/products                        (Admin, InventoryManager)
//	GET    /api/products/{id}
//	PUT    /api/products/{id}                   (Admin, InventoryManager)
//	DELETE /api/products/{id}                   soft delete (Admin)
//	GET    /api/inventory                       stock levels
//	GET    /api/inventory/low-stock
//	POST   /api/inventory/adjust                (Admin, InventoryManager)
//	GET    /api/inventory/transactions?product_id=&type=
//	GET    /api/inventory/{productID}/verify    ledger reconciliation

import (
	"net/http"

	"github.com/warp/erp-engine/inventory"
)

// =============================================================================
// PRODUCTS
// =============================================================================

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	active, err := queryBool(r, "active")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	products, err := h.Catalog.Search(r.Context(), inventory.ProductFilter{
		Term:     q.Get("q"),
		Category: q.Get("category"),
		Active:   active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Catalog.Create(r.Context(), req.input(), req.InitialQuantity, req.MinimumStockLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ProductRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Catalog.Update(r.Context(), id, req.input(), req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STOCK AND LEDGER
// =============================================================================

func (h *Handler) StockLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Ledger.Levels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	low, err := h.Ledger.LowStock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, low)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	stock, err := h.Ledger.Adjust(r.Context(), inventory.AdjustInput{
		ProductID: req.ProductID,
		Delta:     req.Quantity,
		Reason:    req.Reason,
		Type:      inventory.TxType(req.TransactionType),
		ActorID:   actor(r).UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

func (h *Handler) StockTransactions(w http.ResponseWriter, r *http.Request) {
	productID, err := queryID(r, "product_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := h.Ledger.Transactions(r.Context(), inventory.TxFilter{
		ProductID: productID,
		Type:      inventory.TxType(r.URL.Query().Get("type")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) VerifyStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.Ledger.Verify(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
