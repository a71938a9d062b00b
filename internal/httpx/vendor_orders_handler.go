package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	kafkax "github.com/pasarhub/marketplace-orders/internal/kafka"
	"github.com/pasarhub/marketplace-orders/internal/market"
)

// VendorOrdersHandler serves the vendor-facing order endpoints. Vendor
// membership gates every route; for mutations the check re-runs inside the
// repo transaction.
type VendorOrdersHandler struct {
	Repo       *market.Repo
	Status     *kafkax.Producer // market.order.status
	Cancelled  *kafkax.Producer // market.order.cancelled
	Service    string
	Production bool
}

func (h *VendorOrdersHandler) Register(r *chi.Mux) {
	r.Get("/vendors/{vendorId}/orders", h.listOrders)
	r.Get("/vendors/{vendorId}/orders/stats", h.orderStats)
	r.Put("/vendors/{vendorId}/orders/{id}", h.updateOrder)
}

func (h *VendorOrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok || p.Email == "" {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	vendorID := chi.URLParam(r, "vendorId")
	orderID := chi.URLParam(r, "id")

	var req UpdateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid json", "invalid_body")
		return
	}
	upd, err := toOrderUpdate(req)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateVendorOrder(ctx, p.Email, vendorID, orderID, upd)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}

	if upd.Status != nil {
		if o.Status == market.StatusCancelled {
			publishEvent(h.Cancelled, h.Service, market.EventOrderCancelled, o.ID, market.OrderCancelledPayload{
				OrderID: o.ID, ListingID: o.ListingID, CancelledBy: "vendor",
			})
		} else {
			publishEvent(h.Status, h.Service, market.EventOrderStatusMoved, o.ID, market.OrderStatusMovedPayload{
				OrderID: o.ID, To: o.Status,
			})
		}
	}
	respondOK(w, http.StatusOK, "order updated successfully", o)
}

func (h *VendorOrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok || p.Email == "" {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	vendorID := chi.URLParam(r, "vendorId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if !h.requireAccess(ctx, w, vendorID, p.Email) {
		return
	}

	var status *market.Status
	if v := r.URL.Query().Get("status"); v != "" {
		s := market.Status(v)
		if !s.Valid() {
			respondDomainErr(w, market.ErrInvalidStatus, h.Production)
			return
		}
		status = &s
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	out, err := h.Repo.ListVendorOrders(ctx, vendorID, status, limit, offset)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}
	respondOK(w, http.StatusOK, "vendor orders fetched successfully", out)
}

func (h *VendorOrdersHandler) orderStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok || p.Email == "" {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	vendorID := chi.URLParam(r, "vendorId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if !h.requireAccess(ctx, w, vendorID, p.Email) {
		return
	}

	stats, err := h.Repo.VendorOrderStats(ctx, vendorID)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}
	respondOK(w, http.StatusOK, "vendor order stats fetched successfully", stats)
}

func (h *VendorOrdersHandler) requireAccess(ctx context.Context, w http.ResponseWriter, vendorID, email string) bool {
	ok, err := h.Repo.HasVendorAccess(ctx, vendorID, email)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return false
	}
	if !ok {
		respondDomainErr(w, market.ErrNoVendorAccess, h.Production)
		return false
	}
	return true
}
