package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/pasarhub/marketplace-orders/internal/kafka"
	"github.com/pasarhub/marketplace-orders/internal/market"
	"github.com/pasarhub/marketplace-orders/internal/redisx"
)

// OrdersHandler serves the buyer-facing order endpoints.
type OrdersHandler struct {
	Repo       *market.Repo
	Redis      *redis.Client
	Created    *kafkax.Producer // market.order.created
	Cancelled  *kafkax.Producer // market.order.cancelled
	Service    string
	Production bool
}

type CreateOrderReq struct {
	ListingID     string  `json:"listing_id"`
	Quantity      int     `json:"quantity"`
	Notes         *string `json:"notes"`
	TransactionID *string `json:"transaction_id"`
}

type UpdateOrderReq struct {
	Status        *string `json:"status"`
	Notes         *string `json:"notes"`
	TransactionID *string `json:"transaction_id"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders/me", h.createOrder)
	r.Get("/orders/me", h.listOrders)
	r.Get("/orders/me/stats", h.orderStats)
	r.Get("/orders/me/{id}", h.getOrder)
	r.Put("/orders/me/{id}", h.updateOrder)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid json", "invalid_body")
		return
	}
	if req.ListingID == "" {
		respondFail(w, http.StatusBadRequest, "'listing_id' is required", "invalid_listing_id")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Repo.CreateOrders(ctx, p.UserID, req.ListingID, req.Quantity, req.Notes, req.TransactionID)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}

	ids := make([]string, 0, len(created))
	for _, o := range created {
		ids = append(ids, o.ID)
		h.cacheOrder(ctx, o)
	}
	publishEvent(h.Created, h.Service, market.EventOrdersCreated, ids[0], market.OrdersCreatedPayload{
		OrderIDs:  ids,
		UserID:    p.UserID,
		ListingID: req.ListingID,
		Quantity:  req.Quantity,
	})

	respondOK(w, http.StatusCreated, "order created successfully", created)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
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

	o, err := h.Repo.UpdateMyOrder(ctx, p.UserID, orderID, upd)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}
	h.cacheOrder(ctx, o)

	if upd.Status != nil && o.Status == market.StatusCancelled {
		publishEvent(h.Cancelled, h.Service, market.EventOrderCancelled, o.ID, market.OrderCancelledPayload{
			OrderID: o.ID, ListingID: o.ListingID, CancelledBy: "buyer",
		})
	}
	respondOK(w, http.StatusOK, "order updated successfully", o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first; ownership re-checked against the cached row
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		var o market.Order
		if json.Unmarshal([]byte(s), &o) == nil && o.UserID == p.UserID {
			respondOK(w, http.StatusOK, "order fetched successfully", o)
			return
		}
	}

	o, err := h.Repo.GetMyOrder(ctx, p.UserID, orderID)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}
	h.cacheOrder(ctx, o)
	respondOK(w, http.StatusOK, "order fetched successfully", o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	out, err := h.Repo.ListMyOrders(ctx, p.UserID, limit, offset)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}
	respondOK(w, http.StatusOK, "user orders fetched successfully", out)
}

func (h *OrdersHandler) orderStats(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		respondFail(w, http.StatusUnauthorized, "no user information found", "unauthorized")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	stats, err := h.Repo.MyOrderStats(ctx, p.UserID)
	if err != nil {
		respondDomainErr(w, err, h.Production)
		return
	}
	respondOK(w, http.StatusOK, "order stats fetched successfully", stats)
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, o market.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(o), redisx.TTLStatusCache).Err()
}

func toOrderUpdate(req UpdateOrderReq) (market.OrderUpdate, error) {
	upd := market.OrderUpdate{Notes: req.Notes, TransactionID: req.TransactionID}
	if req.Status != nil {
		s := market.Status(*req.Status)
		if !s.Valid() {
			return market.OrderUpdate{}, market.ErrInvalidStatus
		}
		upd.Status = &s
	}
	return upd, nil
}

func publishEvent(p *kafkax.Producer, service, eventType, correlationID string, payload any) {
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(market.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
