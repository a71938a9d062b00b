package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrdersCreated    = "OrdersCreated"
	EventOrderCancelled   = "OrderCancelled"
	EventOrderStatusMoved = "OrderStatusMoved"
)

// Envelope is the wire shape shared by every notification event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id (first one for a batch)
	Payload       json.RawMessage `json:"payload"`
}

type OrdersCreatedPayload struct {
	OrderIDs  []string `json:"order_ids"`
	UserID    string   `json:"user_id"`
	ListingID string   `json:"listing_id"`
	Quantity  int      `json:"quantity"`
}

type OrderCancelledPayload struct {
	OrderID     string `json:"order_id"`
	ListingID   string `json:"listing_id"`
	CancelledBy string `json:"cancelled_by"` // "buyer" | "vendor"
}

type OrderStatusMovedPayload struct {
	OrderID string `json:"order_id"`
	To      Status `json:"to"`
}
