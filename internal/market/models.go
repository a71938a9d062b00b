package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryType string

const (
	InventoryStock    InventoryType = "STOCK"
	InventoryOnDemand InventoryType = "ON_DEMAND"
)

type Listing struct {
	ID            string
	VendorID      string
	Name          string
	Price         decimal.NullDecimal
	IsAvailable   bool
	Managed       bool
	InventoryType InventoryType
	AvailableQty  *int // nil = untracked/unlimited
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockTracked reports whether AvailableQty is authoritative for this listing.
func (l Listing) StockTracked() bool {
	return l.Managed && l.InventoryType == InventoryStock
}

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ListingID     string          `json:"listing_id"`
	Quantity      int             `json:"quantity"` // always 1, see CreateOrders
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        Status          `json:"status"`
	Notes         *string         `json:"notes,omitempty"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	StockTracked  bool            `json:"-"` // listing flags frozen at creation
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderStats is the per-status count summary for a buyer or a vendor.
type OrderStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Delivered int `json:"delivered"`
	Cancelled int `json:"cancelled"`
}
