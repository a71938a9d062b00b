package market

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrListingUnavailable = errors.New("listing is not available for order")
	ErrNoPrice            = errors.New("listing does not have a price set")
	ErrNoVendorAccess     = errors.New("no access to this vendor")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrBuyerOnlyCancel    = errors.New("buyers may only cancel orders")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
)

// InsufficientStockError carries the last known quantity for the caller's UX.
// The value is best-effort: it is re-read after the guard fails and may be
// stale by the time it is reported. Only the decrement itself is race-free.
type InsufficientStockError struct {
	ListingID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for listing %s: requested %d, available %d",
		e.ListingID, e.Requested, e.Available)
}

// InvalidTransitionError rejects a status move not present in the transition table.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// ReasonCode maps a domain error to the stable machine-readable code surfaced
// in the response envelope.
func ReasonCode(err error) string {
	var ise *InsufficientStockError
	var ite *InvalidTransitionError
	switch {
	case errors.Is(err, ErrListingNotFound):
		return "listing_not_found"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrListingUnavailable):
		return "listing_unavailable"
	case errors.Is(err, ErrNoPrice):
		return "no_price"
	case errors.Is(err, ErrNoVendorAccess):
		return "no_vendor_access"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrBuyerOnlyCancel):
		return "invalid_status_change"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.As(err, &ise):
		return "insufficient_quantity"
	case errors.As(err, &ite):
		return "invalid_status_transition"
	}
	return "internal_error"
}
