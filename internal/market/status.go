package market

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal states accept no further transition.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

var vendorNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanVendorTransition reports whether a vendor may move an order from -> to.
func CanVendorTransition(from, to Status) bool {
	return vendorNext[from][to]
}

// CanBuyerCancel reports whether the buyer may cancel an order currently in from.
// Buyers may only ever set CANCELLED, and only before delivery.
func CanBuyerCancel(from Status) bool {
	return from == StatusPending || from == StatusConfirmed
}
