package redisx

import "time"

const (
	// Cache of a single order's status: order_status:{order_id}
	KeyOrderStatus = "order_status:%s"

	// Dedup for notification processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
