package market

const (
	TopicOrdersCreated  = "market.order.created"
	TopicOrderCancelled = "market.order.cancelled"
	TopicOrderStatus    = "market.order.status"
)

// Partition key = order id, so every event for one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
