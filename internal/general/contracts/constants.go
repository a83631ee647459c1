package contracts

// Exchanges
const (
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueLocationUpdates = "location_updates"
)
