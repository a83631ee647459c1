package contracts

import "time"

// Envelope adds cross-cutting headers all broker messages may carry.
type Envelope struct {
	Producer string    `json:"producer,omitempty"` // producer service name
	SentAt   time.Time `json:"sent_at,omitempty"`  // ISO-8601 send time (UTC)
}

// LocationUpdateMessage is mirrored by the tracking service onto
// ExchangeLocationFanout (fanout, no routing key) for any interested
// consumers outside this process.
type LocationUpdateMessage struct {
	DriverID  int64     `json:"driver_id"`
	RideID    string    `json:"ride_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}
