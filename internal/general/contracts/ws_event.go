package contracts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Inbound event kinds accepted on the tracking WebSocket. The tag lives in
// the "event" field of every inbound object.
const (
	EventDriverIdentify = "driver_identify"
	EventDriverLocation = "driver_location"
	EventSubscribeRide  = "subscribe_ride"
)

// EventEnvelope carries only the tag; the full object is re-decoded into
// the kind-specific struct once the tag is known.
type EventEnvelope struct {
	Event string `json:"event"`
}

// DriverIdentifyEvent binds the connection to a driver profile.
type DriverIdentifyEvent struct {
	DriverID int64 `json:"driver_id"`
}

// DriverLocationEvent reports the driver's current position. Latitude and
// longitude are accepted as JSON numbers or numeric strings; timestamp is
// an optional ISO-8601 string.
type DriverLocationEvent struct {
	Latitude  *FlexFloat `json:"latitude"`
	Longitude *FlexFloat `json:"longitude"`
	Timestamp string     `json:"timestamp"`
}

// SubscribeRideEvent joins the connection to a ride's broadcast group.
type SubscribeRideEvent struct {
	RideID string `json:"ride_id"`
}

// FlexFloat decodes from either a JSON number or a numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a numeric value: %q", s)
	}
	*f = FlexFloat(v)
	return nil
}

// ----- outbound shapes -----

// WSError is the recoverable error payload; the connection stays open.
type WSError struct {
	Error string `json:"error"`
}

// DriverRegisteredAck confirms a driver_identify event.
type DriverRegisteredAck struct {
	Status   string `json:"status"` // "driver_registered"
	DriverID int64  `json:"driver_id"`
}

// LocationUpdatedAck confirms a driver_location event.
type LocationUpdatedAck struct {
	Status string `json:"status"` // "location_updated"
}

// SubscribedAck confirms a subscribe_ride event.
type SubscribedAck struct {
	Status string `json:"status"` // "subscribed"
	RideID string `json:"ride_id"`
}

// LocationBroadcast is the payload fanned out to every subscriber of a
// ride's group and forwarded verbatim to their clients.
type LocationBroadcast struct {
	DriverID  int64   `json:"driver_id"`
	RideID    string  `json:"ride_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}
