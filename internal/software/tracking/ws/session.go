package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ride-track/internal/domain/driver"
	"ride-track/internal/domain/ride"
	"ride-track/internal/general/contracts"
)

const producerName = "tracking-service"

// session is the per-connection state machine: a verified user, at most
// one bound driver and at most one subscribed ride group. All event
// handling runs on the connection's read loop; only Deliver arrives from
// bus goroutines, so writes go through writeMu.
type session struct {
	ws      *WebSocket
	conn    *websocket.Conn
	writeMu sync.Mutex

	userID    int64
	driver    *driver.Driver
	rideGroup string
}

func newSession(ws *WebSocket, conn *websocket.Conn) *session {
	return &session{ws: ws, conn: conn}
}

// Deliver forwards a bus payload verbatim to the client.
func (s *session) Deliver(payload []byte) {
	if err := s.writeMessage(payload); err != nil {
		s.ws.logger.Error(context.Background(), "ws_deliver_failed", "Failed to forward broadcast", err, map[string]any{
			"user_id": s.userID,
		})
	}
}

// dispatch routes one inbound message by its event tag.
func (s *session) dispatch(ctx context.Context, payload []byte) {
	var env contracts.EventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		s.sendError("Unknown event type.")
		return
	}

	switch env.Event {
	case contracts.EventDriverIdentify:
		s.handleDriverIdentify(ctx, payload)
	case contracts.EventDriverLocation:
		s.handleDriverLocation(ctx, payload)
	case contracts.EventSubscribeRide:
		s.handleSubscribeRide(ctx, payload)
	default:
		s.sendError("Unknown event type.")
	}
}

// handleDriverIdentify binds the connection to one of the user's driver
// profiles. An absent driver and a driver owned by somebody else get the
// same answer.
func (s *session) handleDriverIdentify(ctx context.Context, payload []byte) {
	var ev contracts.DriverIdentifyEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.DriverID == 0 {
		s.sendError("driver_id is required.")
		return
	}

	d, err := s.ws.store.GetDriver(ctx, ev.DriverID)
	if err != nil {
		if !errors.Is(err, driver.ErrNotFound) {
			s.ws.logger.Error(ctx, "driver_lookup_failed", "Failed to load driver", err, map[string]any{
				"driver_id": ev.DriverID,
			})
			s.sendError("Internal server error.")
			return
		}
		s.sendError("Driver not found.")
		return
	}
	if d.UserID != s.userID {
		s.sendError("Driver not found.")
		return
	}

	s.driver = d
	s.sendJSON(contracts.DriverRegisteredAck{Status: "driver_registered", DriverID: d.ID})
}

// handleDriverLocation stores the position, fans it out to the driver's
// latest ride group and mirrors it to the broker.
func (s *session) handleDriverLocation(ctx context.Context, payload []byte) {
	if s.driver == nil {
		s.sendError("Driver not identified.")
		return
	}

	var ev contracts.DriverLocationEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Latitude == nil || ev.Longitude == nil {
		s.sendError("Invalid latitude/longitude.")
		return
	}

	lat := float64(*ev.Latitude)
	lng := float64(*ev.Longitude)
	if err := driver.ValidateCoordinates(lat, lng); err != nil {
		s.sendError("Invalid latitude/longitude.")
		return
	}

	now := time.Now().UTC()
	tsStr := strings.TrimSpace(ev.Timestamp)
	if tsStr == "" {
		tsStr = now.Format(time.RFC3339)
	}
	ts, err := time.Parse(time.RFC3339, tsStr)
	if err != nil {
		ts = now
	}

	if err := s.ws.store.UpsertLocation(ctx, s.driver.ID, lat, lng, ts); err != nil {
		s.ws.logger.Error(ctx, "location_upsert_failed", "Failed to store location", err, map[string]any{
			"driver_id": s.driver.ID,
		})
		s.sendError("Internal server error.")
		return
	}

	s.broadcastLocation(ctx, lat, lng, tsStr, ts)

	s.sendJSON(contracts.LocationUpdatedAck{Status: "location_updated"})
}

// broadcastLocation publishes the update to the group of the driver's
// latest ride, if there is one. Fan-out problems never fail the event.
func (s *session) broadcastLocation(ctx context.Context, lat, lng float64, tsStr string, ts time.Time) {
	r, err := s.ws.store.LatestRideForDriver(ctx, s.driver.ID)
	if err != nil {
		if !errors.Is(err, ride.ErrNotFound) {
			s.ws.logger.Error(ctx, "ride_lookup_failed", "Failed to find ride for driver", err, map[string]any{
				"driver_id": s.driver.ID,
			})
		}
		return
	}

	buf, err := json.Marshal(contracts.LocationBroadcast{
		DriverID:  s.driver.ID,
		RideID:    r.RideID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: tsStr,
	})
	if err != nil {
		s.ws.logger.Error(ctx, "broadcast_encode_failed", "Failed to encode broadcast", err, nil)
		return
	}

	if err := s.ws.bus.Publish(ctx, rideGroupName(r.RideID), buf); err != nil {
		s.ws.logger.Error(ctx, "broadcast_publish_failed", "Failed to publish to ride group", err, map[string]any{
			"ride_id": r.RideID,
		})
	}

	if s.ws.pub == nil {
		return
	}
	body, err := json.Marshal(contracts.LocationUpdateMessage{
		DriverID:  s.driver.ID,
		RideID:    r.RideID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts,
		Envelope: contracts.Envelope{
			Producer: producerName,
			SentAt:   time.Now().UTC(),
		},
	})
	if err != nil {
		return
	}
	if err := s.ws.pub.Publish(contracts.ExchangeLocationFanout, "", body); err != nil {
		s.ws.logger.Error(ctx, "broker_mirror_failed", "Failed to mirror location to broker", err, map[string]any{
			"ride_id": r.RideID,
		})
	}
}

// handleSubscribeRide moves the connection to the ride's broadcast group.
func (s *session) handleSubscribeRide(ctx context.Context, payload []byte) {
	var ev contracts.SubscribeRideEvent
	if err := json.Unmarshal(payload, &ev); err != nil || strings.TrimSpace(ev.RideID) == "" {
		s.sendError("ride_id is required.")
		return
	}
	rideKey := strings.TrimSpace(ev.RideID)

	exists, err := s.ws.store.RideExists(ctx, rideKey)
	if err != nil {
		s.ws.logger.Error(ctx, "ride_lookup_failed", "Failed to check ride", err, map[string]any{
			"ride_id": rideKey,
		})
		s.sendError("Internal server error.")
		return
	}
	if !exists {
		s.sendError("Ride not found.")
		return
	}

	if s.rideGroup != "" {
		s.ws.bus.Leave(s.rideGroup, s)
		s.rideGroup = ""
	}

	group := rideGroupName(rideKey)
	if err := s.ws.bus.Join(ctx, group, s); err != nil {
		s.ws.logger.Error(ctx, "group_join_failed", "Failed to join ride group", err, map[string]any{
			"ride_id": rideKey,
		})
		s.sendError("Internal server error.")
		return
	}
	s.rideGroup = group

	s.sendJSON(contracts.SubscribedAck{Status: "subscribed", RideID: rideKey})
}

// teardown runs when the connection is gone.
func (s *session) teardown() {
	if s.rideGroup != "" {
		s.ws.bus.Leave(s.rideGroup, s)
		s.rideGroup = ""
	}
}

// ----- write helpers -----

func (s *session) writeMessage(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *session) sendJSON(v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		s.ws.logger.Error(context.Background(), "ws_encode_failed", "Failed to encode message", err, nil)
		return
	}
	_ = s.writeMessage(buf)
}

func (s *session) sendError(msg string) {
	s.sendJSON(contracts.WSError{Error: msg})
}

func (s *session) writeClose(code int, reason string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(ctrlTimeout),
	)
}

func rideGroupName(rideKey string) string {
	return "ride_" + rideKey
}
