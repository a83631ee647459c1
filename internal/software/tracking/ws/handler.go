package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ride-track/internal/general/jwt"
	"ride-track/internal/general/logger"
	"ride-track/internal/ports"
)

const (
	ctrlTimeout    = 5 * time.Second
	wsWriteTimeout = 5 * time.Second
	readTimeout    = 60 * time.Second
	pingInterval   = 30 * time.Second

	// application close code sent when the handshake token is rejected
	closeUnauthorized = 4001
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocket serves the live tracking socket with JWT auth.
type WebSocket struct {
	logger *logger.Logger
	tokens *jwt.Manager
	store  ports.TrackingStore
	bus    ports.Bus
	pub    ports.EventPublisher // optional broker mirror, may be nil
}

func NewWebSocket(log *logger.Logger, tokens *jwt.Manager, store ports.TrackingStore, bus ports.Bus, pub ports.EventPublisher) *WebSocket {
	return &WebSocket{
		logger: log,
		tokens: tokens,
		store:  store,
		bus:    bus,
		pub:    pub,
	}
}

// RegisterRoutes mounts the tracking socket on the provided mux.
func (ws *WebSocket) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/tracking", ws.ServeTracking)
}

// ServeTracking upgrades the connection, authenticates it from the token
// query parameter and runs the per-connection event loop.
func (ws *WebSocket) ServeTracking(w http.ResponseWriter, r *http.Request) {
	// 1) Upgrade HTTP -> WS
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 20) // 1 MiB

	// 2) Token from the query string; rejected handshakes close with 4001
	s := newSession(ws, conn)
	var claims *jwt.Claims
	raw, err := jwt.FromQuery(r, "token")
	if err == nil {
		claims, err = ws.tokens.ParseAndValidate(raw, jwt.KindAccess)
	}
	if err != nil {
		ws.logger.Error(r.Context(), "ws_auth_failed", "Tracking socket rejected", err, nil)
		s.writeClose(closeUnauthorized, "unauthorized")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		ws.logger.Error(r.Context(), "ws_auth_failed", "Token subject is not a user id", err, nil)
		s.writeClose(closeUnauthorized, "unauthorized")
		return
	}
	s.userID = userID

	ws.logger.Info(r.Context(), "ws_connected", "Tracking socket connected",
		map[string]any{"user_id": userID})

	// 3) Keepalive: read deadline refreshed on pong, pings every 30s
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			s.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
			s.writeMu.Unlock()
			if err != nil {
				// Close socket to unblock reader; goroutine exits.
				_ = conn.Close()
				ws.logger.Error(r.Context(), "ws_ping_failed", "Failed to send ping", err, nil)
				return
			}
		}
	}()

	// 4) Leave the subscribed group on any exit path
	defer s.teardown()

	// 5) Read loop: events are handled strictly in arrival order
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				ws.logger.Error(r.Context(), "ws_unexpected_close", "Tracking socket closed unexpectedly", err, map[string]any{
					"user_id": userID,
				})
			} else {
				ws.logger.Info(r.Context(), "ws_connection_closed", "Tracking socket closed", map[string]any{
					"user_id": userID,
				})
			}
			break
		}

		s.dispatch(r.Context(), payload)
	}
}
