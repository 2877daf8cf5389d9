package ws

import (
	"cardclash/internal/service"
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// eventTimeout bounds the store work done for one client event
	eventTimeout = 10 * time.Second
)

var (
	_ service.Broadcaster     = (*Hub)(nil)
	_ service.SessionLiveness = (*Hub)(nil)
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	queue    *service.QueueService
	rooms    *service.RoomService
	games    *service.GameService
	conns    *service.ConnectionService
	auth     *service.AuthService
	upgrader websocket.Upgrader
	grace    time.Duration
	logger   *zap.Logger
}

// Services groups what the gateway dispatches to
type Services struct {
	Queue       *service.QueueService
	Rooms       *service.RoomService
	Games       *service.GameService
	Connections *service.ConnectionService
	Auth        *service.AuthService
}

// NewHandler creates a new WebSocket handler. allowedOrigins may hold "*".
func NewHandler(hub *Hub, svc Services, allowedOrigins []string, grace time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		hub:   hub,
		queue: svc.Queue,
		rooms: svc.Rooms,
		games: svc.Games,
		conns: svc.Connections,
		auth:  svc.Auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		grace:  grace,
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// clientAddress prefers the first X-Forwarded-For hop
func clientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ServeWS handles GET /v1/ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := NewConnection(uuid.NewString(), clientAddress(r))
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		b := h.hub.Unregister(conn)
		wsConn.Close()
		h.scheduleDisconnect(conn.SessionID, b)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("sessionId", conn.SessionID), zap.Error(err))
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		h.dispatch(ctx, conn, &msg)
		cancel()
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// scheduleDisconnect waits out the grace period before treating the drop
// as a real leave
func (h *Handler) scheduleDisconnect(sessionID string, b service.Binding) {
	time.AfterFunc(h.grace, func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		h.conns.HandleDisconnect(ctx, sessionID, b)
	})
}
