package ws

import (
	"cardclash/internal/model"
	"cardclash/internal/service"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Client-to-server message types
const (
	MsgRequestRooms       = "request-rooms"
	MsgRequestQueue       = "request-queue"
	MsgRequestGameState   = "request-game-state"
	MsgJoinRoom           = "join-room"
	MsgLeaveRoom          = "leave-room"
	MsgJoinQueue          = "join-queue"
	MsgLeaveQueue         = "leave-queue"
	MsgReconnectPlayer    = "reconnect-player"
	MsgAdminStartMatching = "admin-start-matching"
	MsgPlayerReady        = "player-ready"
	MsgPlayCard           = "play-card"
	MsgDrawCard           = "draw-card"
	MsgSkipTurn           = "skip-turn"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}

// Connection is one client session
type Connection struct {
	SessionID string
	Address   string
	Send      chan []byte
}

// NewConnection creates a session with a buffered outbox
func NewConnection(sessionID, address string) *Connection {
	return &Connection{
		SessionID: sessionID,
		Address:   address,
		Send:      make(chan []byte, 256),
	}
}

// outbound is an encoded message for one session or for everyone
type outbound struct {
	all     bool
	session string
	data    []byte
}

// Hub tracks live sessions, their room subscriptions and the seat each
// session acts for. It implements service.Broadcaster and
// service.SessionLiveness.
type Hub struct {
	sessions map[string]*Connection
	rooms    map[string]map[string]struct{} // roomID -> session ids
	bindings map[string]service.Binding     // session id -> seat

	mu sync.RWMutex

	broadcast chan outbound
	done      chan struct{}
	closeOnce sync.Once

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		sessions:  make(map[string]*Connection),
		rooms:     make(map[string]map[string]struct{}),
		bindings:  make(map[string]service.Binding),
		broadcast: make(chan outbound, 256),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go h.run()
	return h
}

// Close stops delivery
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.broadcast:
			h.mu.RLock()
			if msg.all {
				for _, conn := range h.sessions {
					h.deliver(conn, msg.data)
				}
			} else if conn, ok := h.sessions[msg.session]; ok {
				h.deliver(conn, msg.data)
			}
			h.mu.RUnlock()
		}
	}
}

// deliver drops the message if the session's buffer is full
func (h *Hub) deliver(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		h.logger.Warn("dropping message for slow session", zap.String("sessionId", conn.SessionID))
	}
}

func (h *Hub) enqueue(msgs ...outbound) {
	for _, m := range msgs {
		select {
		case h.broadcast <- m:
		case <-h.done:
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[conn.SessionID] = conn
	h.logger.Debug("session connected", zap.String("sessionId", conn.SessionID), zap.String("address", conn.Address))
}

// Unregister removes a connection and returns the seat it was bound to
func (h *Hub) Unregister(conn *Connection) service.Binding {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, ok := h.sessions[conn.SessionID]
	if !ok || existing != conn {
		return service.Binding{}
	}
	delete(h.sessions, conn.SessionID)
	close(conn.Send)

	b := h.bindings[conn.SessionID]
	delete(h.bindings, conn.SessionID)
	for roomID, subs := range h.rooms {
		delete(subs, conn.SessionID)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.logger.Debug("session disconnected", zap.String("sessionId", conn.SessionID), zap.String("roomId", b.RoomID))
	return b
}

// Subscribe adds the session to a room's broadcasts without binding a seat
func (h *Hub) Subscribe(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribe(sessionID, roomID)
}

func (h *Hub) subscribe(sessionID, roomID string) {
	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	subs := h.rooms[roomID]
	if subs == nil {
		subs = make(map[string]struct{})
		h.rooms[roomID] = subs
	}
	subs[sessionID] = struct{}{}
}

// Unsubscribe drops the session from a room and clears a seat bound there
func (h *Hub) Unsubscribe(sessionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[roomID]; ok {
		delete(subs, sessionID)
		if len(subs) == 0 {
			delete(h.rooms, roomID)
		}
	}
	if b, ok := h.bindings[sessionID]; ok && b.RoomID == roomID {
		delete(h.bindings, sessionID)
	}
}

// Bind records the seat a session acts for and subscribes it to the room
func (h *Hub) Bind(sessionID, roomID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	h.bindings[sessionID] = service.Binding{RoomID: roomID, PlayerID: playerID}
	h.subscribe(sessionID, roomID)
}

// Binding returns the seat a session is bound to
func (h *Hub) Binding(sessionID string) (service.Binding, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.bindings[sessionID]
	return b, ok
}

func (h *Hub) IsLive(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[sessionID]
	return ok
}

func (h *Hub) IsPlayerConnected(roomID, playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, b := range h.bindings {
		if b.RoomID == roomID && b.PlayerID == playerID {
			return true
		}
	}
	return false
}

// SessionCount returns the number of live sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) BroadcastAll(msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.enqueue(outbound{all: true, data: data})
}

func (h *Hub) BroadcastToRoom(roomID, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.mu.RLock()
	msgs := make([]outbound, 0, len(h.rooms[roomID]))
	for sid := range h.rooms[roomID] {
		msgs = append(msgs, outbound{session: sid, data: data})
	}
	h.mu.RUnlock()
	h.enqueue(msgs...)
}

// BroadcastGame renders the game once per subscriber: each bound seat sees
// its own hand, everyone else sees hand sizes only
func (h *Hub) BroadcastGame(roomID, msgType string, game *model.GameState, fields map[string]interface{}) {
	h.mu.RLock()
	viewers := make(map[string]string, len(h.rooms[roomID]))
	for sid := range h.rooms[roomID] {
		playerID := ""
		if b, ok := h.bindings[sid]; ok && b.RoomID == roomID {
			playerID = b.PlayerID
		}
		viewers[sid] = playerID
	}
	h.mu.RUnlock()

	views := make(map[string][]byte, 2)
	msgs := make([]outbound, 0, len(viewers))
	for sid, playerID := range viewers {
		data, ok := views[playerID]
		if !ok {
			payload := make(map[string]interface{}, len(fields)+1)
			for k, v := range fields {
				payload[k] = v
			}
			payload["gameState"] = game.ViewFor(playerID)
			var err error
			data, err = encode(msgType, payload)
			if err != nil {
				h.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
				return
			}
			views[playerID] = data
		}
		msgs = append(msgs, outbound{session: sid, data: data})
	}
	h.enqueue(msgs...)
}

func (h *Hub) SendToSession(sessionID, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.enqueue(outbound{session: sessionID, data: data})
}

// CloseRoom drops every subscription and seat binding for a deleted room
func (h *Hub) CloseRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomID)
	for sid, b := range h.bindings {
		if b.RoomID == roomID {
			delete(h.bindings, sid)
		}
	}
}
