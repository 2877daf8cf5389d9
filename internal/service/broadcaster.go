package service

import "cardclash/internal/model"

// Broadcaster pushes events to connected clients (avoids import cycle)
type Broadcaster interface {
	BroadcastAll(msgType string, payload interface{})
	BroadcastToRoom(roomID string, msgType string, payload interface{})
	// BroadcastGame sends fields plus a per-viewer "gameState" to every
	// session in the room
	BroadcastGame(roomID string, msgType string, game *model.GameState, fields map[string]interface{})
	SendToSession(sessionID string, msgType string, payload interface{})
	CloseRoom(roomID string)
}

// SessionLiveness answers whether realtime sessions are still connected
type SessionLiveness interface {
	IsLive(sessionID string) bool
	IsPlayerConnected(roomID, playerID string) bool
	Bind(sessionID, roomID, playerID string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastAll(string, interface{})            {}
func (nopBroadcaster) BroadcastToRoom(string, string, interface{}) {}
func (nopBroadcaster) SendToSession(string, string, interface{})   {}
func (nopBroadcaster) CloseRoom(string)                            {}

func (nopBroadcaster) BroadcastGame(string, string, *model.GameState, map[string]interface{}) {}

// Server-to-client event names
const (
	EventRoomsUpdate          = "rooms-update"
	EventQueueUpdate          = "queue-update"
	EventGameUpdate           = "game-update"
	EventGameStarted          = "game-started"
	EventCardPlayed           = "card-played"
	EventTurnChanged          = "turn-changed"
	EventGameEnded            = "game-ended"
	EventGamePaused           = "game-paused"
	EventGameResumed          = "game-resumed"
	EventPlayerJoined         = "player-joined"
	EventPlayerLeft           = "player-left"
	EventPreviewOpponentCards = "preview-opponent-cards"
	EventMatched              = "matched"
	EventError                = "error"
)
