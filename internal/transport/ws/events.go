package ws

import (
	"cardclash/internal/engine"
	"cardclash/internal/service"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

type roomRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type joinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type joinQueueRequest struct {
	PlayerName string `json:"playerName"`
}

type leaveQueueRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type reconnectRequest struct {
	PlayerName string `json:"playerName"`
}

type adminRequest struct {
	Token string `json:"token"`
}

type playCardRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
	Answer   string `json:"answer"`
	Choice   string `json:"choice,omitempty"`
}

type drawCardRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	CardType string `json:"cardType,omitempty"`
}

var (
	errBadPayload   = errors.New("malformed payload")
	errUnknownEvent = errors.New("unknown event")
	errUnauthorized = errors.New("admin token required")
)

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadPayload
	}
	return nil
}

// dispatch routes one client event. Every failure produces exactly one
// error message to the acting session.
func (h *Handler) dispatch(ctx context.Context, conn *Connection, msg *Message) {
	var err error
	switch msg.Type {
	case MsgRequestRooms:
		err = h.requestRooms(ctx, conn)
	case MsgRequestQueue:
		err = h.requestQueue(ctx, conn)
	case MsgRequestGameState:
		err = h.requestGameState(ctx, conn, msg.Payload)
	case MsgJoinRoom:
		err = h.joinRoom(ctx, conn, msg.Payload)
	case MsgLeaveRoom:
		err = h.leaveRoom(ctx, conn, msg.Payload)
	case MsgJoinQueue:
		err = h.joinQueue(ctx, conn, msg.Payload)
	case MsgLeaveQueue:
		err = h.leaveQueue(ctx, conn, msg.Payload)
	case MsgReconnectPlayer:
		err = h.reconnect(ctx, conn, msg.Payload)
	case MsgAdminStartMatching:
		err = h.startMatching(ctx, msg.Payload)
	case MsgPlayerReady:
		err = h.playerReady(ctx, conn, msg.Payload)
	case MsgPlayCard:
		err = h.playCard(ctx, conn, msg.Payload)
	case MsgDrawCard:
		err = h.drawCard(ctx, conn, msg.Payload)
	case MsgSkipTurn:
		err = h.skipTurn(ctx, conn, msg.Payload)
	default:
		err = errUnknownEvent
	}
	if err != nil {
		h.reportError(conn, msg.Type, err)
	}
}

func (h *Handler) reportError(conn *Connection, event string, err error) {
	message := "internal server error"
	switch {
	case service.IsDomainError(err),
		errors.Is(err, errBadPayload),
		errors.Is(err, errUnknownEvent),
		errors.Is(err, errUnauthorized):
		message = err.Error()
	default:
		h.logger.Error("event failed",
			zap.String("sessionId", conn.SessionID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
	h.hub.SendToSession(conn.SessionID, service.EventError, map[string]interface{}{
		"message": message,
		"event":   event,
	})
}

// bindSeat checks the seat exists before binding the session to it
func (h *Handler) bindSeat(ctx context.Context, conn *Connection, roomID, playerID string) error {
	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.FindPlayer(playerID) == nil {
		return service.ErrPlayerNotInRoom
	}
	h.hub.Bind(conn.SessionID, roomID, playerID)
	return nil
}

func (h *Handler) requestRooms(ctx context.Context, conn *Connection) error {
	rooms, err := h.rooms.ListRooms(ctx)
	if err != nil {
		return err
	}
	h.hub.SendToSession(conn.SessionID, service.EventRoomsUpdate, rooms)
	return nil
}

func (h *Handler) requestQueue(ctx context.Context, conn *Connection) error {
	snap, err := h.queue.Snapshot(ctx)
	if err != nil {
		return err
	}
	h.hub.SendToSession(conn.SessionID, service.EventQueueUpdate, snap)
	return nil
}

func (h *Handler) requestGameState(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req roomRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	// bind first so the resume broadcast reaches this session
	if req.PlayerID != "" {
		if err := h.bindSeat(ctx, conn, req.RoomID, req.PlayerID); err != nil {
			return err
		}
	} else {
		h.hub.Subscribe(conn.SessionID, req.RoomID)
	}

	view, err := h.games.GetState(ctx, req.RoomID, req.PlayerID)
	if err != nil {
		return err
	}
	h.hub.SendToSession(conn.SessionID, service.EventGameUpdate, map[string]interface{}{
		"roomId":    req.RoomID,
		"room":      view.Room,
		"gameState": view.GameState,
		"resumed":   view.Resumed,
	})
	return nil
}

func (h *Handler) joinRoom(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req joinRoomRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	room, player, err := h.rooms.JoinRoom(ctx, req.RoomID, req.PlayerName)
	if err != nil {
		return err
	}
	h.hub.Bind(conn.SessionID, room.ID, player.ID)
	h.hub.SendToSession(conn.SessionID, service.EventPlayerJoined, map[string]interface{}{
		"roomId":   room.ID,
		"playerId": player.ID,
		"room":     room.Summary(),
	})
	return nil
}

func (h *Handler) leaveRoom(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req roomRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if _, err := h.rooms.LeaveRoom(ctx, req.RoomID, req.PlayerID); err != nil {
		return err
	}
	h.hub.Unsubscribe(conn.SessionID, req.RoomID)
	return nil
}

func (h *Handler) joinQueue(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req joinQueueRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	res, err := h.queue.Join(ctx, service.JoinRequest{
		Name:      req.PlayerName,
		SessionID: conn.SessionID,
		Address:   conn.Address,
	})
	if err != nil {
		return err
	}
	if res.Room != nil {
		h.hub.Bind(conn.SessionID, res.Room.ID, res.Player.ID)
		h.hub.SendToSession(conn.SessionID, service.EventMatched, map[string]interface{}{
			"roomId":   res.Room.ID,
			"playerId": res.Player.ID,
		})
	}
	return nil
}

func (h *Handler) leaveQueue(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req leaveQueueRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	_, err := h.queue.Leave(ctx, service.LeaveBy{
		PlayerID:  req.PlayerID,
		Name:      req.PlayerName,
		SessionID: conn.SessionID,
	})
	return err
}

func (h *Handler) reconnect(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req reconnectRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	res, err := h.queue.Reconnect(ctx, conn.Address, conn.SessionID, req.PlayerName)
	if err != nil {
		return err
	}
	if res.Room != nil {
		h.hub.SendToSession(conn.SessionID, service.EventMatched, map[string]interface{}{
			"roomId":   res.Room.ID,
			"playerId": res.Player.ID,
		})
		return nil
	}
	return h.requestQueue(ctx, conn)
}

func (h *Handler) startMatching(ctx context.Context, raw json.RawMessage) error {
	var req adminRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if _, err := h.auth.ValidateAdminToken(req.Token); err != nil {
		return errUnauthorized
	}
	_, err := h.queue.StartMatching(ctx)
	return err
}

func (h *Handler) playerReady(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req roomRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if err := h.bindSeat(ctx, conn, req.RoomID, req.PlayerID); err != nil {
		return err
	}
	_, err := h.rooms.SetReady(ctx, req.RoomID, req.PlayerID)
	return err
}

func (h *Handler) playCard(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req playCardRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	out, err := h.games.PlayCard(ctx, req.RoomID, engine.PlayRequest{
		PlayerID: req.PlayerID,
		CardID:   req.CardID,
		Answer:   req.Answer,
		Choice:   req.Choice,
	})
	if errors.Is(err, engine.ErrWrongAnswer) {
		h.hub.SendToSession(conn.SessionID, service.EventError, map[string]interface{}{
			"message":  err.Error(),
			"event":    MsgPlayCard,
			"cardId":   req.CardID,
			"attempts": out.Attempts,
		})
		return nil
	}
	if err != nil {
		return err
	}
	if out.RevealOpponent != nil {
		h.hub.SendToSession(conn.SessionID, service.EventPreviewOpponentCards, map[string]interface{}{
			"roomId": req.RoomID,
			"cards":  out.RevealOpponent,
		})
	}
	return nil
}

func (h *Handler) drawCard(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req drawCardRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	_, err := h.games.DrawCard(ctx, req.RoomID, req.PlayerID, req.CardType)
	return err
}

func (h *Handler) skipTurn(ctx context.Context, conn *Connection, raw json.RawMessage) error {
	var req roomRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	_, err := h.games.SkipTurn(ctx, req.RoomID, req.PlayerID)
	return err
}
