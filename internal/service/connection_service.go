package service

import (
	"cardclash/internal/model"
	"context"
	"errors"

	"go.uber.org/zap"
)

// Binding records which room seat a session was acting for
type Binding struct {
	RoomID   string
	PlayerID string
}

// ConnectionService decides what a dropped connection means once its
// grace period has passed
type ConnectionService struct {
	queue    *QueueService
	rooms    *RoomService
	games    *GameService
	liveness SessionLiveness
	logger   *zap.Logger
}

func NewConnectionService(queue *QueueService, rooms *RoomService, games *GameService, liveness SessionLiveness, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		queue:    queue,
		rooms:    rooms,
		games:    games,
		liveness: liveness,
		logger:   logger,
	}
}

// HandleDisconnect re-checks liveness before acting: the queue entry still
// bound to the dead session is dropped, an active game with no live session
// for the seat is paused, and a seat in a waiting room is given up.
func (s *ConnectionService) HandleDisconnect(ctx context.Context, sessionID string, b Binding) {
	log := s.logger.With(zap.String("sessionId", sessionID))

	if !s.liveness.IsLive(sessionID) {
		_, err := s.queue.Leave(ctx, LeaveBy{SessionID: sessionID})
		if err != nil && !errors.Is(err, ErrEntryNotFound) {
			log.Error("failed to remove queue entry", zap.Error(err))
		}
	}

	if b.RoomID == "" || b.PlayerID == "" {
		return
	}
	if s.liveness.IsPlayerConnected(b.RoomID, b.PlayerID) {
		log.Debug("seat reconnected within grace period", zap.String("roomId", b.RoomID))
		return
	}

	room, err := s.rooms.GetRoom(ctx, b.RoomID)
	if errors.Is(err, ErrRoomNotFound) {
		return
	}
	if err != nil {
		log.Error("failed to load room", zap.String("roomId", b.RoomID), zap.Error(err))
		return
	}

	switch {
	case room.GameState != nil && room.GameState.Status == model.GameActive:
		if _, err := s.games.Pause(ctx, b.RoomID, b.PlayerID); err != nil {
			log.Error("failed to pause game", zap.String("roomId", b.RoomID), zap.Error(err))
		}
	case room.Status == model.RoomWaiting:
		_, err := s.rooms.LeaveRoom(ctx, b.RoomID, b.PlayerID)
		if err != nil && !errors.Is(err, ErrPlayerNotInRoom) {
			log.Error("failed to leave room", zap.String("roomId", b.RoomID), zap.Error(err))
		}
	}
}
