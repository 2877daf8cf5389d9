package service

import (
	"cardclash/internal/engine"
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomService handles room lifecycle operations
type RoomService struct {
	rooms       repository.RoomRepo
	config      repository.ConfigRepo
	engine      *engine.Engine
	leaderboard *LeaderboardService
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewRoomService creates a new room service
func NewRoomService(
	rooms repository.RoomRepo,
	config repository.ConfigRepo,
	eng *engine.Engine,
	leaderboard *LeaderboardService,
	logger *zap.Logger,
) *RoomService {
	return &RoomService{
		rooms:       rooms,
		config:      config,
		engine:      eng,
		leaderboard: leaderboard,
		broadcaster: nopBroadcaster{},
		logger:      logger,
	}
}

// SetBroadcaster sets the broadcaster for realtime events
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// engineFor applies the current game config to the engine
func (s *RoomService) engineFor(ctx context.Context) (*engine.Engine, model.GameConfig, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return s.engine.WithRules(engine.RulesFrom(cfg)), cfg, nil
}

func validName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n > 0 && n <= MaxNameLength
}

// activeRooms counts rooms that are not finished
func (s *RoomService) activeRooms(ctx context.Context) (int, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	n := 0
	for _, r := range rooms {
		if r.Status != model.RoomFinished {
			n++
		}
	}
	return n, nil
}

// CreateRoom opens an empty manual room
func (s *RoomService) CreateRoom(ctx context.Context, name string) (*model.Room, error) {
	name, ok := validName(name)
	if !ok {
		return nil, ErrInvalidRoomName
	}

	var room *model.Room
	err := s.rooms.WithCreateLock(ctx, func(ctx context.Context) error {
		cfg, err := s.config.Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		active, err := s.activeRooms(ctx)
		if err != nil {
			return err
		}
		if active >= cfg.MaxRooms {
			return ErrMaxRooms
		}
		room = &model.Room{
			ID:         uuid.NewString(),
			Name:       name,
			Players:    []model.Player{},
			MaxPlayers: model.RoomCapacity,
			Status:     model.RoomWaiting,
			Source:     model.RoomFromManual,
			CreatedAt:  time.Now(),
		}
		if err := s.rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("room created", zap.String("roomId", room.ID), zap.String("name", room.Name))
	s.publishRooms(ctx)
	return room, nil
}

// CreateMatchedRoom seats two queue entries and starts their game at once.
// The entry ids become the player ids.
func (s *RoomService) CreateMatchedRoom(ctx context.Context, a, b model.QueueEntry) (*model.Room, error) {
	var room *model.Room
	err := s.rooms.WithCreateLock(ctx, func(ctx context.Context) error {
		eng, cfg, err := s.engineFor(ctx)
		if err != nil {
			return err
		}
		active, err := s.activeRooms(ctx)
		if err != nil {
			return err
		}
		if active >= cfg.MaxRooms {
			return ErrMaxRooms
		}

		red := eng.NewPlayer(a.PlayerName, model.TeamRed)
		red.ID = a.PlayerID
		blue := eng.NewPlayer(b.PlayerName, model.TeamBlue)
		blue.ID = b.PlayerID

		id := uuid.NewString()
		game := eng.NewGame(id, []model.Player{red, blue}, model.GameActive)
		room = &model.Room{
			ID:         id,
			Name:       fmt.Sprintf("%s vs %s", a.PlayerName, b.PlayerName),
			Players:    append([]model.Player(nil), game.Players...),
			MaxPlayers: model.RoomCapacity,
			Status:     model.RoomInProgress,
			Source:     model.RoomFromQueue,
			GameState:  game,
			CreatedAt:  time.Now(),
		}
		if err := s.rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("matched room created",
		zap.String("roomId", room.ID),
		zap.String("red", a.PlayerName),
		zap.String("blue", b.PlayerName),
	)
	return room, nil
}

// JoinRoom takes the next free seat: red first, then blue
func (s *RoomService) JoinRoom(ctx context.Context, roomID, playerName string) (*model.Room, *model.Player, error) {
	name, ok := validName(playerName)
	if !ok {
		return nil, nil, ErrInvalidName
	}
	eng, _, err := s.engineFor(ctx)
	if err != nil {
		return nil, nil, err
	}

	var player model.Player
	room, err := s.rooms.Update(ctx, roomID, func(r *model.Room) (*model.Room, error) {
		if r == nil {
			return nil, ErrRoomNotFound
		}
		if r.Status != model.RoomWaiting {
			return nil, ErrRoomNotWaiting
		}
		if r.IsFull() {
			return nil, ErrRoomFull
		}
		team := model.TeamRed
		if len(r.Players) > 0 {
			team = r.Players[0].Team.Opponent()
		}
		player = eng.NewPlayer(name, team)
		r.Players = append(r.Players, player)
		if r.IsFull() {
			r.GameState = eng.NewGame(r.ID, r.Players, model.GameWaiting)
			r.Players = append([]model.Player(nil), r.GameState.Players...)
		}
		return r, nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("player joined room", zap.String("roomId", roomID), zap.String("player", name))
	s.broadcaster.BroadcastToRoom(roomID, EventPlayerJoined, map[string]interface{}{
		"roomId":   roomID,
		"playerId": player.ID,
	})
	s.publishRooms(ctx)
	return room, room.FindPlayer(player.ID), nil
}

// SetReady marks a seat ready. Once both seats are ready the game starts.
func (s *RoomService) SetReady(ctx context.Context, roomID, playerID string) (*model.Room, error) {
	started := false
	room, err := s.rooms.Update(ctx, roomID, func(r *model.Room) (*model.Room, error) {
		if r == nil {
			return nil, ErrRoomNotFound
		}
		p := r.FindPlayer(playerID)
		if p == nil {
			return nil, ErrPlayerNotInRoom
		}
		p.Ready = true
		if r.GameState != nil {
			if gp := r.GameState.PlayerByID(playerID); gp != nil {
				gp.Ready = true
			}
		}
		if !r.IsFull() || r.GameState == nil || r.GameState.Status != model.GameWaiting {
			return r, nil
		}
		for _, seat := range r.Players {
			if !seat.Ready {
				return r, nil
			}
		}
		if err := s.engine.Start(r.GameState); err != nil {
			return nil, err
		}
		r.Status = model.RoomInProgress
		started = true
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		s.logger.Info("game started", zap.String("roomId", roomID))
		s.broadcaster.BroadcastGame(roomID, EventGameStarted, room.GameState, map[string]interface{}{
			"roomId": roomID,
		})
		s.publishRooms(ctx)
	} else {
		s.broadcaster.BroadcastToRoom(roomID, EventGameUpdate, map[string]interface{}{
			"roomId": roomID,
			"room":   room.Summary(),
		})
	}
	return room, nil
}

// LeaveResult reports what leaving a room did
type LeaveResult struct {
	Room      *model.Room // nil when the room was deleted
	Forfeited bool
	// Abandoned is set when the game was paused by the other player, who
	// then loses instead of the leaver
	Abandoned bool
	Outcome   *engine.Outcome
}

// LeaveRoom frees the seat. An empty room is deleted and a game that never
// started is discarded. Leaving a running game forfeits it, except when the
// opponent disconnected and paused it: then the absent opponent loses.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, playerID string) (*LeaveResult, error) {
	res := &LeaveResult{}
	room, err := s.rooms.Update(ctx, roomID, func(r *model.Room) (*model.Room, error) {
		if r == nil {
			return nil, ErrRoomNotFound
		}
		if r.FindPlayer(playerID) == nil {
			return nil, ErrPlayerNotInRoom
		}

		if g := r.GameState; g != nil && (g.Status == model.GameActive || g.Status == model.GamePaused) {
			loser := playerID
			if g.Status == model.GamePaused && g.PausedByPlayerID != "" && g.PausedByPlayerID != playerID {
				loser = g.PausedByPlayerID
				res.Abandoned = true
			}
			out, err := s.engine.Forfeit(g, loser)
			if err != nil {
				return nil, err
			}
			r.Players = append([]model.Player(nil), g.Players...)
			r.Status = model.RoomFinished
			res.Forfeited = true
			res.Outcome = out
			return r, nil
		}

		kept := r.Players[:0]
		for _, p := range r.Players {
			if p.ID != playerID {
				p.Ready = false
				kept = append(kept, p)
			}
		}
		r.Players = kept
		if len(r.Players) == 0 {
			return nil, nil
		}
		if r.GameState != nil && r.GameState.Status != model.GameFinished {
			r.GameState = nil
			r.Status = model.RoomWaiting
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	res.Room = room

	s.logger.Info("player left room",
		zap.String("roomId", roomID),
		zap.String("playerId", playerID),
		zap.Bool("forfeit", res.Forfeited),
		zap.Bool("abandoned", res.Abandoned),
		zap.Bool("deleted", room == nil),
	)
	if res.Forfeited {
		s.leaderboard.Record(ctx, res.Outcome.Results)
		s.broadcaster.BroadcastGame(roomID, EventGameEnded, room.GameState, map[string]interface{}{
			"roomId":  roomID,
			"winner":  res.Outcome.Winner,
			"results": res.Outcome.Results,
		})
	}
	s.broadcaster.BroadcastToRoom(roomID, EventPlayerLeft, map[string]interface{}{
		"roomId":   roomID,
		"playerId": playerID,
	})
	if room == nil {
		s.broadcaster.CloseRoom(roomID)
	}
	s.publishRooms(ctx)
	return res, nil
}

// DeleteRoom removes a room regardless of its state
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return ErrRoomNotFound
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	s.logger.Info("room deleted", zap.String("roomId", roomID))
	s.broadcaster.CloseRoom(roomID)
	s.publishRooms(ctx)
	return nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context) ([]model.RoomSummary, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	out := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out, nil
}

// FindActiveSeat finds a non-finished room where name holds a seat
func (s *RoomService) FindActiveSeat(ctx context.Context, name string) (*model.Room, *model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, nil
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	for _, r := range rooms {
		if r.Status == model.RoomFinished {
			continue
		}
		for i := range r.Players {
			if strings.EqualFold(r.Players[i].Name, name) {
				return r, &r.Players[i], nil
			}
		}
	}
	return nil, nil, nil
}

func (s *RoomService) publishRooms(ctx context.Context) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		s.logger.Warn("failed to publish rooms", zap.Error(err))
		return
	}
	s.broadcaster.BroadcastAll(EventRoomsUpdate, rooms)
}

// IsDomainError reports whether err should be shown to the client as is
func IsDomainError(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de)
}
