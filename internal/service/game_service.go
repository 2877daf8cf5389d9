package service

import (
	"cardclash/internal/engine"
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// errUnchanged aborts an update without writing
var errUnchanged = errors.New("unchanged")

// GameService persists turn-engine actions on room documents
type GameService struct {
	rooms       repository.RoomRepo
	config      repository.ConfigRepo
	engine      *engine.Engine
	leaderboard *LeaderboardService
	broadcaster Broadcaster
	logger      *zap.Logger
}

func NewGameService(
	rooms repository.RoomRepo,
	config repository.ConfigRepo,
	eng *engine.Engine,
	leaderboard *LeaderboardService,
	logger *zap.Logger,
) *GameService {
	return &GameService{
		rooms:       rooms,
		config:      config,
		engine:      eng,
		leaderboard: leaderboard,
		broadcaster: nopBroadcaster{},
		logger:      logger,
	}
}

// SetBroadcaster sets the broadcaster for realtime events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// mutate runs fn against the room's game under the room lock and keeps the
// room's seat list and status in step with the game
func (s *GameService) mutate(ctx context.Context, roomID string, fn func(eng *engine.Engine, g *model.GameState) error) (*model.Room, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	eng := s.engine.WithRules(engine.RulesFrom(cfg))

	return s.rooms.Update(ctx, roomID, func(r *model.Room) (*model.Room, error) {
		if r == nil {
			return nil, ErrRoomNotFound
		}
		if r.GameState == nil {
			return nil, ErrGameNotFound
		}
		if err := fn(eng, r.GameState); err != nil {
			return nil, err
		}
		r.Players = append([]model.Player(nil), r.GameState.Players...)
		if r.GameState.Status == model.GameFinished {
			r.Status = model.RoomFinished
		}
		return r, nil
	})
}

// GameView is a game state as seen by one seat
type GameView struct {
	Room      model.RoomSummary `json:"room"`
	GameState *model.GameState  `json:"gameState"`
	Resumed   bool              `json:"resumed"`
}

// GetState returns the viewer's view of the game. If the viewer is the
// player who paused it, the game resumes.
func (s *GameService) GetState(ctx context.Context, roomID, playerID string) (*GameView, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if room.GameState == nil {
		return &GameView{Room: room.Summary()}, nil
	}
	if playerID != "" && room.GameState.PlayerByID(playerID) == nil {
		return nil, ErrPlayerNotInRoom
	}

	resumed := false
	g := room.GameState
	if playerID != "" && g.Status == model.GamePaused && g.PausedByPlayerID == playerID {
		updated, err := s.mutate(ctx, roomID, func(eng *engine.Engine, g *model.GameState) error {
			if g.Status != model.GamePaused || g.PausedByPlayerID != playerID {
				return errUnchanged
			}
			return eng.Resume(g, playerID)
		})
		switch {
		case errors.Is(err, errUnchanged):
		case err != nil:
			return nil, err
		default:
			room = updated
			resumed = true
		}
	}

	if resumed {
		s.logger.Info("game resumed", zap.String("roomId", roomID), zap.String("playerId", playerID))
		s.broadcaster.BroadcastGame(roomID, EventGameResumed, room.GameState, map[string]interface{}{
			"roomId": roomID,
		})
	}
	return &GameView{Room: room.Summary(), GameState: room.GameState.ViewFor(playerID), Resumed: resumed}, nil
}

// PlayCard answers and plays a card. A wrong answer is persisted as an
// attempt and returned as engine.ErrWrongAnswer with the outcome.
func (s *GameService) PlayCard(ctx context.Context, roomID string, req engine.PlayRequest) (*engine.Outcome, error) {
	var out *engine.Outcome
	var wrong error
	room, err := s.mutate(ctx, roomID, func(eng *engine.Engine, g *model.GameState) error {
		o, err := eng.PlayCard(g, req)
		if errors.Is(err, engine.ErrWrongAnswer) {
			out, wrong = o, err
			return nil
		}
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if wrong != nil {
		return out, wrong
	}

	s.logger.Debug("card played",
		zap.String("roomId", roomID),
		zap.String("playerId", req.PlayerID),
		zap.String("effect", out.Action.Effect),
	)
	s.broadcaster.BroadcastGame(roomID, EventCardPlayed, room.GameState, map[string]interface{}{
		"roomId": roomID,
		"action": out.Action,
	})
	s.afterAction(ctx, room, out)
	return out, nil
}

// DrawCard draws a card and ends the turn
func (s *GameService) DrawCard(ctx context.Context, roomID, playerID, cardType string) (*engine.Outcome, error) {
	var out *engine.Outcome
	room, err := s.mutate(ctx, roomID, func(eng *engine.Engine, g *model.GameState) error {
		o, err := eng.DrawCard(g, playerID, cardType)
		out = o
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterAction(ctx, room, out)
	return out, nil
}

// SkipTurn passes the turn
func (s *GameService) SkipTurn(ctx context.Context, roomID, playerID string) (*engine.Outcome, error) {
	var out *engine.Outcome
	room, err := s.mutate(ctx, roomID, func(eng *engine.Engine, g *model.GameState) error {
		o, err := eng.SkipTurn(g, playerID)
		out = o
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterAction(ctx, room, out)
	return out, nil
}

// Pause pauses an active game on behalf of a disconnected player. It reports
// whether the game was paused by this call.
func (s *GameService) Pause(ctx context.Context, roomID, playerID string) (bool, error) {
	var name string
	room, err := s.mutate(ctx, roomID, func(eng *engine.Engine, g *model.GameState) error {
		if g.Status != model.GameActive {
			return errUnchanged
		}
		if err := eng.Pause(g, playerID); err != nil {
			return err
		}
		name = g.PlayerByID(playerID).Name
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("game paused", zap.String("roomId", roomID), zap.String("player", name))
	s.broadcaster.BroadcastGame(roomID, EventGamePaused, room.GameState, map[string]interface{}{
		"roomId":                 roomID,
		"disconnectedPlayerName": name,
	})
	return true, nil
}

func (s *GameService) afterAction(ctx context.Context, room *model.Room, out *engine.Outcome) {
	g := room.GameState
	if out.Ended {
		s.logger.Info("game ended",
			zap.String("roomId", room.ID),
			zap.String("winner", string(out.Winner)),
			zap.Int("turns", g.TurnNumber),
		)
		s.leaderboard.Record(ctx, out.Results)
		s.broadcaster.BroadcastGame(room.ID, EventGameEnded, g, map[string]interface{}{
			"roomId":  room.ID,
			"winner":  out.Winner,
			"results": out.Results,
		})
		s.publishRooms(ctx)
		return
	}
	if out.TurnChanged {
		s.broadcaster.BroadcastToRoom(room.ID, EventTurnChanged, map[string]interface{}{
			"roomId":      room.ID,
			"currentTurn": g.CurrentTurn,
			"turnNumber":  g.TurnNumber,
		})
	}
	s.broadcaster.BroadcastGame(room.ID, EventGameUpdate, g, map[string]interface{}{
		"roomId": room.ID,
	})
}

func (s *GameService) publishRooms(ctx context.Context) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		s.logger.Warn("failed to publish rooms", zap.Error(err))
		return
	}
	out := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	s.broadcaster.BroadcastAll(EventRoomsUpdate, out)
}
