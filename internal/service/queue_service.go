package service

import (
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueueService runs the matchmaking queue
type QueueService struct {
	queue       repository.QueueRepo
	rooms       *RoomService
	config      repository.ConfigRepo
	liveness    SessionLiveness
	broadcaster Broadcaster
	logger      *zap.Logger

	// holdover keeps matched entries around so clients can reconnect
	// before FinishMatching clears them; zero disables the timer
	holdover  time.Duration
	afterFunc func(d time.Duration, f func())

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewQueueService(
	queue repository.QueueRepo,
	rooms *RoomService,
	config repository.ConfigRepo,
	rng *rand.Rand,
	holdover time.Duration,
	logger *zap.Logger,
) *QueueService {
	return &QueueService{
		queue:       queue,
		rooms:       rooms,
		config:      config,
		broadcaster: nopBroadcaster{},
		logger:      logger,
		holdover:    holdover,
		afterFunc:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		rng:         rng,
	}
}

// errRoundOver stops a holdover timer from touching a later round
var errRoundOver = errors.New("matching round already finished")

// SetBroadcaster sets the broadcaster for realtime events
func (s *QueueService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetLiveness sets the probe used to purge disconnected entries
func (s *QueueService) SetLiveness(l SessionLiveness) {
	s.liveness = l
}

func (s *QueueService) Snapshot(ctx context.Context) (model.QueueSnapshot, error) {
	q, err := s.queue.Get(ctx)
	if err != nil {
		return model.QueueSnapshot{}, fmt.Errorf("failed to get queue: %w", err)
	}
	return q.Snapshot(), nil
}

// JoinRequest identifies who is joining the queue
type JoinRequest struct {
	Name      string
	SessionID string
	Address   string
}

// JoinResult holds either the queue entry or, when the player already sits
// in a running room, that room and seat
type JoinResult struct {
	Entry  *model.QueueEntry
	Room   *model.Room
	Player *model.Player
}

// Join adds the session to the queue, or updates its entry in place
func (s *QueueService) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	name, ok := validName(req.Name)
	if !ok {
		return nil, ErrInvalidName
	}

	room, player, err := s.rooms.FindActiveSeat(ctx, name)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return &JoinResult{Room: room, Player: player}, nil
	}

	var entry model.QueueEntry
	q, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		if q.Status != model.QueueWaiting {
			return ErrQueueNotWaiting
		}
		s.purgeDead(q, req.SessionID)

		if i := q.IndexBySession(req.SessionID); i >= 0 {
			q.Entries[i].PlayerName = name
			q.Entries[i].IPAddress = req.Address
			entry = q.Entries[i]
			return nil
		}
		if len(q.Entries) >= q.MaxPlayers {
			return ErrQueueFull
		}
		entry = model.QueueEntry{
			PlayerID:   uuid.NewString(),
			PlayerName: name,
			IPAddress:  req.Address,
			JoinedAt:   time.Now(),
			SocketID:   req.SessionID,
		}
		q.Entries = append(q.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player joined queue",
		zap.String("playerId", entry.PlayerID),
		zap.String("player", entry.PlayerName),
		zap.Int("queued", len(q.Entries)),
	)
	s.broadcaster.BroadcastAll(EventQueueUpdate, q.Snapshot())
	return &JoinResult{Entry: &entry}, nil
}

// purgeDead drops entries whose session is gone. The caller's own session
// is always kept.
func (s *QueueService) purgeDead(q *model.MatchQueue, keep string) {
	if s.liveness == nil {
		return
	}
	kept := q.Entries[:0]
	for _, e := range q.Entries {
		if e.SocketID == keep || s.liveness.IsLive(e.SocketID) {
			kept = append(kept, e)
			continue
		}
		s.logger.Info("purging stale queue entry", zap.String("playerId", e.PlayerID), zap.String("player", e.PlayerName))
	}
	q.Entries = kept
}

// LeaveBy selects an entry to remove; the first non-empty field wins
type LeaveBy struct {
	PlayerID  string
	Name      string
	SessionID string
	Address   string
}

func (b LeaveBy) match(e model.QueueEntry) bool {
	switch {
	case b.PlayerID != "":
		return e.PlayerID == b.PlayerID
	case b.Name != "":
		return strings.EqualFold(e.PlayerName, strings.TrimSpace(b.Name))
	case b.SessionID != "":
		return e.SocketID == b.SessionID
	case b.Address != "":
		return e.IPAddress == b.Address
	}
	return false
}

// Leave removes one entry. It works in every queue status.
func (s *QueueService) Leave(ctx context.Context, by LeaveBy) (*model.QueueEntry, error) {
	var removed model.QueueEntry
	q, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		for i, e := range q.Entries {
			if by.match(e) {
				removed = e
				q.Entries = append(q.Entries[:i], q.Entries[i+1:]...)
				return nil
			}
		}
		return ErrEntryNotFound
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player left queue", zap.String("playerId", removed.PlayerID), zap.String("player", removed.PlayerName))
	s.broadcaster.BroadcastAll(EventQueueUpdate, q.Snapshot())
	return &removed, nil
}

// ReconnectResult holds either the assigned room and seat or the queue entry
type ReconnectResult struct {
	Room   *model.Room
	Player *model.Player
	Entry  *model.QueueEntry
}

// Reconnect rebinds an entry found by address to a new session. Entries
// already assigned to a room win; a given name narrows the candidates.
// Without any entry, a running seat held under newName is returned instead.
func (s *QueueService) Reconnect(ctx context.Context, address, sessionID, newName string) (*ReconnectResult, error) {
	newName = strings.TrimSpace(newName)
	if newName != "" {
		if _, ok := validName(newName); !ok {
			return nil, ErrInvalidName
		}
	}

	var entry model.QueueEntry
	_, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		best := -1
		bestScore := -1
		for i, e := range q.Entries {
			if e.IPAddress != address {
				continue
			}
			score := 0
			if e.AssignedRoomID != "" {
				score += 2
			}
			if newName != "" && strings.EqualFold(e.PlayerName, newName) {
				score++
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			return ErrEntryNotFound
		}
		q.Entries[best].SocketID = sessionID
		if newName != "" {
			q.Entries[best].PlayerName = newName
		}
		entry = q.Entries[best]
		return nil
	})

	if errors.Is(err, ErrEntryNotFound) {
		if newName == "" {
			return nil, ErrEntryNotFound
		}
		room, player, err := s.rooms.FindActiveSeat(ctx, newName)
		if err != nil {
			return nil, err
		}
		if room == nil {
			return nil, ErrEntryNotFound
		}
		s.bind(sessionID, room.ID, player.ID)
		return &ReconnectResult{Room: room, Player: player}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("player reconnected", zap.String("playerId", entry.PlayerID), zap.String("player", entry.PlayerName))
	if entry.AssignedRoomID != "" {
		room, err := s.rooms.GetRoom(ctx, entry.AssignedRoomID)
		if err != nil && !errors.Is(err, ErrRoomNotFound) {
			return nil, err
		}
		if room != nil && room.Status != model.RoomFinished {
			if p := room.FindPlayer(entry.PlayerID); p != nil {
				s.bind(sessionID, room.ID, p.ID)
				return &ReconnectResult{Room: room, Player: p}, nil
			}
		}
	}
	return &ReconnectResult{Entry: &entry}, nil
}

func (s *QueueService) bind(sessionID, roomID, playerID string) {
	if s.liveness != nil {
		s.liveness.Bind(sessionID, roomID, playerID)
	}
}

// MatchResult lists the rooms created by one matching round
type MatchResult struct {
	Rooms []*model.Room `json:"rooms"`
}

// StartMatching pairs every queued player into a new room
func (s *QueueService) StartMatching(ctx context.Context) (*MatchResult, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	active, err := s.rooms.activeRooms(ctx)
	if err != nil {
		return nil, err
	}

	var entries []model.QueueEntry
	_, err = s.queue.Update(ctx, func(q *model.MatchQueue) error {
		if q.Status != model.QueueWaiting {
			return ErrMatchingBusy
		}
		n := len(q.Entries)
		if n < 2 {
			return ErrNotEnoughPlayers
		}
		if n%2 != 0 {
			return ErrOddPlayers
		}
		if active+n/2 > cfg.MaxRooms {
			return ErrMaxRooms
		}
		q.Status = model.QueueMatching
		entries = append([]model.QueueEntry(nil), q.Entries...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("matching started", zap.Int("players", len(entries)))

	s.shuffle(entries)

	assigned := make(map[string]string, len(entries))
	result := &MatchResult{}
	for i := 0; i+1 < len(entries); i += 2 {
		room, err := s.rooms.CreateMatchedRoom(ctx, entries[i], entries[i+1])
		if err != nil {
			s.abortMatching(ctx, result.Rooms, err)
			return nil, err
		}
		result.Rooms = append(result.Rooms, room)
		assigned[entries[i].PlayerID] = room.ID
		assigned[entries[i+1].PlayerID] = room.ID
	}

	// entries may have left while rooms were being created; a room only
	// stands when both of its players are still queued
	now := time.Now()
	var discarded []*model.Room
	q, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		queued := make(map[string]bool, len(q.Entries))
		for _, e := range q.Entries {
			queued[e.PlayerID] = true
		}
		discarded = discarded[:0]
		kept := make(map[string]bool, len(result.Rooms))
		for _, r := range result.Rooms {
			if queued[r.Players[0].ID] && queued[r.Players[1].ID] {
				kept[r.ID] = true
			} else {
				discarded = append(discarded, r)
			}
		}
		for i := range q.Entries {
			if roomID, ok := assigned[q.Entries[i].PlayerID]; ok && kept[roomID] {
				q.Entries[i].AssignedRoomID = roomID
			}
		}
		q.Status = model.QueueMatched
		q.MatchedAt = &now
		return nil
	})
	if err != nil {
		s.abortMatching(ctx, result.Rooms, err)
		return nil, err
	}

	if len(discarded) > 0 {
		gone := make(map[string]bool, len(discarded))
		for _, r := range discarded {
			gone[r.ID] = true
			s.logger.Info("discarding matched room, a player left the queue", zap.String("roomId", r.ID))
			if err := s.rooms.DeleteRoom(ctx, r.ID); err != nil && !errors.Is(err, ErrRoomNotFound) {
				s.logger.Error("failed to discard matched room", zap.String("roomId", r.ID), zap.Error(err))
			}
		}
		rooms := result.Rooms[:0]
		for _, r := range result.Rooms {
			if !gone[r.ID] {
				rooms = append(rooms, r)
			}
		}
		result.Rooms = rooms
	}

	s.logger.Info("matching complete", zap.Int("rooms", len(result.Rooms)))
	for _, e := range q.Entries {
		if e.AssignedRoomID == "" {
			continue
		}
		s.bind(e.SocketID, e.AssignedRoomID, e.PlayerID)
		s.broadcaster.SendToSession(e.SocketID, EventMatched, map[string]interface{}{
			"roomId":   e.AssignedRoomID,
			"playerId": e.PlayerID,
		})
	}
	s.broadcaster.BroadcastAll(EventQueueUpdate, q.Snapshot())
	s.rooms.publishRooms(ctx)

	if s.holdover > 0 {
		s.afterFunc(s.holdover, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.expireRound(ctx, now)
		})
	}
	return result, nil
}

// expireRound clears the queue once the holdover of the round matched at
// matchedAt runs out. A queue finished early or rematched since is left as is.
func (s *QueueService) expireRound(ctx context.Context, matchedAt time.Time) {
	q, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		if q.Status != model.QueueMatched || q.MatchedAt == nil || !q.MatchedAt.Equal(matchedAt) {
			return errRoundOver
		}
		resetQueue(q)
		return nil
	})
	if errors.Is(err, errRoundOver) {
		s.logger.Debug("holdover expired for a finished round", zap.Time("matchedAt", matchedAt))
		return
	}
	if err != nil {
		s.logger.Error("failed to finish matching", zap.Error(err))
		return
	}
	s.logger.Info("queue cleared after holdover")
	s.broadcaster.BroadcastAll(EventQueueUpdate, q.Snapshot())
}

func resetQueue(q *model.MatchQueue) {
	q.Entries = []model.QueueEntry{}
	q.Status = model.QueueWaiting
	q.MatchedAt = nil
}

// abortMatching removes rooms created so far and reopens the queue
func (s *QueueService) abortMatching(ctx context.Context, created []*model.Room, cause error) {
	s.logger.Error("matching failed", zap.Int("roomsCreated", len(created)), zap.Error(cause))
	for _, r := range created {
		if err := s.rooms.rooms.Delete(ctx, r.ID); err != nil {
			s.logger.Error("failed to remove room after matching failure", zap.String("roomId", r.ID), zap.Error(err))
		}
	}
	q, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		q.Status = model.QueueWaiting
		q.MatchedAt = nil
		for i := range q.Entries {
			q.Entries[i].AssignedRoomID = ""
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to reset queue after matching failure", zap.Error(err))
		return
	}
	s.broadcaster.BroadcastAll(EventQueueUpdate, q.Snapshot())
}

// FinishMatching clears the queue after a matching round
func (s *QueueService) FinishMatching(ctx context.Context) error {
	q, err := s.queue.Update(ctx, func(q *model.MatchQueue) error {
		if q.Status == model.QueueMatching {
			return ErrMatchingBusy
		}
		resetQueue(q)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("queue cleared")
	s.broadcaster.BroadcastAll(EventQueueUpdate, q.Snapshot())
	return nil
}

// shuffle is a Fisher-Yates shuffle over the injected source
func (s *QueueService) shuffle(entries []model.QueueEntry) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	for i := len(entries) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		entries[i], entries[j] = entries[j], entries[i]
	}
}
