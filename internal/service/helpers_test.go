package service

import (
	"cardclash/internal/catalog"
	"cardclash/internal/engine"
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"cardclash/internal/store"
	"context"
	"math/rand"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

type event struct {
	target  string // "all", "room:<id>" or "session:<id>"
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []event
	closed []string
}

func (b *fakeBroadcaster) add(e event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *fakeBroadcaster) BroadcastAll(msgType string, payload interface{}) {
	b.add(event{"all", msgType, payload})
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID, msgType string, payload interface{}) {
	b.add(event{"room:" + roomID, msgType, payload})
}

func (b *fakeBroadcaster) BroadcastGame(roomID, msgType string, game *model.GameState, fields map[string]interface{}) {
	b.add(event{"room:" + roomID, msgType, fields})
}

func (b *fakeBroadcaster) SendToSession(sessionID, msgType string, payload interface{}) {
	b.add(event{"session:" + sessionID, msgType, payload})
}

func (b *fakeBroadcaster) CloseRoom(roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, roomID)
}

func (b *fakeBroadcaster) count(target, msgType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.target == target && e.msgType == msgType {
			n++
		}
	}
	return n
}

type fakeLiveness struct {
	mu       sync.Mutex
	live     map[string]bool
	bindings map[string]Binding
}

func newFakeLiveness() *fakeLiveness {
	return &fakeLiveness{live: map[string]bool{}, bindings: map[string]Binding{}}
}

func (l *fakeLiveness) connect(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.live[sessionID] = true
}

func (l *fakeLiveness) disconnect(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.live, sessionID)
}

func (l *fakeLiveness) IsLive(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live[sessionID]
}

func (l *fakeLiveness) IsPlayerConnected(roomID, playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for sid, b := range l.bindings {
		if l.live[sid] && b.RoomID == roomID && b.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (l *fakeLiveness) Bind(sessionID, roomID, playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings[sessionID] = Binding{RoomID: roomID, PlayerID: playerID}
}

var testConfig = model.GameConfig{
	MaxRooms:         5,
	MaxQueuePlayers:  6,
	TurnTimerSeconds: 30,
	InitialHandSize:  5,
	MaxHandSize:      6,
	MaxHealth:        100,
}

type harness struct {
	ctx         context.Context
	store       *store.Store
	configRepo  repository.ConfigRepo
	roomRepo    repository.RoomRepo
	board       repository.LeaderboardRepo
	broadcaster *fakeBroadcaster
	liveness    *fakeLiveness
	rooms       *RoomService
	games       *GameService
	queue       *QueueService
	conns       *ConnectionService
	auth        *AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st := store.New(store.NewMemoryBackend(), logger)

	qs, err := catalog.DefaultQuestions()
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.New(qs, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}

	h := &harness{
		ctx:         context.Background(),
		store:       st,
		configRepo:  repository.NewConfigRepo(st, testConfig),
		roomRepo:    repository.NewRoomRepo(st),
		board:       repository.NewLeaderboardRepo(st),
		broadcaster: &fakeBroadcaster{},
		liveness:    newFakeLiveness(),
	}
	eng := engine.New(cat, engine.RulesFrom(testConfig))
	lb := NewLeaderboardService(h.board, logger)
	maxPlayers := func(ctx context.Context) int {
		cfg, _ := h.configRepo.Get(ctx)
		return cfg.MaxQueuePlayers
	}

	h.rooms = NewRoomService(h.roomRepo, h.configRepo, eng, lb, logger)
	h.games = NewGameService(h.roomRepo, h.configRepo, eng, lb, logger)
	h.queue = NewQueueService(repository.NewQueueRepo(st, maxPlayers), h.rooms, h.configRepo, rand.New(rand.NewSource(1)), 0, logger)
	h.conns = NewConnectionService(h.queue, h.rooms, h.games, h.liveness, logger)

	h.rooms.SetBroadcaster(h.broadcaster)
	h.games.SetBroadcaster(h.broadcaster)
	h.queue.SetBroadcaster(h.broadcaster)
	h.queue.SetLiveness(h.liveness)

	h.auth, err = NewAuthService("admin", "s3cret", "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// join queues a live session
func (h *harness) join(t *testing.T, name, session string) *JoinResult {
	t.Helper()
	h.liveness.connect(session)
	res, err := h.queue.Join(h.ctx, JoinRequest{Name: name, SessionID: session, Address: "10.0.0.1"})
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return res
}

func (h *harness) room(t *testing.T, id string) *model.Room {
	t.Helper()
	room, err := h.roomRepo.Get(h.ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	return room
}

// activeGame creates a matched room for two fresh players
func (h *harness) activeGame(t *testing.T) *model.Room {
	t.Helper()
	room, err := h.rooms.CreateMatchedRoom(h.ctx,
		model.QueueEntry{PlayerID: "p-red", PlayerName: "alice"},
		model.QueueEntry{PlayerID: "p-blue", PlayerName: "bob"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return room
}
