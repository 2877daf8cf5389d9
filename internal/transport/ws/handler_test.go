package ws

import (
	"cardclash/internal/catalog"
	"cardclash/internal/engine"
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"cardclash/internal/service"
	"cardclash/internal/store"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

type gateway struct {
	url   string
	queue *service.QueueService
	auth  *service.AuthService
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st := store.New(store.NewMemoryBackend(), logger)
	qs, err := catalog.DefaultQuestions()
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.New(qs, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	cfg := model.GameConfig{MaxRooms: 4, MaxQueuePlayers: 4, TurnTimerSeconds: 30, InitialHandSize: 5, MaxHandSize: 6, MaxHealth: 100}
	configRepo := repository.NewConfigRepo(st, cfg)
	roomRepo := repository.NewRoomRepo(st)
	eng := engine.New(cat, engine.RulesFrom(cfg))
	lb := service.NewLeaderboardService(repository.NewLeaderboardRepo(st), logger)

	hub := NewHub(logger)
	t.Cleanup(hub.Close)

	rooms := service.NewRoomService(roomRepo, configRepo, eng, lb, logger)
	games := service.NewGameService(roomRepo, configRepo, eng, lb, logger)
	maxPlayers := func(ctx context.Context) int { return cfg.MaxQueuePlayers }
	queue := service.NewQueueService(repository.NewQueueRepo(st, maxPlayers), rooms, configRepo, rand.New(rand.NewSource(1)), 0, logger)
	for _, s := range []interface{ SetBroadcaster(service.Broadcaster) }{rooms, games, queue} {
		s.SetBroadcaster(hub)
	}
	queue.SetLiveness(hub)
	auth, err := service.NewAuthService("admin", "pw", "secret")
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(hub, Services{
		Queue:       queue,
		Rooms:       rooms,
		Games:       games,
		Connections: service.NewConnectionService(queue, rooms, games, hub, logger),
		Auth:        auth,
	}, []string{"*"}, 10*time.Millisecond, logger)

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)
	return &gateway{url: "ws" + strings.TrimPrefix(srv.URL, "http"), queue: queue, auth: auth}
}

func (g *gateway) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(g.url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteJSON(Message{Type: msgType, Payload: data}); err != nil {
		t.Fatal(err)
	}
}

// await reads until a message of the given type arrives
func await(t *testing.T, c *websocket.Conn, msgType string) json.RawMessage {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg Message
		if err := c.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg.Payload
		}
	}
}

func awaitError(t *testing.T, c *websocket.Conn) string {
	t.Helper()
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(await(t, c, service.EventError), &e); err != nil {
		t.Fatal(err)
	}
	return e.Message
}

func TestGatewayQueueFlow(t *testing.T) {
	g := newGateway(t)
	alice := g.dial(t)
	bob := g.dial(t)

	send(t, alice, MsgJoinQueue, joinQueueRequest{PlayerName: "alice"})
	await(t, alice, service.EventQueueUpdate)
	send(t, bob, MsgJoinQueue, joinQueueRequest{PlayerName: "bob"})

	for {
		var snap model.QueueSnapshot
		if err := json.Unmarshal(await(t, bob, service.EventQueueUpdate), &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Count == 2 {
			break
		}
	}

	send(t, alice, MsgAdminStartMatching, adminRequest{Token: "forged"})
	if msg := awaitError(t, alice); msg != errUnauthorized.Error() {
		t.Fatalf("unexpected error %q", msg)
	}

	login, err := g.auth.Login("admin", "pw")
	if err != nil {
		t.Fatal(err)
	}
	send(t, alice, MsgAdminStartMatching, adminRequest{Token: login.Token})

	var matched struct {
		RoomID   string `json:"roomId"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(await(t, bob, service.EventMatched), &matched); err != nil {
		t.Fatal(err)
	}
	if matched.RoomID == "" || matched.PlayerID == "" {
		t.Fatalf("incomplete matched event %+v", matched)
	}

	send(t, bob, MsgRequestGameState, roomRequest{RoomID: matched.RoomID, PlayerID: matched.PlayerID})
	var state struct {
		GameState model.GameState `json:"gameState"`
	}
	if err := json.Unmarshal(await(t, bob, service.EventGameUpdate), &state); err != nil {
		t.Fatal(err)
	}
	if state.GameState.Status != model.GameActive {
		t.Fatalf("matched games start active, got %s", state.GameState.Status)
	}
	for _, p := range state.GameState.Players {
		for _, c := range p.Cards {
			if c.CorrectAnswer != "" {
				t.Fatal("answers must never reach clients")
			}
		}
	}
}

func TestGatewayReportsErrors(t *testing.T) {
	g := newGateway(t)
	c := g.dial(t)

	tests := []struct {
		name    string
		msgType string
		payload interface{}
		want    string
	}{
		{"unknown event", "dance", nil, errUnknownEvent.Error()},
		{"malformed payload", MsgPlayCard, "not an object", errBadPayload.Error()},
		{"validation", MsgJoinQueue, joinQueueRequest{PlayerName: ""}, service.ErrInvalidName.Error()},
		{"not found", MsgSkipTurn, roomRequest{RoomID: "nope", PlayerID: "p"}, service.ErrRoomNotFound.Error()},
		{"leave absent", MsgLeaveQueue, leaveQueueRequest{PlayerName: "nobody"}, service.ErrEntryNotFound.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, c, tt.msgType, tt.payload)
			if got := awaitError(t, c); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGatewayDisconnectLeavesQueue(t *testing.T) {
	g := newGateway(t)
	c := g.dial(t)
	send(t, c, MsgJoinQueue, joinQueueRequest{PlayerName: "alice"})
	await(t, c, service.EventQueueUpdate)
	c.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := g.queue.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if snap.Count == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("queue entry survived the grace period")
}

func TestClientAddress(t *testing.T) {
	tests := []struct {
		name   string
		header string
		remote string
		want   string
	}{
		{"forwarded", "203.0.113.7, 10.0.0.1", "10.0.0.1:5000", "203.0.113.7"},
		{"remote", "", "192.168.1.4:5000", "192.168.1.4"},
		{"bare remote", "", "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
			r.RemoteAddr = tt.remote
			if tt.header != "" {
				r.Header.Set("X-Forwarded-For", tt.header)
			}
			if got := clientAddress(r); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
