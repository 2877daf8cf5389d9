package service

import (
	"cardclash/internal/catalog"
	"cardclash/internal/engine"
	"cardclash/internal/model"
	"errors"
	"testing"
)

// rig replaces the mover's hand and the opponent's health in storage
func (h *harness) rig(t *testing.T, roomID string, hand []model.Card, opponentHealth int) {
	t.Helper()
	_, err := h.roomRepo.Update(h.ctx, roomID, func(r *model.Room) (*model.Room, error) {
		g := r.GameState
		mover := g.PlayerByTeam(g.CurrentTurn)
		mover.Cards = hand
		if opponentHealth > 0 {
			g.Opponent(mover.ID).Health = opponentHealth
		}
		r.Players = append([]model.Player(nil), g.Players...)
		return r, nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func strikeCard(id string) model.Card {
	return model.Card{ID: id, Type: catalog.CardStrike, Name: "Strike", Value: -20, Question: "6 x 7?", CorrectAnswer: "42"}
}

func TestPlayCardWrongAnswerPersistsAttempts(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)
	h.rig(t, room.ID, []model.Card{strikeCard("c1")}, 0)

	out, err := h.games.PlayCard(h.ctx, room.ID, engine.PlayRequest{PlayerID: "p-red", CardID: "c1", Answer: "41"})
	if !errors.Is(err, engine.ErrWrongAnswer) {
		t.Fatalf("expected ErrWrongAnswer, got %v", err)
	}
	if out == nil || out.Attempts != 1 {
		t.Fatalf("expected one attempt, got %+v", out)
	}
	if got := h.room(t, room.ID).GameState; got.Attempts["c1"] != 1 || got.CurrentTurn != model.TeamRed {
		t.Fatal("a wrong answer is stored and keeps the turn")
	}

	out, err = h.games.PlayCard(h.ctx, room.ID, engine.PlayRequest{PlayerID: "p-red", CardID: "c1", Answer: " 42 "})
	if err != nil {
		t.Fatal(err)
	}
	if out.Action.QuestionPoints != engine.RetryPoints {
		t.Fatalf("expected retry points, got %d", out.Action.QuestionPoints)
	}
	g := h.room(t, room.ID).GameState
	if g.CurrentTurn != model.TeamBlue || g.PlayerByID("p-blue").Health != testConfig.MaxHealth-20 {
		t.Fatal("a correct answer resolves the card and passes the turn")
	}
	if _, ok := g.Attempts["c1"]; ok {
		t.Fatal("attempts are cleared once the card is played")
	}
	if h.broadcaster.count("room:"+room.ID, EventTurnChanged) != 1 {
		t.Fatal("expected a turn-changed event")
	}
}

func TestPlayCardRejectsOutOfTurn(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)
	blue := h.room(t, room.ID).GameState.PlayerByID("p-blue")

	_, err := h.games.PlayCard(h.ctx, room.ID, engine.PlayRequest{PlayerID: "p-blue", CardID: blue.Cards[0].ID, Answer: blue.Cards[0].CorrectAnswer})
	if !errors.Is(err, engine.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := h.games.PlayCard(h.ctx, "missing", engine.PlayRequest{PlayerID: "p-red"}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestKnockoutEndsGame(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)
	h.rig(t, room.ID, []model.Card{strikeCard("c1")}, 10)

	out, err := h.games.PlayCard(h.ctx, room.ID, engine.PlayRequest{PlayerID: "p-red", CardID: "c1", Answer: "42"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Ended || out.Winner != model.TeamRed {
		t.Fatalf("expected red to win, got %+v", out)
	}

	got := h.room(t, room.ID)
	if got.Status != model.RoomFinished || got.GameState.Status != model.GameFinished {
		t.Fatal("room and game are finished")
	}
	if h.broadcaster.count("room:"+room.ID, EventGameEnded) != 1 {
		t.Fatal("expected one game-ended event")
	}
	top, _ := h.board.Top(h.ctx, 10)
	if len(top) != 2 || top[0].PlayerName != "alice" || top[0].Score != engine.FirstTryPoints {
		t.Fatalf("unexpected leaderboard %+v", top)
	}

	if _, err := h.games.SkipTurn(h.ctx, room.ID, "p-blue"); !errors.Is(err, engine.ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive, got %v", err)
	}
}

func TestDrawAndSkip(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)

	out, err := h.games.DrawCard(h.ctx, room.ID, "p-red", catalog.CardShield)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Drawn) != 1 || out.Drawn[0].Type != catalog.CardShield {
		t.Fatalf("expected a shield, got %+v", out.Drawn)
	}
	if _, err := h.games.SkipTurn(h.ctx, room.ID, "p-blue"); err != nil {
		t.Fatal(err)
	}
	g := h.room(t, room.ID).GameState
	if g.CurrentTurn != model.TeamRed || g.TurnNumber != 3 {
		t.Fatalf("expected red on turn 3, got %s on %d", g.CurrentTurn, g.TurnNumber)
	}
	if len(g.PlayerByID("p-red").Cards) != testConfig.InitialHandSize+1 {
		t.Fatal("the drawn card is kept")
	}
}

func TestGetStateHidesOpponentHand(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)

	view, err := h.games.GetState(h.ctx, room.ID, "p-red")
	if err != nil {
		t.Fatal(err)
	}
	me := view.GameState.PlayerByID("p-red")
	them := view.GameState.PlayerByID("p-blue")
	if len(me.Cards) != testConfig.InitialHandSize || me.Cards[0].CorrectAnswer != "" {
		t.Fatal("own hand is visible without answers")
	}
	if them.Cards != nil || them.HandSize != testConfig.InitialHandSize {
		t.Fatalf("opponent hand must be a count, got %d cards / size %d", len(them.Cards), them.HandSize)
	}

	if _, err := h.games.GetState(h.ctx, room.ID, "stranger"); !errors.Is(err, ErrPlayerNotInRoom) {
		t.Fatalf("expected ErrPlayerNotInRoom, got %v", err)
	}
}

func TestDisconnectPausesAndStateResumes(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)
	h.liveness.connect("s-blue")
	h.liveness.Bind("s-blue", room.ID, "p-blue")
	h.liveness.Bind("s-red", room.ID, "p-red")

	h.conns.HandleDisconnect(h.ctx, "s-red", Binding{RoomID: room.ID, PlayerID: "p-red"})

	g := h.room(t, room.ID).GameState
	if g.Status != model.GamePaused || g.PausedByPlayerID != "p-red" {
		t.Fatalf("expected pause by red, got %s/%s", g.Status, g.PausedByPlayerID)
	}
	if h.broadcaster.count("room:"+room.ID, EventGamePaused) != 1 {
		t.Fatal("expected a game-paused event")
	}
	if _, err := h.games.SkipTurn(h.ctx, room.ID, "p-red"); !errors.Is(err, engine.ErrGameNotActive) {
		t.Fatalf("paused games reject moves, got %v", err)
	}

	view, err := h.games.GetState(h.ctx, room.ID, "p-blue")
	if err != nil {
		t.Fatal(err)
	}
	if view.Resumed || view.GameState.Status != model.GamePaused {
		t.Fatal("only the pauser resumes the game")
	}

	view, err = h.games.GetState(h.ctx, room.ID, "p-red")
	if err != nil {
		t.Fatal(err)
	}
	if !view.Resumed || view.GameState.Status != model.GameActive {
		t.Fatal("the pauser's state request resumes the game")
	}
	if h.broadcaster.count("room:"+room.ID, EventGameResumed) != 1 {
		t.Fatal("expected a game-resumed event")
	}
}

func TestDisconnectIgnoredWhenSeatReconnected(t *testing.T) {
	h := newHarness(t)
	room := h.activeGame(t)
	h.liveness.connect("s-red-2")
	h.liveness.Bind("s-red-2", room.ID, "p-red")

	h.conns.HandleDisconnect(h.ctx, "s-red", Binding{RoomID: room.ID, PlayerID: "p-red"})

	if g := h.room(t, room.ID).GameState; g.Status != model.GameActive {
		t.Fatalf("game must keep running, got %s", g.Status)
	}
}

func TestDisconnectDropsQueueEntry(t *testing.T) {
	h := newHarness(t)
	h.join(t, "alice", "s1")
	h.join(t, "bob", "s2")
	h.liveness.disconnect("s1")

	h.conns.HandleDisconnect(h.ctx, "s1", Binding{})

	snap, _ := h.queue.Snapshot(h.ctx)
	if snap.Count != 1 || snap.Players[0].PlayerName != "bob" {
		t.Fatalf("expected only bob queued, got %+v", snap.Players)
	}
}

func TestDisconnectLeavesWaitingRoom(t *testing.T) {
	h := newHarness(t)
	room, _ := h.rooms.CreateRoom(h.ctx, "den")
	_, alice, _ := h.rooms.JoinRoom(h.ctx, room.ID, "alice")

	h.conns.HandleDisconnect(h.ctx, "s1", Binding{RoomID: room.ID, PlayerID: alice.ID})

	if _, err := h.rooms.GetRoom(h.ctx, room.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected the emptied room to be deleted, got %v", err)
	}
}
