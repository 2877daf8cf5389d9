package engine

import (
	"cardclash/internal/catalog"
	"cardclash/internal/model"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

// testCards deals cards of one fixed type so hands are predictable
type testCards struct {
	*catalog.Catalog
	randomType string
}

func (c testCards) RandomCard() model.Card {
	card, _ := c.NewCard(c.randomType)
	return card
}

func (c testCards) Hand(n int) []model.Card {
	cards := make([]model.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, c.RandomCard())
	}
	return cards
}

type fixture struct {
	t      *testing.T
	cat    *catalog.Catalog
	engine *Engine
	game   *model.GameState
	red    *model.Player
	blue   *model.Player
	clock  time.Time
	seq    int
}

var testRules = Rules{InitialHandSize: 5, MaxHandSize: 6, MaxHealth: 100, TurnTimerSeconds: 30}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	qs, err := catalog.DefaultQuestions()
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.New(qs, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{t: t, cat: cat, clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	f.engine = New(testCards{Catalog: cat, randomType: catalog.CardHeal}, testRules).
		WithClock(func() time.Time { return f.clock })

	players := []model.Player{
		f.engine.NewPlayer("alice", model.TeamRed),
		f.engine.NewPlayer("bob", model.TeamBlue),
	}
	f.game = f.engine.NewGame("room-1", players, model.GameActive)
	f.red = f.game.PlayerByTeam(model.TeamRed)
	f.blue = f.game.PlayerByTeam(model.TeamBlue)
	return f
}

// give puts a fresh card of the given type into a player's hand
func (f *fixture) give(p *model.Player, cardType string) model.Card {
	f.t.Helper()
	card, err := f.cat.NewCard(cardType)
	if err != nil {
		f.t.Fatal(err)
	}
	p.Cards = append(p.Cards, card)
	return card
}

// giveCustom puts a hand-built plain card into a player's hand
func (f *fixture) giveCustom(p *model.Player, value int) model.Card {
	f.seq++
	card := model.Card{ID: fmt.Sprintf("custom-%d", f.seq), Type: "custom", Name: "Custom", Value: value, CorrectAnswer: "yes"}
	p.Cards = append(p.Cards, card)
	return card
}

func (f *fixture) play(p *model.Player, card model.Card) *Outcome {
	f.t.Helper()
	return f.playChoice(p, card, "")
}

func (f *fixture) playChoice(p *model.Player, card model.Card, choice string) *Outcome {
	f.t.Helper()
	out, err := f.engine.PlayCard(f.game, PlayRequest{PlayerID: p.ID, CardID: card.ID, Answer: card.CorrectAnswer, Choice: choice})
	if err != nil {
		f.t.Fatalf("play %s: %v", card.Type, err)
	}
	return out
}

func (f *fixture) skip(p *model.Player) {
	f.t.Helper()
	if _, err := f.engine.SkipTurn(f.game, p.ID); err != nil {
		f.t.Fatalf("skip: %v", err)
	}
}

func TestNewGame(t *testing.T) {
	f := newFixture(t)
	g := f.game
	if g.CurrentTurn != model.TeamRed || g.TurnNumber != 1 {
		t.Fatalf("expected red to open on turn 1, got %s/%d", g.CurrentTurn, g.TurnNumber)
	}
	for _, p := range g.Players {
		if p.Health != 100 || p.MaxHealth != 100 {
			t.Errorf("%s: unexpected health %d/%d", p.Name, p.Health, p.MaxHealth)
		}
		if len(p.Cards) != testRules.InitialHandSize {
			t.Errorf("%s: expected %d cards, got %d", p.Name, testRules.InitialHandSize, len(p.Cards))
		}
	}
}

func TestTurnAlternation(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 20; i++ {
		before := f.game.CurrentTurn
		turn := f.game.TurnNumber
		p := f.game.PlayerByTeam(before)

		var err error
		if len(p.Cards) >= testRules.MaxHandSize {
			card := p.Cards[0]
			_, err = f.engine.PlayCard(f.game, PlayRequest{PlayerID: p.ID, CardID: card.ID, Answer: card.CorrectAnswer})
		} else {
			_, err = f.engine.DrawCard(f.game, p.ID, "")
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if f.game.CurrentTurn != before.Opponent() {
			t.Fatalf("step %d: turn did not flip from %s", i, before)
		}
		if f.game.TurnNumber != turn+1 {
			t.Fatalf("step %d: turn number %d -> %d", i, turn, f.game.TurnNumber)
		}
	}
}

func TestPlayCardRejections(t *testing.T) {
	f := newFixture(t)
	redCard := f.red.Cards[0]
	blueCard := f.blue.Cards[0]

	tests := []struct {
		name string
		req  PlayRequest
		want error
	}{
		{"unknown player", PlayRequest{PlayerID: "ghost", CardID: redCard.ID, Answer: redCard.CorrectAnswer}, ErrPlayerNotFound},
		{"not your turn", PlayRequest{PlayerID: f.blue.ID, CardID: blueCard.ID, Answer: blueCard.CorrectAnswer}, ErrNotYourTurn},
		{"card not in hand", PlayRequest{PlayerID: f.red.ID, CardID: blueCard.ID, Answer: blueCard.CorrectAnswer}, ErrCardNotFound},
		{"bad choice", PlayRequest{PlayerID: f.red.ID, CardID: redCard.ID, Answer: redCard.CorrectAnswer, Choice: "explode"}, ErrInvalidChoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.PlayCard(f.game, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if f.game.TurnNumber != 1 || len(f.game.History) != 0 {
				t.Fatal("rejected play mutated the game")
			}
		})
	}

	f.game.Status = model.GamePaused
	if _, err := f.engine.PlayCard(f.game, PlayRequest{PlayerID: f.red.ID, CardID: redCard.ID, Answer: redCard.CorrectAnswer}); !errors.Is(err, ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive on paused game, got %v", err)
	}
}

func TestWrongAnswerIsNoop(t *testing.T) {
	f := newFixture(t)
	card := f.give(f.red, catalog.CardStrike)
	handBefore := len(f.red.Cards)

	for i := 1; i <= 2; i++ {
		out, err := f.engine.PlayCard(f.game, PlayRequest{PlayerID: f.red.ID, CardID: card.ID, Answer: "definitely wrong"})
		if !errors.Is(err, ErrWrongAnswer) {
			t.Fatalf("attempt %d: expected ErrWrongAnswer, got %v", i, err)
		}
		if out.Attempts != i {
			t.Fatalf("attempt %d: counter reads %d", i, out.Attempts)
		}
		if len(f.red.Cards) != handBefore || f.blue.Health != 100 || f.red.Health != 100 {
			t.Fatal("wrong answer changed hand or health")
		}
		if f.game.CurrentTurn != model.TeamRed || f.game.TurnNumber != 1 || len(f.game.History) != 0 {
			t.Fatal("wrong answer changed turn state")
		}
	}

	out := f.play(f.red, card)
	if out.Action.QuestionPoints != RetryPoints {
		t.Fatalf("expected retry points %d, got %d", RetryPoints, out.Action.QuestionPoints)
	}
	if _, ok := f.game.Attempts[card.ID]; ok {
		t.Fatal("attempt counter should be cleared once the card is played")
	}
}

func TestAnswerIsTrimmedAndCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	card := model.Card{ID: "c1", Type: "custom", Value: -5, CorrectAnswer: "Paris"}
	f.red.Cards = append(f.red.Cards, card)
	if _, err := f.engine.PlayCard(f.game, PlayRequest{PlayerID: f.red.ID, CardID: "c1", Answer: "  pARIS "}); err != nil {
		t.Fatalf("expected lenient match, got %v", err)
	}
}

func TestScoringAndAnswerTime(t *testing.T) {
	f := newFixture(t)
	card := f.give(f.red, catalog.CardStrike)
	f.clock = f.clock.Add(7 * time.Second)
	out := f.play(f.red, card)
	if out.Action.QuestionPoints != FirstTryPoints {
		t.Fatalf("expected %d points, got %d", FirstTryPoints, out.Action.QuestionPoints)
	}
	if out.Action.AnswerTime != 7 {
		t.Fatalf("expected 7s answer time, got %v", out.Action.AnswerTime)
	}
	if out.Action.Damage != 20 {
		t.Fatalf("expected 20 damage recorded, got %d", out.Action.Damage)
	}
	if !f.game.CurrentTurnStartTime.Equal(f.clock) {
		t.Fatal("turn start time should reset on advance")
	}
}

func TestHealthBounds(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		redHealth int
		wantRed   int
		wantBlue  int
	}{
		{"heal at full health", 50, 100, 100, 100},
		{"heal clamps to max", 500, 10, 100, 100},
		{"damage clamps to zero", -500, 100, 100, 0},
		{"plain damage", -20, 100, 100, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.red.Health = tt.redHealth
			card := f.giveCustom(f.red, tt.value)
			f.play(f.red, card)
			if f.red.Health != tt.wantRed || f.blue.Health != tt.wantBlue {
				t.Fatalf("got red=%d blue=%d, want red=%d blue=%d", f.red.Health, f.blue.Health, tt.wantRed, tt.wantBlue)
			}
			for _, p := range f.game.Players {
				if p.Health < 0 || p.Health > p.MaxHealth {
					t.Fatalf("%s health out of bounds: %d", p.Name, p.Health)
				}
			}
		})
	}
}

func TestWinDetection(t *testing.T) {
	f := newFixture(t)
	f.blue.Health = 20
	card := f.give(f.red, catalog.CardStrike)
	out := f.play(f.red, card)

	if !out.Ended || out.Winner != model.TeamRed {
		t.Fatalf("expected red win, got ended=%v winner=%s", out.Ended, out.Winner)
	}
	if f.game.Status != model.GameFinished || f.game.Winner != model.TeamRed || f.game.EndTime == nil {
		t.Fatalf("game not finished correctly: %+v", f.game.Status)
	}
	if f.game.TurnNumber != 1 {
		t.Fatal("turn must not advance once the game ends")
	}
	if len(out.Results) != 2 {
		t.Fatalf("expected one result per player, got %d", len(out.Results))
	}
	for _, r := range out.Results {
		switch r.Team {
		case model.TeamRed:
			if !r.Won || r.QuestionPoints != FirstTryPoints || r.DamageDealt != 20 || r.CorrectCount != 1 {
				t.Errorf("unexpected red result %+v", r)
			}
		case model.TeamBlue:
			if r.Won || r.DamageDealt != 0 {
				t.Errorf("unexpected blue result %+v", r)
			}
		}
	}
	if f.red.Score != FirstTryPoints {
		t.Fatalf("expected red score %d, got %d", FirstTryPoints, f.red.Score)
	}
	if _, err := f.engine.SkipTurn(f.game, f.blue.ID); !errors.Is(err, ErrGameNotActive) {
		t.Fatalf("finished game must reject actions, got %v", err)
	}
}

func TestReflectCanDefeatAttacker(t *testing.T) {
	f := newFixture(t)
	f.red.Health = 5
	f.game.PassiveEffects = append(f.game.PassiveEffects, reflectEffect(f.blue, "test"))
	card := f.give(f.red, catalog.CardStrike)
	out := f.play(f.red, card)
	if !out.Ended || out.Winner != model.TeamBlue {
		t.Fatalf("expected blue to win by reflect, got ended=%v winner=%s", out.Ended, out.Winner)
	}
	if f.blue.Health != 80 || f.red.Health != 0 {
		t.Fatalf("got red=%d blue=%d", f.red.Health, f.blue.Health)
	}
}

func TestRevivePrecedence(t *testing.T) {
	f := newFixture(t)
	phoenix := f.give(f.blue, catalog.CardPhoenix)
	f.skip(f.red)
	f.play(f.blue, phoenix)
	if n := len(f.game.EffectsFor(f.blue.ID, model.EffectRevive)); n != 1 {
		t.Fatalf("expected one revive effect, got %d", n)
	}

	f.blue.Health = 10
	strike := f.give(f.red, catalog.CardStrike)
	out := f.play(f.red, strike)
	if out.Ended {
		t.Fatal("revive must prevent the game from ending")
	}
	if f.blue.Health != catalog.PhoenixHealth {
		t.Fatalf("expected revive to %d HP, got %d", catalog.PhoenixHealth, f.blue.Health)
	}
	if len(out.Revived) != 1 || out.Revived[0] != f.blue.ID {
		t.Fatalf("unexpected revived list %v", out.Revived)
	}
	if n := len(f.game.EffectsFor(f.blue.ID, model.EffectRevive)); n != 0 {
		t.Fatal("revive effect must be consumed")
	}

	f.skip(f.blue)
	f.blue.Health = 10
	strike = f.give(f.red, catalog.CardStrike)
	out = f.play(f.red, strike)
	if !out.Ended || out.Winner != model.TeamRed {
		t.Fatal("second lethal hit must end the game")
	}
}

func TestEffectDecay(t *testing.T) {
	for _, d := range []int{1, 2, 3, 5} {
		f := newFixture(t)
		e := newEffect(f.red, model.EffectWeaken, d, "test")
		e.Weaken = &model.WeakenPayload{Bonus: 1}
		f.game.PassiveEffects = append(f.game.PassiveEffects, e)

		for i := 1; i <= d; i++ {
			f.skip(f.game.PlayerByTeam(f.game.CurrentTurn))
			present := len(f.game.EffectsFor(f.red.ID, model.EffectWeaken)) == 1
			if i < d && !present {
				t.Fatalf("duration %d: pruned early after %d advances", d, i)
			}
			if i == d && present {
				t.Fatalf("duration %d: still present after %d advances", d, i)
			}
		}
	}

	f := newFixture(t)
	f.game.PassiveEffects = append(f.game.PassiveEffects, reviveEffect(f.red, "test"))
	for i := 0; i < 50; i++ {
		f.skip(f.game.PlayerByTeam(f.game.CurrentTurn))
	}
	if len(f.game.EffectsFor(f.red.ID, model.EffectRevive)) != 1 {
		t.Fatal("permanent effect must survive")
	}
}

func TestRegenHealsEachAdvance(t *testing.T) {
	f := newFixture(t)
	f.red.Health = 50
	card := f.give(f.red, catalog.CardRegen)
	f.play(f.red, card)
	// 5 from the card plus one tick on the advance
	if f.red.Health != 60 {
		t.Fatalf("expected 60 after first tick, got %d", f.red.Health)
	}
	f.skip(f.blue)
	f.skip(f.red)
	if f.red.Health != 70 {
		t.Fatalf("expected 70 after three ticks, got %d", f.red.Health)
	}
	f.skip(f.blue)
	if f.red.Health != 70 {
		t.Fatalf("regen should have expired, got %d", f.red.Health)
	}
}

func TestDamagePipeline(t *testing.T) {
	t.Run("weaken adds bonus and stacks", func(t *testing.T) {
		f := newFixture(t)
		f.game.PassiveEffects = append(f.game.PassiveEffects, weakenEffect(f.blue, "a"), weakenEffect(f.blue, "b"))
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		if f.blue.Health != 70 {
			t.Fatalf("expected 100-20-5-5=70, got %d", f.blue.Health)
		}
	})

	t.Run("shield blocks first hit then halves", func(t *testing.T) {
		f := newFixture(t)
		f.game.PassiveEffects = append(f.game.PassiveEffects, immunityEffect(f.blue, "shield"))
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		if f.blue.Health != 100 {
			t.Fatalf("first hit should be blocked, got %d", f.blue.Health)
		}
		f.skip(f.blue)
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		if f.blue.Health != 90 {
			t.Fatalf("second hit should be halved, got %d", f.blue.Health)
		}
	})

	t.Run("mirror reflects half to the attacker", func(t *testing.T) {
		f := newFixture(t)
		f.game.PassiveEffects = append(f.game.PassiveEffects, reflectEffect(f.blue, "mirror"))
		f.play(f.red, f.give(f.red, catalog.CardFireball))
		if f.blue.Health != 70 || f.red.Health != 85 {
			t.Fatalf("got red=%d blue=%d", f.red.Health, f.blue.Health)
		}
	})

	t.Run("blocked hit is not reflected", func(t *testing.T) {
		f := newFixture(t)
		f.game.PassiveEffects = append(f.game.PassiveEffects, immunityEffect(f.blue, "shield"), reflectEffect(f.blue, "mirror"))
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		if f.blue.Health != 100 || f.red.Health != 100 {
			t.Fatalf("got red=%d blue=%d", f.red.Health, f.blue.Health)
		}
	})

	t.Run("weaken then shield reduction then reflect", func(t *testing.T) {
		f := newFixture(t)
		shield := immunityEffect(f.blue, "shield")
		shield.Immunity.Consumed = true
		f.game.PassiveEffects = append(f.game.PassiveEffects, weakenEffect(f.blue, "hex"), shield, reflectEffect(f.blue, "mirror"))
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		// (20+5) halved to 12, 6 reflected
		if f.blue.Health != 88 || f.red.Health != 94 {
			t.Fatalf("got red=%d blue=%d", f.red.Health, f.blue.Health)
		}
	})
}

func TestPassiveCards(t *testing.T) {
	t.Run("hex damages and weakens", func(t *testing.T) {
		f := newFixture(t)
		f.play(f.red, f.give(f.red, catalog.CardHex))
		if f.blue.Health != 90 {
			t.Fatalf("expected 90, got %d", f.blue.Health)
		}
		f.skip(f.blue)
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		if f.blue.Health != 65 {
			t.Fatalf("expected weakened strike to land for 25, got %d", f.blue.Health)
		}
	})

	t.Run("last stand bonus below threshold", func(t *testing.T) {
		f := newFixture(t)
		f.red.Health = 30
		f.play(f.red, f.give(f.red, catalog.CardLastStand))
		if f.blue.Health != 70 {
			t.Fatalf("expected 30 damage, got %d", 100-f.blue.Health)
		}
	})

	t.Run("last stand without bonus", func(t *testing.T) {
		f := newFixture(t)
		f.play(f.red, f.give(f.red, catalog.CardLastStand))
		if f.blue.Health != 85 {
			t.Fatalf("expected 15 damage, got %d", 100-f.blue.Health)
		}
	})

	t.Run("second wind bonus below threshold", func(t *testing.T) {
		f := newFixture(t)
		f.red.Health = 40
		f.play(f.red, f.give(f.red, catalog.CardSecondWind))
		if f.red.Health != 65 {
			t.Fatalf("expected 65, got %d", f.red.Health)
		}
	})

	t.Run("scholar draws without using the turn draw", func(t *testing.T) {
		f := newFixture(t)
		f.red.Cards = f.red.Cards[:2]
		card := f.give(f.red, catalog.CardScholar)
		before := len(f.red.Cards)
		out := f.play(f.red, card)
		// -1 played, +1 scholar, +1 auto-draw
		if len(f.red.Cards) != before+1 || len(out.Drawn) != 2 {
			t.Fatalf("hand %d -> %d, drawn %d", before, len(f.red.Cards), len(out.Drawn))
		}
	})

	t.Run("echo repeats the last non-echo card", func(t *testing.T) {
		f := newFixture(t)
		f.play(f.red, f.give(f.red, catalog.CardStrike))
		f.play(f.blue, f.give(f.blue, catalog.CardEcho))
		if f.red.Health != 80 || f.blue.Health != 80 {
			t.Fatalf("got red=%d blue=%d", f.red.Health, f.blue.Health)
		}
	})

	t.Run("echo with empty history fizzles", func(t *testing.T) {
		f := newFixture(t)
		out := f.play(f.red, f.give(f.red, catalog.CardEcho))
		if out.Action.Effect != "nothing to echo" {
			t.Fatalf("unexpected effect %q", out.Action.Effect)
		}
	})

	t.Run("spyglass reveals redacted hand", func(t *testing.T) {
		f := newFixture(t)
		out := f.play(f.red, f.give(f.red, catalog.CardSpyglass))
		if len(out.RevealOpponent) != len(f.blue.Cards) {
			t.Fatalf("expected %d revealed, got %d", len(f.blue.Cards), len(out.RevealOpponent))
		}
		for _, c := range out.RevealOpponent {
			if c.CorrectAnswer != "" {
				t.Fatal("revealed card leaks its answer")
			}
		}
	})

	choices := []struct {
		choice   string
		wantRed  int
		wantBlue int
	}{
		{"", 70, 100},
		{ChoiceHeal, 70, 100},
		{ChoiceStrike, 50, 80},
		{ChoiceDraw, 50, 100},
	}
	for _, tt := range choices {
		t.Run("gamble "+tt.choice, func(t *testing.T) {
			f := newFixture(t)
			f.red.Health = 50
			f.playChoice(f.red, f.give(f.red, catalog.CardGamble), tt.choice)
			if f.red.Health != tt.wantRed || f.blue.Health != tt.wantBlue {
				t.Fatalf("got red=%d blue=%d", f.red.Health, f.blue.Health)
			}
		})
	}
}

func TestAutoDrawOncePerTurn(t *testing.T) {
	f := newFixture(t)
	card := f.give(f.red, catalog.CardStrike)
	before := len(f.red.Cards)
	out := f.play(f.red, card)
	if len(out.Drawn) != 1 || len(f.red.Cards) != before {
		t.Fatalf("expected one auto-draw to refill the hand, drawn=%d hand=%d", len(out.Drawn), len(f.red.Cards))
	}
	last := f.game.History[len(f.game.History)-1]
	if last.Action != model.ActionAutoDraw {
		t.Fatalf("expected auto-draw history entry, got %s", last.Action)
	}

	f.skip(f.blue)
	f.red.HasDrawnCardThisTurn = true
	before = len(f.red.Cards)
	out = f.play(f.red, f.red.Cards[0])
	if len(out.Drawn) != 0 || len(f.red.Cards) != before-1 {
		t.Fatalf("no auto-draw once the player already drew, drawn=%d", len(out.Drawn))
	}
}

func TestDrawCard(t *testing.T) {
	f := newFixture(t)
	out, err := f.engine.DrawCard(f.game, f.red.ID, catalog.CardFireball)
	if err != nil {
		t.Fatal(err)
	}
	if out.Drawn[0].Type != catalog.CardFireball || len(f.red.Cards) != 6 {
		t.Fatalf("unexpected draw %+v", out.Drawn)
	}
	if f.game.CurrentTurn != model.TeamBlue {
		t.Fatal("draw must end the turn")
	}

	if _, err := f.engine.DrawCard(f.game, f.red.ID, ""); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := f.engine.DrawCard(f.game, f.blue.ID, "nope"); !errors.Is(err, ErrUnknownCardType) {
		t.Fatalf("expected ErrUnknownCardType, got %v", err)
	}
	f.give(f.blue, catalog.CardHeal)
	if _, err := f.engine.DrawCard(f.game, f.blue.ID, ""); !errors.Is(err, ErrHandFull) {
		t.Fatalf("expected ErrHandFull, got %v", err)
	}
}

func TestPauseResume(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.Pause(f.game, f.blue.ID); err != nil {
		t.Fatal(err)
	}
	if f.game.Status != model.GamePaused || f.game.PausedByPlayerID != f.blue.ID || f.game.PausedAt == nil {
		t.Fatal("pause did not record who paused")
	}
	if err := f.engine.Resume(f.game, f.red.ID); !errors.Is(err, ErrNotPauser) {
		t.Fatalf("expected ErrNotPauser, got %v", err)
	}
	if err := f.engine.Resume(f.game, f.blue.ID); err != nil {
		t.Fatal(err)
	}
	if f.game.Status != model.GameActive || f.game.CurrentTurn != model.TeamRed || f.game.TurnNumber != 1 {
		t.Fatal("resume must restore the game without touching the turn")
	}
	if err := f.engine.Resume(f.game, f.blue.ID); !errors.Is(err, ErrGameNotPaused) {
		t.Fatalf("expected ErrGameNotPaused, got %v", err)
	}
}

func TestForfeit(t *testing.T) {
	f := newFixture(t)
	out, err := f.engine.Forfeit(f.game, f.red.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Ended || out.Winner != model.TeamBlue || f.game.Status != model.GameFinished {
		t.Fatal("forfeit must hand the win to the opponent")
	}
	if _, err := f.engine.Forfeit(f.game, f.red.ID); !errors.Is(err, ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive, got %v", err)
	}
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)

	f.play(f.red, f.give(f.red, catalog.CardStrike))
	if f.blue.Health != 80 {
		t.Fatalf("expected 80, got %d", f.blue.Health)
	}
	plays := 0
	for _, a := range f.game.History {
		if a.Action == model.ActionPlay {
			plays++
		}
	}
	if plays != 1 {
		t.Fatalf("expected one play entry, got %d", plays)
	}
	if f.game.CurrentTurn != model.TeamBlue || f.game.TurnNumber != 2 {
		t.Fatalf("expected blue on turn 2, got %s/%d", f.game.CurrentTurn, f.game.TurnNumber)
	}

	for i := 0; i < 3; i++ {
		f.skip(f.blue)
		f.play(f.red, f.give(f.red, catalog.CardStrike))
	}
	if f.blue.Health != 20 {
		t.Fatalf("expected 20 after four hits, got %d", f.blue.Health)
	}

	f.skip(f.blue)
	out := f.play(f.red, f.giveCustom(f.red, -25))
	if !out.Ended || f.game.Winner != model.TeamRed || f.game.Status != model.GameFinished {
		t.Fatal("fifth hit must end the game with red as winner")
	}
}
