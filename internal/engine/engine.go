package engine

import (
	"cardclash/internal/model"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CardSource mints card instances
type CardSource interface {
	NewCard(cardType string) (model.Card, error)
	RandomCard() model.Card
	Hand(n int) []model.Card
}

// Rules are the per-game limits taken from the game config
type Rules struct {
	InitialHandSize  int
	MaxHandSize      int
	MaxHealth        int
	TurnTimerSeconds int
}

// RulesFrom converts the stored game config
func RulesFrom(cfg model.GameConfig) Rules {
	return Rules{
		InitialHandSize:  cfg.InitialHandSize,
		MaxHandSize:      cfg.MaxHandSize,
		MaxHealth:        cfg.MaxHealth,
		TurnTimerSeconds: cfg.TurnTimerSeconds,
	}
}

// Engine applies game rules to a GameState. It never touches storage; the
// caller persists the mutated state.
type Engine struct {
	cards CardSource
	rules Rules
	now   func() time.Time
}

func New(cards CardSource, rules Rules) *Engine {
	return &Engine{cards: cards, rules: rules, now: time.Now}
}

// WithRules returns a copy of the engine using different limits
func (e *Engine) WithRules(rules Rules) *Engine {
	cp := *e
	cp.rules = rules
	return &cp
}

// WithClock returns a copy of the engine reading time from now
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// PlayRequest is one attempt to answer and play a card
type PlayRequest struct {
	PlayerID string
	CardID   string
	Answer   string
	Choice   string
}

// Outcome describes what a successful action did
type Outcome struct {
	Action         model.GameAction
	Drawn          []model.Card
	Revived        []string
	Ended          bool
	Winner         model.Team
	Results        []model.GameResult
	RevealOpponent []model.Card
	TurnChanged    bool
	Attempts       int
}

// NewPlayer seats a fresh player with a dealt hand
func (e *Engine) NewPlayer(name string, team model.Team) model.Player {
	return model.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Team:      team,
		Health:    e.rules.MaxHealth,
		MaxHealth: e.rules.MaxHealth,
		Cards:     e.cards.Hand(e.rules.InitialHandSize),
	}
}

// NewGame builds the game for a full room. Red moves first.
func (e *Engine) NewGame(roomID string, players []model.Player, status model.GameStatus) *model.GameState {
	now := e.now()
	g := &model.GameState{
		ID:                   uuid.NewString(),
		RoomID:               roomID,
		Players:              append([]model.Player(nil), players...),
		CurrentTurn:          model.TeamRed,
		TurnNumber:           1,
		Status:               status,
		StartTime:            now,
		History:              []model.GameAction{},
		PassiveEffects:       []model.PassiveEffect{},
		TurnTimerSeconds:     e.rules.TurnTimerSeconds,
		CurrentTurnStartTime: now,
		Attempts:             map[string]int{},
	}
	for i := range g.Players {
		p := &g.Players[i]
		if p.MaxHealth == 0 {
			p.MaxHealth = e.rules.MaxHealth
			p.Health = e.rules.MaxHealth
		}
		if len(p.Cards) == 0 {
			p.Cards = e.cards.Hand(e.rules.InitialHandSize)
		}
		p.HasDrawnCardThisTurn = false
	}
	return g
}

// Start moves a waiting game to active and resets the clocks
func (e *Engine) Start(g *model.GameState) error {
	if g.Status != model.GameWaiting {
		return ErrGameNotActive
	}
	now := e.now()
	g.Status = model.GameActive
	g.StartTime = now
	g.CurrentTurnStartTime = now
	return nil
}

// actor validates that playerID may act now
func (e *Engine) actor(g *model.GameState, playerID string) (*model.Player, error) {
	if g.Status != model.GameActive {
		return nil, ErrGameNotActive
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.Team != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// PlayCard checks the answer and resolves the card. A wrong answer only bumps
// the attempt counter for that card and returns ErrWrongAnswer along with an
// outcome carrying the new count.
func (e *Engine) PlayCard(g *model.GameState, req PlayRequest) (*Outcome, error) {
	player, err := e.actor(g, req.PlayerID)
	if err != nil {
		return nil, err
	}
	idx := player.FindCard(req.CardID)
	if idx < 0 {
		return nil, ErrCardNotFound
	}
	card := player.Cards[idx]
	if req.Choice != "" && !validChoice(req.Choice) {
		return nil, ErrInvalidChoice
	}

	if g.Attempts == nil {
		g.Attempts = map[string]int{}
	}
	if !answerMatches(req.Answer, card.CorrectAnswer) {
		g.Attempts[card.ID]++
		return &Outcome{Attempts: g.Attempts[card.ID]}, ErrWrongAnswer
	}

	now := e.now()
	points := pointsFor(g.Attempts[card.ID])
	delete(g.Attempts, card.ID)
	player.RemoveCard(idx)

	res := &resolution{engine: e, g: g, actor: player, target: g.Opponent(player.ID), choice: req.Choice}
	effect := res.resolve(card)

	played := card.Redacted()
	action := model.GameAction{
		PlayerID:       player.ID,
		PlayerName:     player.Name,
		Team:           player.Team,
		Action:         model.ActionPlay,
		Card:           &played,
		Timestamp:      now,
		Effect:         effect,
		QuestionPoints: points,
		AnswerTime:     now.Sub(g.CurrentTurnStartTime).Seconds(),
		Damage:         res.dealt,
	}
	g.History = append(g.History, action)
	for range res.extraDraws {
		g.History = append(g.History, e.drawAction(player, model.ActionDraw, "drew an extra card", now))
	}

	out := &Outcome{Action: action, Drawn: res.extraDraws, RevealOpponent: res.reveal}
	out.Revived = e.applyRevives(g)
	if e.checkEnd(g, player, out) {
		return out, nil
	}

	if !player.HasDrawnCardThisTurn && len(player.Cards) < e.rules.MaxHandSize {
		c := e.cards.RandomCard()
		player.Cards = append(player.Cards, c)
		player.HasDrawnCardThisTurn = true
		g.History = append(g.History, e.drawAction(player, model.ActionAutoDraw, "drew a card", now))
		out.Drawn = append(out.Drawn, c)
	}
	e.advance(g)
	out.TurnChanged = true
	return out, nil
}

// DrawCard draws one card, random when cardType is empty, and ends the turn
func (e *Engine) DrawCard(g *model.GameState, playerID, cardType string) (*Outcome, error) {
	player, err := e.actor(g, playerID)
	if err != nil {
		return nil, err
	}
	if len(player.Cards) >= e.rules.MaxHandSize {
		return nil, ErrHandFull
	}
	var card model.Card
	if cardType == "" {
		card = e.cards.RandomCard()
	} else {
		card, err = e.cards.NewCard(cardType)
		if err != nil {
			return nil, ErrUnknownCardType
		}
	}

	player.Cards = append(player.Cards, card)
	player.HasDrawnCardThisTurn = true
	action := e.drawAction(player, model.ActionDraw, "drew a card", e.now())
	g.History = append(g.History, action)
	e.advance(g)
	return &Outcome{Action: action, Drawn: []model.Card{card}, TurnChanged: true}, nil
}

// SkipTurn passes the turn without playing or drawing
func (e *Engine) SkipTurn(g *model.GameState, playerID string) (*Outcome, error) {
	player, err := e.actor(g, playerID)
	if err != nil {
		return nil, err
	}
	action := model.GameAction{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Team:       player.Team,
		Action:     model.ActionSkip,
		Timestamp:  e.now(),
		Effect:     "skipped the turn",
	}
	g.History = append(g.History, action)
	e.advance(g)
	return &Outcome{Action: action, TurnChanged: true}, nil
}

// Pause marks the game paused on behalf of a disconnected player
func (e *Engine) Pause(g *model.GameState, playerID string) error {
	if g.Status != model.GameActive {
		return ErrGameNotActive
	}
	if g.PlayerByID(playerID) == nil {
		return ErrPlayerNotFound
	}
	now := e.now()
	g.Status = model.GamePaused
	g.PausedByPlayerID = playerID
	g.PausedAt = &now
	return nil
}

// Resume reactivates a game paused by playerID
func (e *Engine) Resume(g *model.GameState, playerID string) error {
	if g.Status != model.GamePaused {
		return ErrGameNotPaused
	}
	if g.PausedByPlayerID != playerID {
		return ErrNotPauser
	}
	g.Status = model.GameActive
	g.PausedByPlayerID = ""
	g.PausedAt = nil
	return nil
}

// Forfeit ends a running game in favour of the other player
func (e *Engine) Forfeit(g *model.GameState, playerID string) (*Outcome, error) {
	if g.Status != model.GameActive && g.Status != model.GamePaused {
		return nil, ErrGameNotActive
	}
	player := g.PlayerByID(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	action := model.GameAction{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Team:       player.Team,
		Action:     model.ActionForfeit,
		Timestamp:  e.now(),
		Effect:     "left the game",
	}
	g.History = append(g.History, action)
	out := &Outcome{Action: action}
	e.finish(g, player.Team.Opponent(), out)
	return out, nil
}

// advance hands the turn to the other team and ticks passive effects
func (e *Engine) advance(g *model.GameState) {
	g.CurrentTurn = g.CurrentTurn.Opponent()
	g.TurnNumber++
	if next := g.PlayerByTeam(g.CurrentTurn); next != nil {
		next.HasDrawnCardThisTurn = false
	}
	g.CurrentTurnStartTime = e.now()
	tickEffects(g)
}

func (e *Engine) drawAction(p *model.Player, action, effect string, at time.Time) model.GameAction {
	return model.GameAction{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Team:       p.Team,
		Action:     action,
		Timestamp:  at,
		Effect:     effect,
	}
}

func answerMatches(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}
