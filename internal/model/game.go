package model

import "time"

type GameStatus string

const (
	GameWaiting  GameStatus = "waiting"
	GameActive   GameStatus = "active"
	GamePaused   GameStatus = "paused"
	GameFinished GameStatus = "finished"
)

// History action names
const (
	ActionPlay     = "play"
	ActionDraw     = "draw"
	ActionAutoDraw = "auto-draw"
	ActionSkip     = "skip"
	ActionRevive   = "revive"
	ActionForfeit  = "forfeit"
)

// GameAction is an append-only history record
type GameAction struct {
	PlayerID       string    `json:"playerId"`
	PlayerName     string    `json:"playerName"`
	Team           Team      `json:"team"`
	Action         string    `json:"action"`
	Card           *Card     `json:"card,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Effect         string    `json:"effect"`
	QuestionPoints int       `json:"questionPoints,omitempty"`
	AnswerTime     float64   `json:"answerTime,omitempty"` // seconds
	Damage         int       `json:"damage,omitempty"`     // HP removed from the opponent
}

// GameState is the authoritative state of one match
type GameState struct {
	ID                   string          `json:"id"`
	RoomID               string          `json:"roomId"`
	Players              []Player        `json:"players"`
	CurrentTurn          Team            `json:"currentTurn"`
	TurnNumber           int             `json:"turnNumber"`
	Status               GameStatus      `json:"status"`
	Winner               Team            `json:"winner,omitempty"`
	StartTime            time.Time       `json:"startTime"`
	EndTime              *time.Time      `json:"endTime,omitempty"`
	History              []GameAction    `json:"history"`
	PassiveEffects       []PassiveEffect `json:"passiveEffects"`
	PausedByPlayerID     string          `json:"pausedByPlayerId,omitempty"`
	PausedAt             *time.Time      `json:"pausedAt,omitempty"`
	TurnTimerSeconds     int             `json:"turnTimerSeconds,omitempty"`
	CurrentTurnStartTime time.Time       `json:"currentTurnStartTime"`
	Attempts             map[string]int  `json:"attempts,omitempty"` // cardID -> wrong answers so far
}

// PlayerByID returns the player with the given id
func (g *GameState) PlayerByID(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerByTeam returns the player seated on a team
func (g *GameState) PlayerByTeam(team Team) *Player {
	for i := range g.Players {
		if g.Players[i].Team == team {
			return &g.Players[i]
		}
	}
	return nil
}

// Opponent returns the other seated player
func (g *GameState) Opponent(playerID string) *Player {
	for i := range g.Players {
		if g.Players[i].ID != playerID {
			return &g.Players[i]
		}
	}
	return nil
}

// EffectsFor returns pointers to the effects owned by a player with the given kind
func (g *GameState) EffectsFor(playerID string, kind EffectKind) []*PassiveEffect {
	var out []*PassiveEffect
	for i := range g.PassiveEffects {
		e := &g.PassiveEffects[i]
		if e.PlayerID == playerID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Redacted returns a deep copy safe to send to clients
func (g *GameState) Redacted() *GameState {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		cards := make([]Card, len(p.Cards))
		for j, c := range p.Cards {
			c = c.Redacted()
			c.AttemptCount = g.Attempts[c.ID]
			cards[j] = c
		}
		p.Cards = cards
		cp.Players[i] = p
	}
	cp.History = make([]GameAction, len(g.History))
	for i, a := range g.History {
		if a.Card != nil {
			c := a.Card.Redacted()
			a.Card = &c
		}
		cp.History[i] = a
	}
	cp.PassiveEffects = append([]PassiveEffect(nil), g.PassiveEffects...)
	cp.Attempts = nil
	return &cp
}

// ViewFor returns what one seat may see: the opponent's hand is reduced to
// a count. An empty viewer id hides both hands.
func (g *GameState) ViewFor(playerID string) *GameState {
	v := g.Redacted()
	if v == nil {
		return nil
	}
	for i := range v.Players {
		p := &v.Players[i]
		if p.ID != playerID {
			p.HandSize = len(p.Cards)
			p.Cards = nil
		}
	}
	return v
}

// GameResult is the per-player summary handed to the leaderboard
type GameResult struct {
	PlayerName     string `json:"playerName"`
	Team           Team   `json:"team"`
	Won            bool   `json:"won"`
	Score          int    `json:"score"`
	DamageDealt    int    `json:"damageDealt"`
	QuestionPoints int    `json:"questionPoints"`
	CorrectCount   int    `json:"correctCount"`
	PartialCount   int    `json:"partialCount"`
}
