package model

type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opponent returns the other team
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// Player is one seat in a room and one side of a game
type Player struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Team                 Team   `json:"team"`
	Health               int    `json:"health"`
	MaxHealth            int    `json:"maxHealth"`
	Cards                []Card `json:"cards"`
	Score                int    `json:"score"`
	Ready                bool   `json:"ready"`
	HasDrawnCardThisTurn bool   `json:"hasDrawnCardThisTurn,omitempty"`
	HandSize             int    `json:"handSize,omitempty"` // set on views where Cards is hidden
}

// FindCard returns the index of a card in the hand, or -1
func (p *Player) FindCard(cardID string) int {
	for i, c := range p.Cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// RemoveCard drops the card at index i from the hand
func (p *Player) RemoveCard(i int) Card {
	card := p.Cards[i]
	p.Cards = append(p.Cards[:i:i], p.Cards[i+1:]...)
	return card
}

// Heal raises health, clamped to MaxHealth, and returns the amount applied
func (p *Player) Heal(amount int) int {
	before := p.Health
	p.Health += amount
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	return p.Health - before
}

// Damage lowers health, clamped to 0, and returns the amount applied
func (p *Player) Damage(amount int) int {
	before := p.Health
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	return before - p.Health
}
