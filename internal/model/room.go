package model

import "time"

type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting"
	RoomInProgress RoomStatus = "in-progress"
	RoomFinished   RoomStatus = "finished"
)

// RoomSource records how a room came to exist
type RoomSource string

const (
	RoomFromQueue  RoomSource = "queue"
	RoomFromManual RoomSource = "manual"
)

// RoomCapacity is the number of seats in every room
const RoomCapacity = 2

// Room is a two-seat match container
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Players    []Player   `json:"players"`
	MaxPlayers int        `json:"maxPlayers"`
	Status     RoomStatus `json:"status"`
	Source     RoomSource `json:"source"`
	GameState  *GameState `json:"gameState,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsFull reports whether both seats are taken
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// FindPlayer returns the seated player with the given id
func (r *Room) FindPlayer(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// RoomSummary is the lobby listing view of a room
type RoomSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      RoomStatus `json:"status"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	Seats       []Seat     `json:"seats"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Seat is the public view of a seated player
type Seat struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Team     Team   `json:"team"`
	Ready    bool   `json:"ready"`
}

// Summary builds the listing view
func (r *Room) Summary() RoomSummary {
	seats := make([]Seat, 0, len(r.Players))
	for _, p := range r.Players {
		seats = append(seats, Seat{PlayerID: p.ID, Name: p.Name, Team: p.Team, Ready: p.Ready})
	}
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		Status:      r.Status,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.MaxPlayers,
		Seats:       seats,
		CreatedAt:   r.CreatedAt,
	}
}
