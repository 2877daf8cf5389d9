package model

import "time"

type QueueStatus string

const (
	QueueWaiting  QueueStatus = "waiting"
	QueueMatching QueueStatus = "matching"
	QueueMatched  QueueStatus = "matched"
)

// QueueID is the id of the singleton queue document
const QueueID = "main"

// QueueEntry is a waiting player's claim, unique per session
type QueueEntry struct {
	PlayerID       string    `json:"playerId"`
	PlayerName     string    `json:"playerName"`
	IPAddress      string    `json:"ipAddress"`
	JoinedAt       time.Time `json:"joinedAt"`
	SocketID       string    `json:"socketId"`
	AssignedRoomID string    `json:"assignedRoomId,omitempty"`
}

// MatchQueue is the singleton matchmaking queue
type MatchQueue struct {
	ID         string       `json:"id"`
	Entries    []QueueEntry `json:"entries"`
	MaxPlayers int          `json:"maxPlayers"`
	Status     QueueStatus  `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	MatchedAt  *time.Time   `json:"matchedAt,omitempty"`
}

// IndexBySession returns the entry index bound to a session, or -1
func (q *MatchQueue) IndexBySession(sessionID string) int {
	for i, e := range q.Entries {
		if e.SocketID == sessionID {
			return i
		}
	}
	return -1
}

// QueuedPlayer is the public view of an entry
type QueuedPlayer struct {
	PlayerID       string    `json:"playerId"`
	PlayerName     string    `json:"playerName"`
	JoinedAt       time.Time `json:"joinedAt"`
	AssignedRoomID string    `json:"assignedRoomId,omitempty"`
}

// QueueSnapshot is what clients see of the queue; addresses and sessions stay private
type QueueSnapshot struct {
	Status     QueueStatus    `json:"status"`
	MaxPlayers int            `json:"maxPlayers"`
	Count      int            `json:"count"`
	Players    []QueuedPlayer `json:"players"`
}

func (q *MatchQueue) Snapshot() QueueSnapshot {
	players := make([]QueuedPlayer, 0, len(q.Entries))
	for _, e := range q.Entries {
		players = append(players, QueuedPlayer{
			PlayerID:       e.PlayerID,
			PlayerName:     e.PlayerName,
			JoinedAt:       e.JoinedAt,
			AssignedRoomID: e.AssignedRoomID,
		})
	}
	return QueueSnapshot{
		Status:     q.Status,
		MaxPlayers: q.MaxPlayers,
		Count:      len(q.Entries),
		Players:    players,
	}
}
