package model

// GameConfig holds the admin-editable runtime settings
type GameConfig struct {
	MaxRooms         int `json:"maxRooms"`
	MaxQueuePlayers  int `json:"maxQueuePlayers"`
	TurnTimerSeconds int `json:"turnTimerSeconds"`
	InitialHandSize  int `json:"initialHandSize"`
	MaxHandSize      int `json:"maxHandSize"`
	MaxHealth        int `json:"maxHealth"`
}

// GameConfigID is the id of the config document
const GameConfigID = "game"

// DefaultGameConfig is used for any field the config document leaves unset
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MaxRooms:         10,
		MaxQueuePlayers:  20,
		TurnTimerSeconds: 60,
		InitialHandSize:  5,
		MaxHandSize:      6,
		MaxHealth:        100,
	}
}
