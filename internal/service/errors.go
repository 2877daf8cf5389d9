package service

import "cardclash/internal/model"

var (
	ErrInvalidName      = model.NewValidationError("player name must be between 1 and 50 characters")
	ErrInvalidRoomName  = model.NewValidationError("room name must be between 1 and 50 characters")
	ErrQueueFull        = model.NewPreconditionError("queue is full")
	ErrQueueNotWaiting  = model.NewPreconditionError("queue is not accepting players right now")
	ErrMatchingBusy     = model.NewPreconditionError("matching is already in progress")
	ErrNotEnoughPlayers = model.NewPreconditionError("need at least 2 players to start matching")
	ErrOddPlayers       = model.NewPreconditionError("need an even number of players to start matching")
	ErrEntryNotFound    = model.NewNotFoundError("player not found in queue")
	ErrMaxRooms         = model.NewPreconditionError("maximum number of rooms reached")
	ErrRoomNotFound     = model.NewNotFoundError("room not found")
	ErrRoomNotWaiting   = model.NewPreconditionError("room is not accepting players")
	ErrRoomFull         = model.NewPreconditionError("room is full")
	ErrPlayerNotInRoom  = model.NewNotFoundError("player not found in room")
	ErrGameNotFound     = model.NewNotFoundError("game not found")
	ErrInvalidConfig    = model.NewValidationError("invalid game config")
)

// MaxNameLength bounds player and room names, in characters
const MaxNameLength = 50
