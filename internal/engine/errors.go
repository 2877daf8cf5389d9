package engine

import "cardclash/internal/model"

var (
	ErrGameNotActive   = model.NewPreconditionError("game is not active")
	ErrGameNotPaused   = model.NewPreconditionError("game is not paused")
	ErrNotPauser       = model.NewPreconditionError("only the disconnected player can resume the game")
	ErrPlayerNotFound  = model.NewNotFoundError("player not found")
	ErrNotYourTurn     = model.NewPreconditionError("not your turn")
	ErrCardNotFound    = model.NewNotFoundError("card not found")
	ErrWrongAnswer     = model.NewValidationError("wrong answer")
	ErrHandFull        = model.NewPreconditionError("hand is full")
	ErrUnknownCardType = model.NewValidationError("unknown card type")
	ErrInvalidChoice   = model.NewValidationError("invalid choice")
)
