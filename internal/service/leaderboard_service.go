package service

import (
	"cardclash/internal/model"
	"context"

	"go.uber.org/zap"
)

// Leaderboard is satisfied by the store-backed repository and the Redis cache
type Leaderboard interface {
	RecordResult(ctx context.Context, result model.GameResult) error
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Reset(ctx context.Context) error
}

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

type LeaderboardService struct {
	board  Leaderboard
	logger *zap.Logger
}

func NewLeaderboardService(board Leaderboard, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{board: board, logger: logger}
}

// Record stores one result per player. Failures are logged and do not undo
// the finished game.
func (s *LeaderboardService) Record(ctx context.Context, results []model.GameResult) {
	for _, r := range results {
		if err := s.board.RecordResult(ctx, r); err != nil {
			s.logger.Error("failed to record leaderboard result",
				zap.String("player", r.PlayerName),
				zap.Error(err),
			)
		}
	}
}

// Top returns the best players, clamping limit to a sane range
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	return s.board.Top(ctx, limit)
}

func (s *LeaderboardService) Reset(ctx context.Context) error {
	if err := s.board.Reset(ctx); err != nil {
		return err
	}
	s.logger.Info("leaderboard reset")
	return nil
}
