package service

import (
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ConfigService exposes the admin-editable game config
type ConfigService struct {
	repo   repository.ConfigRepo
	logger *zap.Logger
}

func NewConfigService(repo repository.ConfigRepo, logger *zap.Logger) *ConfigService {
	return &ConfigService{repo: repo, logger: logger}
}

func (s *ConfigService) Get(ctx context.Context) (model.GameConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Update validates and stores a new config. Zero fields keep their defaults.
func (s *ConfigService) Update(ctx context.Context, cfg model.GameConfig) (model.GameConfig, error) {
	if cfg.MaxRooms < 0 || cfg.MaxQueuePlayers < 0 || cfg.TurnTimerSeconds < 0 ||
		cfg.InitialHandSize < 0 || cfg.MaxHandSize < 0 || cfg.MaxHealth < 0 {
		return model.GameConfig{}, ErrInvalidConfig
	}
	if cfg.MaxQueuePlayers%2 == 1 {
		return model.GameConfig{}, model.NewValidationError("maxQueuePlayers must be even")
	}
	if cfg.MaxHandSize > 0 && cfg.InitialHandSize > cfg.MaxHandSize {
		return model.GameConfig{}, model.NewValidationError("initialHandSize cannot exceed maxHandSize")
	}
	saved, err := s.repo.Save(ctx, cfg)
	if err != nil {
		return model.GameConfig{}, fmt.Errorf("failed to save config: %w", err)
	}
	s.logger.Info("game config updated",
		zap.Int("maxRooms", saved.MaxRooms),
		zap.Int("maxQueuePlayers", saved.MaxQueuePlayers),
		zap.Int("turnTimerSeconds", saved.TurnTimerSeconds),
	)
	return saved, nil
}
