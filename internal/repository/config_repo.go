package repository

import (
	"cardclash/internal/model"
	"cardclash/internal/store"
	"context"
)

type ConfigRepo interface {
	Get(ctx context.Context) (model.GameConfig, error)
	Save(ctx context.Context, cfg model.GameConfig) (model.GameConfig, error)
}

type configRepo struct {
	store    *store.Store
	defaults model.GameConfig
}

var configKey = store.Key{Collection: store.CollectionConfig, ID: model.GameConfigID}

// NewConfigRepo creates the config repository. Zero fields in the stored
// document fall back to defaults.
func NewConfigRepo(s *store.Store, defaults model.GameConfig) ConfigRepo {
	return &configRepo{store: s, defaults: defaults}
}

func (r *configRepo) Get(ctx context.Context) (model.GameConfig, error) {
	var cfg model.GameConfig
	if _, err := r.store.Read(ctx, configKey, &cfg); err != nil {
		return r.defaults, err
	}
	return r.withDefaults(cfg), nil
}

func (r *configRepo) Save(ctx context.Context, cfg model.GameConfig) (model.GameConfig, error) {
	saved, err := store.Update(ctx, r.store, configKey, func(*model.GameConfig) (*model.GameConfig, error) {
		merged := r.withDefaults(cfg)
		return &merged, nil
	})
	if err != nil {
		return model.GameConfig{}, err
	}
	return *saved, nil
}

func (r *configRepo) withDefaults(cfg model.GameConfig) model.GameConfig {
	if cfg.MaxRooms <= 0 {
		cfg.MaxRooms = r.defaults.MaxRooms
	}
	if cfg.MaxQueuePlayers <= 0 {
		cfg.MaxQueuePlayers = r.defaults.MaxQueuePlayers
	}
	if cfg.TurnTimerSeconds <= 0 {
		cfg.TurnTimerSeconds = r.defaults.TurnTimerSeconds
	}
	if cfg.InitialHandSize <= 0 {
		cfg.InitialHandSize = r.defaults.InitialHandSize
	}
	if cfg.MaxHandSize <= 0 {
		cfg.MaxHandSize = r.defaults.MaxHandSize
	}
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = r.defaults.MaxHealth
	}
	return cfg
}
