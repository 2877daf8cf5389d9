package repository

import (
	"cardclash/internal/model"
	"cardclash/internal/store"
	"context"
	"time"
)

type QueueRepo interface {
	Get(ctx context.Context) (*model.MatchQueue, error)
	Update(ctx context.Context, fn func(q *model.MatchQueue) error) (*model.MatchQueue, error)
}

type queueRepo struct {
	store      *store.Store
	maxPlayers func(ctx context.Context) int
}

var queueKey = store.Key{Collection: store.CollectionQueue, ID: model.QueueID}

// NewQueueRepo creates the queue repository. maxPlayers supplies the
// capacity for a queue that does not exist yet and refreshes it on update.
func NewQueueRepo(s *store.Store, maxPlayers func(ctx context.Context) int) QueueRepo {
	return &queueRepo{store: s, maxPlayers: maxPlayers}
}

func (r *queueRepo) empty(ctx context.Context) *model.MatchQueue {
	return &model.MatchQueue{
		ID:         model.QueueID,
		Entries:    []model.QueueEntry{},
		MaxPlayers: r.maxPlayers(ctx),
		Status:     model.QueueWaiting,
		CreatedAt:  time.Now(),
	}
}

// Get returns the queue, or an empty one if none was stored yet
func (r *queueRepo) Get(ctx context.Context) (*model.MatchQueue, error) {
	var q model.MatchQueue
	found, err := r.store.Read(ctx, queueKey, &q)
	if err != nil {
		return nil, err
	}
	if !found {
		return r.empty(ctx), nil
	}
	return &q, nil
}

// Update mutates the queue under its lock
func (r *queueRepo) Update(ctx context.Context, fn func(q *model.MatchQueue) error) (*model.MatchQueue, error) {
	return store.Update(ctx, r.store, queueKey, func(cur *model.MatchQueue) (*model.MatchQueue, error) {
		if cur == nil {
			cur = r.empty(ctx)
		}
		configured := r.maxPlayers(ctx)
		cur.MaxPlayers = capacity(configured, len(cur.Entries))
		if err := fn(cur); err != nil {
			return nil, err
		}
		cur.MaxPlayers = capacity(configured, len(cur.Entries))
		return cur, nil
	})
}

// capacity never drops below the entries already queued; a lowered limit
// takes hold as players leave
func capacity(configured, queued int) int {
	if configured < queued {
		return queued
	}
	return configured
}
