package repository

import (
	"cardclash/internal/model"
	"cardclash/internal/store"
	"context"
	"sort"
)

// LeaderboardRepo aggregates game results per player name
type LeaderboardRepo interface {
	RecordResult(ctx context.Context, result model.GameResult) error
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Reset(ctx context.Context) error
}

type leaderboardRepo struct {
	store *store.Store
}

var leaderboardKey = store.Key{Collection: store.CollectionLeaderboard, ID: "all"}

// NewLeaderboardRepo keeps the leaderboard as one document in the store
func NewLeaderboardRepo(s *store.Store) LeaderboardRepo {
	return &leaderboardRepo{store: s}
}

func (r *leaderboardRepo) RecordResult(ctx context.Context, result model.GameResult) error {
	_, err := store.Update(ctx, r.store, leaderboardKey, func(cur *model.Leaderboard) (*model.Leaderboard, error) {
		if cur == nil {
			cur = &model.Leaderboard{}
		}
		if cur.Entries == nil {
			cur.Entries = map[string]*model.LeaderboardEntry{}
		}
		e, ok := cur.Entries[result.PlayerName]
		if !ok {
			e = &model.LeaderboardEntry{PlayerName: result.PlayerName}
			cur.Entries[result.PlayerName] = e
		}
		e.Apply(result)
		return cur, nil
	})
	return err
}

// Top orders by wins, then score, then name
func (r *leaderboardRepo) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	var lb model.Leaderboard
	if _, err := r.store.Read(ctx, leaderboardKey, &lb); err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(lb.Entries))
	for _, e := range lb.Entries {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.PlayerName < b.PlayerName
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (r *leaderboardRepo) Reset(ctx context.Context) error {
	return r.store.Delete(ctx, leaderboardKey)
}
