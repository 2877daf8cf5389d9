package cache

import (
	"cardclash/internal/model"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache keeps the leaderboard in Redis: a ZSET ranked by wins and
// score plus one stats hash per player
type LeaderboardCache interface {
	RecordResult(ctx context.Context, result model.GameResult) error
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Reset(ctx context.Context) error
}

const (
	leaderboardKey     = "leaderboard:rank"
	leaderboardStatKey = "leaderboard:stats:%s"
	// rank = wins * winWeight + score keeps wins dominant
	winWeight = 1_000_000
)

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) statsKey(name string) string {
	return fmt.Sprintf(leaderboardStatKey, name)
}

func (c *leaderboardCache) RecordResult(ctx context.Context, r model.GameResult) error {
	wins, losses := 0, 1
	if r.Won {
		wins, losses = 1, 0
	}
	pipe := c.client.TxPipeline()
	key := c.statsKey(r.PlayerName)
	pipe.HIncrBy(ctx, key, "wins", int64(wins))
	pipe.HIncrBy(ctx, key, "losses", int64(losses))
	pipe.HIncrBy(ctx, key, "games", 1)
	pipe.HIncrBy(ctx, key, "score", int64(r.Score))
	pipe.HIncrBy(ctx, key, "damageDealt", int64(r.DamageDealt))
	pipe.HIncrBy(ctx, key, "questionPoints", int64(r.QuestionPoints))
	pipe.HIncrBy(ctx, key, "correctCount", int64(r.CorrectCount))
	pipe.HIncrBy(ctx, key, "partialCount", int64(r.PartialCount))
	pipe.HSet(ctx, key, "updatedAt", time.Now().Unix())
	pipe.ZIncrBy(ctx, leaderboardKey, float64(wins*winWeight+r.Score), r.PlayerName)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

func (c *leaderboardCache) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(results))
	for i, z := range results {
		cmds[i] = pipe.HGetAll(ctx, c.statsKey(z.Member.(string)))
	}
	if len(results) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to get player stats: %w", err)
		}
	}

	entries := make([]model.LeaderboardEntry, len(results))
	for i, z := range results {
		stats := cmds[i].Val()
		entries[i] = model.LeaderboardEntry{
			PlayerName:     z.Member.(string),
			Wins:           atoi(stats["wins"]),
			Losses:         atoi(stats["losses"]),
			Games:          atoi(stats["games"]),
			Score:          atoi(stats["score"]),
			DamageDealt:    atoi(stats["damageDealt"]),
			QuestionPoints: atoi(stats["questionPoints"]),
			CorrectCount:   atoi(stats["correctCount"]),
			PartialCount:   atoi(stats["partialCount"]),
			Rank:           i + 1,
		}
		if ts, err := strconv.ParseInt(stats["updatedAt"], 10, 64); err == nil {
			entries[i].UpdatedAt = time.Unix(ts, 0)
		}
	}
	return entries, nil
}

func (c *leaderboardCache) Reset(ctx context.Context) error {
	names, err := c.client.ZRange(ctx, leaderboardKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list leaderboard: %w", err)
	}
	pipe := c.client.TxPipeline()
	for _, name := range names {
		pipe.Del(ctx, c.statsKey(name))
	}
	pipe.Del(ctx, leaderboardKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
