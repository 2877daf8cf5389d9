package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores documents as strings under doc:<collection>:<id> and
// tracks ids in a set per collection
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) key(key Key) string {
	return fmt.Sprintf("doc:%s:%s", key.Collection, key.ID)
}

func (b *RedisBackend) indexKey(collection string) string {
	return fmt.Sprintf("docs:%s", collection)
}

func (b *RedisBackend) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *RedisBackend) Put(ctx context.Context, key Key, data []byte) error {
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.key(key), data, 0)
	pipe.SAdd(ctx, b.indexKey(key.Collection), key.ID)
	_, err := pipe.Exec(ctx)
	return err
}

func (b *RedisBackend) Delete(ctx context.Context, key Key) error {
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.key(key))
	pipe.SRem(ctx, b.indexKey(key.Collection), key.ID)
	_, err := pipe.Exec(ctx)
	return err
}

func (b *RedisBackend) List(ctx context.Context, collection string) ([]string, error) {
	ids, err := b.client.SMembers(ctx, b.indexKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (b *RedisBackend) Close(context.Context) error {
	return b.client.Close()
}
