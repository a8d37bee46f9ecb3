package diagnosis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda gerações da IA para entradas idênticas.
type Cache interface {
	Load(ctx context.Context, key string) (*Generated, error)
	Store(ctx context.Context, key string, g Generated, ttl time.Duration) error
}

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache implementa Cache sobre o redis compartilhado.
type RedisCache struct {
	rdb redisCommander
}

// NewRedisCache cria o cache.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Load devolve nil sem erro quando a chave não existe.
func (c *RedisCache) Load(ctx context.Context, key string) (*Generated, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var g Generated
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Store grava a geração com expiração.
func (c *RedisCache) Store(ctx context.Context, key string, g Generated, ttl time.Duration) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// CacheKey deriva a chave da entrada normalizada. O cliente vinculado não
// altera o conteúdo gerado e fica fora da chave.
func CacheKey(in Input) string {
	in.ClientID = nil
	in.Niche = strings.ToLower(in.Niche)
	in.City = strings.ToLower(in.City)
	in.TargetAudience = strings.ToLower(in.TargetAudience)
	in.Website = strings.ToLower(in.Website)

	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return "diagnosis:" + hex.EncodeToString(sum[:])
}
