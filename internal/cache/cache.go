// Package cache keeps live (not yet finalized) weekly rankings in Redis so the ranking
// page does not re-aggregate a whole week on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/metrics"
	"github.com/Spok95/school-discipline/internal/ranking"
)

// ranking:{week}:{grade}:g{gen} -> JSON []Standing
// ranking:gen:{grade}            -> поколение параллели, INCR при изменении состава классов
const rankingPrefix = "ranking:"

// Rankings is what the services need from a ranking cache.
type Rankings interface {
	Get(ctx context.Context, weekKey string, grade int) ([]ranking.Standing, bool)
	Set(ctx context.Context, weekKey string, grade int, st []ranking.Standing)
	Invalidate(ctx context.Context, weekKey string, grade int)
	// InvalidateGrade drops every cached week of the grade (roster changed).
	InvalidateGrade(ctx context.Context, grade int)
}

func rankingKey(weekKey string, grade int, gen int64) string {
	return fmt.Sprintf("%s%s:%d:g%d", rankingPrefix, weekKey, grade, gen)
}

func genKey(grade int) string {
	return fmt.Sprintf("%sgen:%d", rankingPrefix, grade)
}

// Redis хранит рейтинги в Redis. Ошибка Redis не роняет запрос, считаем её промахом.
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{Client: client, ttl: ttl, log: log}
}

// Ping checks the connection at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// generation: нет ключа = поколение 0.
func (r *Redis) generation(ctx context.Context, grade int) (int64, error) {
	gen, err := r.Client.Get(ctx, genKey(grade)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) Get(ctx context.Context, weekKey string, grade int) ([]ranking.Standing, bool) {
	gen, err := r.generation(ctx, grade)
	if err != nil {
		r.log.Warn("ranking cache generation", zap.Int("grade", grade), zap.Error(err))
		metrics.CacheMiss()
		return nil, false
	}
	raw, err := r.Client.Get(ctx, rankingKey(weekKey, grade, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("ranking cache get", zap.String("week", weekKey), zap.Int("grade", grade), zap.Error(err))
		}
		metrics.CacheMiss()
		return nil, false
	}
	var st []ranking.Standing
	if err := json.Unmarshal(raw, &st); err != nil {
		r.log.Warn("ranking cache decode", zap.String("week", weekKey), zap.Error(err))
		metrics.CacheMiss()
		return nil, false
	}
	metrics.CacheHit()
	return st, true
}

func (r *Redis) Set(ctx context.Context, weekKey string, grade int, st []ranking.Standing) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	gen, err := r.generation(ctx, grade)
	if err != nil {
		return
	}
	if err := r.Client.Set(ctx, rankingKey(weekKey, grade, gen), raw, r.ttl).Err(); err != nil {
		r.log.Warn("ranking cache set", zap.String("week", weekKey), zap.Int("grade", grade), zap.Error(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context, weekKey string, grade int) {
	gen, err := r.generation(ctx, grade)
	if err == nil {
		err = r.Client.Del(ctx, rankingKey(weekKey, grade, gen)).Err()
	}
	if err != nil {
		r.log.Warn("ranking cache del", zap.String("week", weekKey), zap.Int("grade", grade), zap.Error(err))
	}
}

// InvalidateGrade bumps the grade generation: every week cached under the old one becomes
// unreachable and expires by TTL.
func (r *Redis) InvalidateGrade(ctx context.Context, grade int) {
	if err := r.Client.Incr(ctx, genKey(grade)).Err(); err != nil {
		r.log.Warn("ranking cache generation bump", zap.Int("grade", grade), zap.Error(err))
	}
}

func (r *Redis) Close() error { return r.Client.Close() }

// Nop is used when REDIS_ADDR is empty.
type Nop struct{}

func (Nop) Get(context.Context, string, int) ([]ranking.Standing, bool) {
	metrics.CacheMiss()
	return nil, false
}
func (Nop) Set(context.Context, string, int, []ranking.Standing) {}
func (Nop) Invalidate(context.Context, string, int)              {}
func (Nop) InvalidateGrade(context.Context, int)                 {}
