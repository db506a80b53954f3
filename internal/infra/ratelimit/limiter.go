package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "freshmart:rate_limit"

type counter interface {
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
}

// 固定ウィンドウのレート制限。カウンタはredisに置く。
type Limiter struct {
	store  counter
	limit  int64
	window time.Duration
}

func NewLimiter(store counter, limit int64, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// URLからredisに接続して疎通を確認する
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

func (l *Limiter) Key(scope string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, strings.TrimSpace(scope))
}

// scopeごとに何回目かを数え、上限以内ならtrue
func (l *Limiter) Allow(ctx context.Context, scope string) (bool, int64, error) {
	key := l.Key(scope)
	count, err := l.store.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, errors.Wrap(err, "incr rate limit counter")
	}
	//最初の1回でTTLを付ける
	if count == 1 && l.window > 0 {
		if err := l.store.Expire(ctx, key, l.window).Err(); err != nil {
			return count <= l.limit, count, errors.Wrap(err, "expire rate limit counter")
		}
	}
	return count <= l.limit, count, nil
}
