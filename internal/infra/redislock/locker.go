package redislock

import (
	"context"
	"fmt"
	"time"

	"app/internal/lock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// トークンが一致するときだけ消す
var releaseScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
else
    return 0
end
`)

// Redis実装。SET NX PXで取得とリース開始を1コマンドにする
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

func (r *Locker) Acquire(ctx context.Context, key string, lease time.Duration) (lock.Lock, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, lease).Result()
	if err != nil {
		return lock.Lock{}, fmt.Errorf("lock backend: %w", err)
	}
	if !ok {
		return lock.Lock{}, lock.ErrHeld
	}

	return lock.Lock{
		Key:       key,
		Token:     token,
		ExpiresAt: time.Now().Add(lease),
	}, nil
}

func (r *Locker) Release(ctx context.Context, l lock.Lock) error {
	n, err := releaseScript.Run(ctx, r.client, []string{l.Key}, l.Token).Int64()
	if err != nil {
		return fmt.Errorf("lock backend: %w", err)
	}
	if n == 0 {
		return lock.ErrNotOwner
	}
	return nil
}
