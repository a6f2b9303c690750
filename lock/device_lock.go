// Package lock 以 Redis SetNX 做設備層級的 advisory lock，
// 避免兩個操作者同時對同一設備借用或歸還。
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrDeviceBusy 該設備正在被其他操作處理中
var ErrDeviceBusy = errors.New("device is being processed, try again")

type DeviceLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *DeviceLock {
	return &DeviceLock{rdb: rdb, ttl: ttl}
}

func key(deviceID string) string { return fmt.Sprintf("borrow:lock:%s", deviceID) }

// 只釋放自己持有的鎖，TTL 過期後被他人取得的不動
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire 取得設備鎖；已被持有時回傳 ErrDeviceBusy。
// 取得成功時回傳的 release 需在操作結束後呼叫。
func (l *DeviceLock) Acquire(ctx context.Context, deviceID string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key(deviceID), token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDeviceBusy
	}
	release := func() {
		_ = unlockScript.Run(context.Background(), l.rdb, []string{key(deviceID)}, token).Err()
	}
	return release, nil
}
