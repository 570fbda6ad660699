package cache

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotHeld trả về khi release một lock không còn thuộc về owner
var ErrLockNotHeld = errors.New("lock not held")

// Cache interface định nghĩa contract cho cache layer
// Cho phép swap implementation (Redis, In-memory)
type Cache interface {
	// Get lấy data từ cache và unmarshal vào dest
	// Returns: (found bool, error)
	// - found = true: cache hit, data đã unmarshal vào dest
	// - found = false: cache miss, dest không bị thay đổi
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set lưu data vào cache với TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete xóa các keys khỏi cache
	Delete(ctx context.Context, keys ...string) error

	// Ping kiểm tra connection
	Ping(ctx context.Context) error

	DeletePattern(ctx context.Context, pattern string) error
	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)

	// SetNX chỉ set khi key chưa tồn tại, dùng cho run lock của overdue notification
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// ReleaseLock xóa key chỉ khi value vẫn là owner token
	ReleaseLock(ctx context.Context, key string, owner string) error
}
