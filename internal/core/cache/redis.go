package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB redis.UniversalClient
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWith(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWith(rdb redis.UniversalClient) *Cache { return &Cache{RDB: rdb} }

// GetOrLoad 读缓存，未命中则合并回源；Redis 不可用时直接回源。
// 回写用 SET NX：回源期间键若已被 Put 覆盖（如吊销写入的墓碑），旧结果不会盖掉它
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.SetNX(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Put 无条件写入 val，覆盖已有值；返回第一个失败
func (c *Cache) Put(ctx context.Context, val []byte, ttl time.Duration, keys ...string) error {
	var first error
	for _, k := range keys {
		if err := c.RDB.Set(ctx, k, val, ttl).Err(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }
