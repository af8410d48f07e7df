package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// nullValue 既是 load 返回 nil 时的负缓存，也是 Forget 写入的墓碑
var nullValue = []byte("null")

// GetOrLoadJSON 把 *T 以 JSON 缓存；命中墓碑或负缓存时返回 (nil, nil)
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil || v == nil {
			return nullValue, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if bytes.Equal(b, nullValue) {
		return nil, nil
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Forget 让 keys 在 ttl 内都解析为 nil。
// 与 DEL 不同，墓碑会挡住正在回源、稍后才回写的旧值
func Forget(c *Cache, ctx context.Context, ttl time.Duration, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Put(ctx, nullValue, ttl, keys...)
}
