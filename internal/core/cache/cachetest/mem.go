// Package cachetest provides an in-process stand-in for Redis.
package cachetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Mem implements the handful of commands cache.Cache issues. Anything else
// hits the nil embedded client and panics.
type Mem struct {
	redis.UniversalClient

	mu   sync.Mutex
	kv   map[string]string
	Sets int // successful writes, for assertions
}

func NewMem() *Mem { return &Mem{kv: map[string]string{}} }

func str(v any) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func (m *Mem) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.kv[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *Mem) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = str(value)
	m.Sets++
	return redis.NewStatusResult("OK", nil)
}

func (m *Mem) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kv[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.kv[key] = str(value)
	m.Sets++
	return redis.NewBoolResult(true, nil)
}

func (m *Mem) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }

func (m *Mem) Close() error { return nil }

// Value returns the raw stored value.
func (m *Mem) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	return v, ok
}
