package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"todo-api/internal/core/apperr"
	"todo-api/internal/core/auth"
	"todo-api/internal/core/cache"
	"todo-api/internal/domain"
	"todo-api/pkg/utils"
)

const TokenName = "auth_token"

// TokenService issues, resolves and revokes personal access tokens.
type TokenService struct {
	tokens domain.TokenRepository
	users  domain.UserRepository
	jwt    *auth.JWTer
	log    *zap.Logger

	cache    *cache.Cache // nil 表示不启用
	cacheTTL time.Duration
}

type Option func(*TokenService)

// WithCache 用 Redis 缓存 token -> user 的解析结果
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *TokenService) {
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *TokenService) { s.log = l }
}

func NewTokenService(tokens domain.TokenRepository, users domain.UserRepository, j *auth.JWTer, opts ...Option) *TokenService {
	s := &TokenService{tokens: tokens, users: users, jwt: j, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issue creates a token row for u and returns the bearer string.
func (s *TokenService) Issue(ctx context.Context, u *domain.User) (string, error) {
	id := utils.NewID()
	plain, exp, err := s.jwt.Issue(u.ID, id)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	t := &domain.AccessToken{ID: id, UserID: u.ID, Name: TokenName, ExpiresAt: exp}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return plain, nil
}

type resolved struct {
	User  domain.User        `json:"user"`
	Token domain.AccessToken `json:"token"`
}

func cacheKey(tokenID string) string { return "auth:pat:" + tokenID }

// Authenticate resolves a bearer string to its user and token.
// Every rejection is apperr.Unauthenticated; store failures are internal errors.
func (s *TokenService) Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	claims, err := s.jwt.Parse(bearer)
	if err != nil {
		return nil, nil, apperr.Unauthenticated()
	}

	var r *resolved
	if s.cache != nil {
		r, err = cache.GetOrLoadJSON(s.cache, ctx, cacheKey(claims.ID), s.cacheTTL, func(ctx context.Context) (*resolved, error) {
			return s.load(ctx, claims.ID)
		})
	} else {
		r, err = s.load(ctx, claims.ID)
	}
	if err != nil {
		return nil, nil, apperr.Internal("resolve token failed", err)
	}
	if r == nil || r.Token.UserID != claims.UID || r.Token.Expired(time.Now()) {
		return nil, nil, apperr.Unauthenticated()
	}
	return &r.User, &r.Token, nil
}

func (s *TokenService) load(ctx context.Context, tokenID string) (*resolved, error) {
	t, err := s.tokens.FindByID(ctx, tokenID)
	if err != nil || t == nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, t.UserID)
	if err != nil || u == nil {
		return nil, err
	}
	now := time.Now()
	if err := s.tokens.Touch(ctx, t.ID, now); err != nil {
		s.log.Warn("touch token failed", zap.String("token_id", t.ID), zap.Error(err))
	} else {
		t.LastUsedAt = &now
	}
	return &resolved{User: *u, Token: *t}, nil
}

// Revoke deletes a single token.
func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	s.evict(ctx, tokenID)
	return nil
}

// RevokeAll deletes every token the user holds.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	ids, err := s.tokens.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}
	s.evict(ctx, ids...)
	return nil
}

func (s *TokenService) evict(ctx context.Context, ids ...string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	// 写墓碑而不是 DEL：并发中的回源晚于吊销回写时也不会复活令牌
	if err := cache.Forget(s.cache, ctx, s.cacheTTL, keys...); err != nil {
		s.log.Warn("evict token cache failed", zap.Strings("token_ids", ids), zap.Error(err))
	}
}
