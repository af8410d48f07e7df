package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims: jti 对应 personal_access_tokens.id
type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration // <=0 不设置 exp
}

// Issue signs a bearer string for (uid, tokenID). The returned expiry is nil when TTL is off.
func (j *JWTer) Issue(uid, tokenID string) (string, *time.Time, error) {
	now := time.Now()
	claims := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       tokenID,
			Issuer:   j.Issuer,
			Subject:  uid,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var exp *time.Time
	if j.TTL > 0 {
		e := now.Add(j.TTL)
		exp = &e
		claims.ExpiresAt = jwt.NewNumericDate(e)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", nil, err
	}
	return s, exp, nil
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.ID != "" && c.UID != "" {
		return c, nil
	}
	return nil, ErrInvalidToken
}
