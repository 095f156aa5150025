package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/erp-engine/generic"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   generic.ID     `json:"user_id"`
	Username string         `json:"username"`
	Roles    []generic.Role `json:"roles"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  generic.Clock
}

func NewTokens(secret string, ttl time.Duration, clock generic.Clock) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (t *Tokens) Issue(u *User) (string, time.Time, error) {
	now := t.clock.Now()
	expires := now.Add(t.ttl)
	claims := &Claims{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses a token and returns the caller it identifies.
func (t *Tokens) Verify(token string) (generic.Actor, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return generic.Actor{}, generic.Forbidden("token expired")
		}
		return generic.Actor{}, generic.Forbidden("invalid token")
	}
	if !parsed.Valid {
		return generic.Actor{}, generic.Forbidden("invalid token")
	}
	return generic.Actor{UserID: claims.UserID, Username: claims.Username, Roles: claims.Roles}, nil
}
