package auth

import (
	"errors"
	"time"

	"menuwise/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenIssuer signs and verifies HS256 bearer tokens bound to a user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (ti *TokenIssuer) Generate(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty userID passed to Generate")
	}

	now := ti.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify returns the user id the token was issued for.
func (ti *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", apperror.Unauthorized("token expired")
	case err != nil || !token.Valid:
		return "", apperror.Unauthorized("invalid token")
	case claims.Subject == "":
		return "", apperror.Unauthorized("invalid token claims")
	}
	return claims.Subject, nil
}
