package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minKeyLen = 32

// Claims are the JWT claims of a session token.
type Claims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	key    []byte
	issuer string
	now    func() time.Time
}

func NewTokens(key []byte, issuer string) (*Tokens, error) {
	if len(key) < minKeyLen {
		return nil, fmt.Errorf("session: signing key must be at least %d bytes", minKeyLen)
	}
	if issuer == "" {
		issuer = "sceneflow"
	}
	return &Tokens{key: key, issuer: issuer, now: time.Now}, nil
}

func (t *Tokens) Issue(s Session) (string, error) {
	claims := Claims{
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks signature, issuer and expiry. Expired
// tokens fail with an error matching jwt.ErrTokenExpired.
func (t *Tokens) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
