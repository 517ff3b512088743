// Package tokens issues and validates the signed tokens embedded in email
// verification links. Tokens are stateless: the user id travels inside the
// claims, so confirming a link needs no server-side token storage.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyManager signs and parses email-verification tokens.
type VerifyManager struct {
	secret []byte
	ttl    time.Duration
}

type verifyClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func NewVerifyManager(secret string, ttl time.Duration) *VerifyManager {
	return &VerifyManager{secret: []byte(secret), ttl: ttl}
}

// Generate returns a signed token for userID, valid for the configured TTL.
func (m *VerifyManager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &verifyClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates tokenStr and returns the user id it was issued for.
func (m *VerifyManager) Parse(tokenStr string) (string, error) {
	claims := &verifyClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.UserID == "" {
		return "", errors.New("invalid token")
	}
	return claims.UserID, nil
}
