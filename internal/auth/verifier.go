package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for missing, malformed, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Verifier resolves a bearer token into a user identity. The quiz flow only
// needs the yes/no signal plus the subject; issuing credentials lives in the
// auth service, not here.
type Verifier interface {
	Verify(token string) (userID string, err error)
}

// JWTVerifier validates HMAC-signed tokens issued by the auth service.
type JWTVerifier struct {
	hmac []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{hmac: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.hmac, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IssueToken mints a short-lived token for a user. Used by tests and local
// tooling; production tokens come from the auth service with the same secret.
func (v *JWTVerifier) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.hmac)
}

// StaticVerifier maps fixed tokens to user IDs. Test double.
type StaticVerifier map[string]string

func (v StaticVerifier) Verify(token string) (string, error) {
	if userID, ok := v[token]; ok {
		return userID, nil
	}
	return "", ErrInvalidToken
}
