package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload: the registered claims plus the granted authorities.
// Subject holds the login name.
type Claims struct {
	jwt.RegisteredClaims
	Authorities []string `json:"authorities"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer with the given secret and token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the session and returns it with its expiry.
func (i *TokenIssuer) Issue(session models.SessionClaims) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)

	authorities := make([]string, 0, len(session.Authorities))
	for _, a := range session.Authorities {
		authorities = append(authorities, string(a))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Authorities: authorities,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the token signature and expiry and returns the session it
// carries together with its expiry time.
func (i *TokenIssuer) Parse(tokenString string) (models.SessionClaims, time.Time, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.SessionClaims{}, time.Time{}, fmt.Errorf("%w: token expired", common.ErrInvalidToken)
		}
		return models.SessionClaims{}, time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return models.SessionClaims{}, time.Time{}, common.ErrInvalidToken
	}

	session := models.SessionClaims{
		Username: claims.Subject,
		TokenID:  claims.ID,
	}
	for _, a := range claims.Authorities {
		session.Authorities = append(session.Authorities, models.Authority(a))
	}
	return session, claims.ExpiresAt.Time, nil
}
