package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/hongminglow/forum-be/internal/models"
)

// ErrInvalidBearer is returned when a bearer JWT fails signature, issuer or expiry checks.
var ErrInvalidBearer = errors.New("invalid bearer token")

// Claims are the JWT claims handed to API clients. SessionToken is the opaque session
// token, so a bearer stays valid only while that session does.
type Claims struct {
	Username     string `json:"username"`
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses signed JWTs wrapping session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a signed JWT for the user's current session token.
func (t *TokenManager) Generate(user models.User) (string, error) {
	if user.SessionToken == "" {
		return "", oops.Code("AUTH_BEARER_NO_SESSION").Errorf("user has no session token")
	}
	now := t.now()
	claims := Claims{
		Username:     user.Username,
		SessionToken: user.SessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", oops.Code("AUTH_BEARER_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// SessionToken validates a bearer JWT and returns the session token it carries.
func (t *TokenManager) SessionToken(bearer string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(bearer, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", oops.Code("AUTH_BEARER_INVALID").Wrap(errors.Join(ErrInvalidBearer, err))
	}
	if claims.SessionToken == "" {
		return "", oops.Code("AUTH_BEARER_INVALID").Wrap(ErrInvalidBearer)
	}
	return claims.SessionToken, nil
}
