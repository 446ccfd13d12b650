package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "vidshare"

var (
	// ErrInvalidToken indicates a token that failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

type claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 JWTs. Access and refresh tokens use
// separate secrets so one can never be presented as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

// NewTokenService creates a TokenService from the two signing secrets.
func NewTokenService(accessSecret, refreshSecret string) (*TokenService, error) {
	if len(accessSecret) < 16 || len(refreshSecret) < 16 {
		return nil, errors.New("auth: token secrets must be at least 16 characters")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}, nil
}

// SignAccess issues an access token for caller.
func (s *TokenService) SignAccess(caller Caller, ttl time.Duration) (string, time.Time, error) {
	return s.sign(s.accessSecret, caller, ttl)
}

// SignRefresh issues a refresh token for caller.
func (s *TokenService) SignRefresh(caller Caller, ttl time.Duration) (string, time.Time, error) {
	return s.sign(s.refreshSecret, caller, ttl)
}

// ParseAccess verifies an access token and returns its caller.
func (s *TokenService) ParseAccess(token string) (Caller, error) {
	return s.parse(s.accessSecret, token)
}

// ParseRefresh verifies a refresh token and returns its caller.
func (s *TokenService) ParseRefresh(token string) (Caller, error) {
	return s.parse(s.refreshSecret, token)
}

func (s *TokenService) sign(secret []byte, caller Caller, ttl time.Duration) (string, time.Time, error) {
	if caller.ID == "" {
		return "", time.Time{}, errors.New("auth: caller id must be provided")
	}
	now := s.now().UTC()
	expires := now.Add(ttl)

	c := claims{
		Username: caller.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   caller.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, expires, nil
}

func (s *TokenService) parse(secret []byte, raw string) (Caller, error) {
	if raw == "" {
		return Caller{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(raw, &claims{},
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Caller{}, ErrTokenExpired
		}
		return Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return Caller{}, ErrInvalidToken
	}
	return Caller{ID: c.Subject, Username: c.Username}, nil
}
