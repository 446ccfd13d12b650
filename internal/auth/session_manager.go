package auth

import (
	"context"
	"errors"
	"time"

	"github.com/vidshare/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// SessionStore keeps the single active refresh token of each user.
type SessionStore interface {
	SaveRefreshToken(ctx context.Context, userID, token string) error
	RefreshToken(ctx context.Context, userID string) (string, error)
	// RotateRefreshToken replaces current with next only while current is
	// still the stored token. It reports whether the swap happened.
	RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}

// Manager issues and rotates access/refresh token pairs.
type Manager struct {
	accessTTL  time.Duration
	refreshTTL time.Duration

	tokens *TokenService
	store  SessionStore
}

// NewManager constructs a Manager that issues access and refresh tokens with the provided TTLs.
func NewManager(tokens *TokenService, accessTTL, refreshTTL time.Duration, store SessionStore) *Manager {
	if tokens == nil || store == nil {
		panic("auth: token service and session store must not be nil")
	}
	return &Manager{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokens:     tokens,
		store:      store,
	}
}

// Issue creates a new token pair for caller and records the refresh token,
// replacing any previously issued one.
func (m *Manager) Issue(ctx context.Context, caller Caller) (models.SessionTokens, error) {
	if caller.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	tokens, err := m.sign(caller)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if err := m.store.SaveRefreshToken(ctx, caller.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, err
	}
	return tokens, nil
}

func (m *Manager) sign(caller Caller) (models.SessionTokens, error) {
	access, accessExp, err := m.tokens.SignAccess(caller, m.accessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}
	refresh, refreshExp, err := m.tokens.SignRefresh(caller, m.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}
	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges the user's current refresh token for a new pair.
// A token that is not the one on record is rejected, and each token can be
// exchanged at most once even under concurrent requests.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	caller, err := m.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return models.SessionTokens{}, ErrRefreshTokenExpired
		}
		return models.SessionTokens{}, ErrSessionNotFound
	}

	tokens, err := m.sign(caller)
	if err != nil {
		return models.SessionTokens{}, err
	}
	rotated, err := m.store.RotateRefreshToken(ctx, caller.ID, refreshToken, tokens.RefreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if !rotated {
		return models.SessionTokens{}, ErrSessionNotFound
	}
	return tokens, nil
}

// Revoke forgets the user's refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.ClearRefreshToken(ctx, userID)
}

// Authenticate verifies an access token.
func (m *Manager) Authenticate(accessToken string) (Caller, error) {
	return m.tokens.ParseAccess(accessToken)
}
