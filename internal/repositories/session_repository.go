package repositories

import "context"

// SessionRepository keeps the single active refresh token of each user.
type SessionRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string) error
	RefreshToken(ctx context.Context, userID string) (string, error)
	// RotateRefreshToken replaces current with next only while current is
	// still the stored token. It reports whether the swap happened.
	RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}
