package auth

import (
	"context"
	"strings"

	"github.com/vidshare/backend/internal/apperr"
)

// Caller is the authenticated identity on whose behalf a service call runs.
type Caller struct {
	ID       string
	Username string
}

// AssertOwner returns a forbidden error unless caller owns the resource.
// Identities are compared as canonical trimmed strings.
func AssertOwner(ownerID string, caller Caller) error {
	owner := strings.TrimSpace(ownerID)
	if owner == "" || owner != strings.TrimSpace(caller.ID) {
		return apperr.Forbidden("you do not have permission to perform this action")
	}
	return nil
}

type ctxKey struct{}

// WithCaller carries the verified caller from the authentication middleware to handlers.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, caller)
}

// CallerFromContext returns the caller placed by WithCaller, if any.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(ctxKey{}).(Caller)
	return caller, ok && caller.ID != ""
}
