package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/response"
)

// AccessTokenCookie is the cookie holding the access token for browser clients.
const AccessTokenCookie = "accessToken"

// Authenticator verifies access tokens.
type Authenticator interface {
	Authenticate(accessToken string) (auth.Caller, error)
}

// Authenticate rejects requests without a valid access token and places the
// verified caller in the request context. The token is read from the
// Authorization header first and the access token cookie second.
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				response.Error(ctx, w, apperr.Unauthenticated("unauthorized request"))
				return
			}

			caller, err := authenticator.Authenticate(token)
			if err != nil {
				msg := "invalid access token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "access token expired"
				}
				response.Error(ctx, w, apperr.Unauthenticated(msg))
				return
			}

			ctx = auth.WithCaller(ctx, caller)
			ctx = logging.With(ctx, "user_id", caller.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
