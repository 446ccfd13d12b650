package auth

import (
	"context"
	"testing"

	"github.com/vidshare/backend/internal/apperr"
)

func TestAssertOwner(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		caller  Caller
		allowed bool
	}{
		{name: "owner", owner: "u1", caller: Caller{ID: "u1"}, allowed: true},
		{name: "whitespace tolerant", owner: " u1 ", caller: Caller{ID: "u1"}, allowed: true},
		{name: "other user", owner: "u1", caller: Caller{ID: "u2"}},
		{name: "anonymous", owner: "u1", caller: Caller{}},
		{name: "ownerless resource", owner: "", caller: Caller{ID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertOwner(tt.owner, tt.caller)
			if tt.allowed {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if !apperr.Is(err, apperr.KindForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestCallerContextRoundTrip(t *testing.T) {
	if _, ok := CallerFromContext(context.Background()); ok {
		t.Fatal("expected no caller on empty context")
	}

	ctx := WithCaller(context.Background(), Caller{ID: "u1", Username: "ana"})
	caller, ok := CallerFromContext(ctx)
	if !ok || caller.ID != "u1" || caller.Username != "ana" {
		t.Fatalf("unexpected caller %+v (ok=%v)", caller, ok)
	}
}
