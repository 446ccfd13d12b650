package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidshare/backend/internal/response"
)

// SubscriptionHandler implements the subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionService
}

// Toggle handles POST /subscription/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	state, err := h.Subscriptions.Toggle(ctx, caller, chi.URLParam(r, "channelId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	message := "channel unsubscribed successfully"
	if state.IsSubscribed {
		message = "channel subscribed successfully"
	}
	response.JSON(ctx, w, http.StatusOK, state, message)
}

// Subscribers handles GET /subscription/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscribers, err := h.Subscriptions.Subscribers(ctx, chi.URLParam(r, "channelId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, subscribers, "subscribers fetched successfully")
}

// SubscribedChannels handles GET /subscription/u/{subscriberId}.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channels, err := h.Subscriptions.SubscribedChannels(ctx, chi.URLParam(r, "subscriberId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, channels, "subscribed channels fetched successfully")
}
