package service

import (
	"context"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/toggle"
	"github.com/vidshare/backend/internal/views"
)

// SubscriptionState is the caller's subscription to a channel after a toggle.
type SubscriptionState struct {
	IsSubscribed     bool  `json:"isSubscribed"`
	SubscribersCount int64 `json:"subscribersCount"`
}

// SubscriptionService toggles and lists channel subscriptions.
type SubscriptionService struct {
	users   repositories.UserRepository
	edges   repositories.EdgeRepository
	toggler Toggler
	views   *views.Composer
}

// NewSubscriptionService wires a SubscriptionService.
func NewSubscriptionService(users repositories.UserRepository, edges repositories.EdgeRepository,
	toggler Toggler, composer *views.Composer) *SubscriptionService {
	return &SubscriptionService{users: users, edges: edges, toggler: toggler, views: composer}
}

// Toggle subscribes caller to channelID, or unsubscribes an existing subscription.
func (s *SubscriptionService) Toggle(ctx context.Context, caller auth.Caller, channelID string) (SubscriptionState, error) {
	if err := requireID("channelId", channelID); err != nil {
		return SubscriptionState{}, err
	}
	if channelID == caller.ID {
		return SubscriptionState{}, apperr.Validation("cannot subscribe to your own channel",
			apperr.FieldError{Field: "channelId", Message: "cannot subscribe to your own channel"})
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return SubscriptionState{}, notFound(err, "channel not found")
	}

	key := toggle.Key{Kind: toggle.ChannelSubscription, SubjectID: caller.ID, TargetID: channelID}
	state, err := s.toggler.Toggle(ctx, key)
	if err != nil {
		return SubscriptionState{}, toggleError(err)
	}
	count, err := s.edges.CountEdges(ctx, key.Kind, channelID)
	if err != nil {
		return SubscriptionState{}, err
	}
	return SubscriptionState{IsSubscribed: state.Present, SubscribersCount: count}, nil
}

// Subscribers lists the users subscribed to channelID.
func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string) ([]views.Subscriber, error) {
	if err := requireID("channelId", channelID); err != nil {
		return nil, err
	}
	return s.views.ChannelSubscribers(ctx, channelID)
}

// SubscribedChannels lists the channels subscriberID follows.
func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID string) ([]views.SubscribedChannel, error) {
	if err := requireID("subscriberId", subscriberID); err != nil {
		return nil, err
	}
	return s.views.SubscribedChannels(ctx, subscriberID)
}
