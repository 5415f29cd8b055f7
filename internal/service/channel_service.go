package service

import (
	"context"
	"errors"
	"strings"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

type profileStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

// socialGraphReader answers subscription and viewing questions about users.
type socialGraphReader interface {
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, userID string) (int64, error)
	IsSubscribed(ctx context.Context, userID string, channelID string) (bool, error)
	WatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryItem, error)
}

type ChannelService struct {
	users  profileStore
	social socialGraphReader
}

func NewChannelService(users profileStore, social socialGraphReader) *ChannelService {
	return &ChannelService{users: users, social: social}
}

// Profile returns the public channel view of username as seen by viewerID.
func (s *ChannelService) Profile(ctx context.Context, username string, viewerID string) (model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return model.ChannelProfile{}, apierror.ValidationFailed("username is missing", "username")
	}

	channel, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ChannelProfile{}, apierror.NotFound("channel does not exist", username)
	}
	if err != nil {
		return model.ChannelProfile{}, apierror.Unavailable(err)
	}

	subscribers, err := s.social.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return model.ChannelProfile{}, apierror.Unavailable(err)
	}

	subscribedTo, err := s.social.CountSubscribedTo(ctx, channel.ID)
	if err != nil {
		return model.ChannelProfile{}, apierror.Unavailable(err)
	}

	var subscribed bool
	if viewerID != "" && viewerID != channel.ID {
		subscribed, err = s.social.IsSubscribed(ctx, viewerID, channel.ID)
		if err != nil {
			return model.ChannelProfile{}, apierror.Unavailable(err)
		}
	}

	return model.ChannelProfile{
		SafeUser:                  channel.Safe(),
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              subscribed,
	}, nil
}

func (s *ChannelService) WatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryItem, error) {
	items, err := s.social.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apierror.Unavailable(err)
	}
	return items, nil
}
