package repository

import (
	"context"
	"fmt"

	"go-videotube/internal/model"
)

const watchHistoryLimit = 100

// SocialRepository answers the subscription and watch-history read-model
// queries with SQL joins and aggregates.
type SocialRepository struct {
	db DBTX
}

func NewSocialRepository(db DBTX) *SocialRepository {
	return &SocialRepository{db: db}
}

func (r *SocialRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}

func (r *SocialRepository) CountSubscribedTo(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscribed channels: %w", err)
	}
	return count, nil
}

func (r *SocialRepository) IsSubscribed(ctx context.Context, userID string, channelID string) (bool, error) {
	var subscribed bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		userID, channelID).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return subscribed, nil
}

// WatchHistory returns the most recently watched published videos, newest
// first, each joined with a summary of its owner.
func (r *SocialRepository) WatchHistory(ctx context.Context, userID string) ([]model.WatchHistoryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT v.id, v.title, v.thumbnail, v.video_file, v.duration, v.views,
		        o.id, o.username, o.full_name, o.avatar, w.watched_at
		 FROM watch_history w
		 JOIN videos v ON v.id = w.video_id
		 JOIN users o ON o.id = v.owner_id
		 WHERE w.user_id = $1 AND v.is_published
		 ORDER BY w.watched_at DESC
		 LIMIT $2`, userID, watchHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	items := make([]model.WatchHistoryItem, 0)
	for rows.Next() {
		var item model.WatchHistoryItem
		if err := rows.Scan(
			&item.VideoID, &item.Title, &item.Thumbnail, &item.VideoFile, &item.Duration, &item.Views,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.Avatar, &item.WatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
