package model

import "time"

type ChannelProfile struct {
	SafeUser
	SubscribersCount          int64 `json:"subscribersCount"`
	ChannelsSubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed              bool  `json:"isSubscribed"`
}

type VideoOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

type WatchHistoryItem struct {
	VideoID   string     `json:"videoId"`
	Title     string     `json:"title"`
	Thumbnail string     `json:"thumbnail"`
	VideoFile string     `json:"videoFile"`
	Duration  float64    `json:"duration"`
	Views     int64      `json:"views"`
	Owner     VideoOwner `json:"owner"`
	WatchedAt time.Time  `json:"watchedAt"`
}
