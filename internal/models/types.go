package models

import "fmt"

// MediaKind represents the type of media (movie or tv show)
type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
)

// ParseMediaKind validates a media kind string
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case MediaKindMovie, MediaKindTV:
		return MediaKind(s), nil
	}
	return "", fmt.Errorf("invalid media kind %q", s)
}

// WatchStatus represents a user's progress on a title
type WatchStatus string

const (
	StatusNotWatched WatchStatus = "not_watched"
	StatusInProgress WatchStatus = "in_progress"
	StatusCompleted  WatchStatus = "completed"
)

// ParseWatchStatus validates a watch status string
func ParseWatchStatus(s string) (WatchStatus, error) {
	switch WatchStatus(s) {
	case StatusNotWatched, StatusInProgress, StatusCompleted:
		return WatchStatus(s), nil
	}
	return "", fmt.Errorf("invalid watch status %q", s)
}

// Rating bounds for personal ratings
const (
	MinRating = 1.0
	MaxRating = 10.0
)
