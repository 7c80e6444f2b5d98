package models

import (
	"math"
	"time"
)

// User identifies the contributor of a record
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// MediaRecord is one user's relationship to one catalog title within one list
type MediaRecord struct {
	ID         int64 `json:"id"`
	ExternalID int64 `json:"tmdb_id"` // shared by every list holding the title

	// Catalog metadata (read-only)
	Title          string    `json:"title"`
	PosterPath     *string   `json:"poster_path"`
	ReleaseYear    *int      `json:"release_year"`
	Overview       string    `json:"overview,omitempty"`
	MediaKind      MediaKind `json:"media_type"`
	ExternalRating *float64  `json:"vote_average"`

	// Watch state
	WatchStatus    WatchStatus `json:"watch_status"`
	PersonalRating *float64    `json:"rating"` // only set while WatchStatus is completed

	AddedAt       time.Time `json:"added_date"`
	LastUpdatedAt time.Time `json:"last_updated"`

	AddedBy  User   `json:"added_by"`
	ListID   int64  `json:"list_id"`
	ListName string `json:"list_name"`

	// Server-side aggregate for the title within its list
	ListAverageRating *float64 `json:"list_average_rating"`
	RatingCount       int      `json:"rating_count"`
}

// Ref returns the backend address of the record
func (r MediaRecord) Ref() RecordRef {
	return RecordRef{ListID: r.ListID, ID: r.ID}
}

// Clone returns a deep copy so callers never share pointer fields
func (r MediaRecord) Clone() MediaRecord {
	c := r
	c.PosterPath = clonePtr(r.PosterPath)
	c.ReleaseYear = clonePtr(r.ReleaseYear)
	c.ExternalRating = clonePtr(r.ExternalRating)
	c.PersonalRating = clonePtr(r.PersonalRating)
	c.ListAverageRating = clonePtr(r.ListAverageRating)
	return c
}

// IsRated reports whether the record carries a personal rating
func (r MediaRecord) IsRated() bool {
	return r.PersonalRating != nil
}

// RecordRef addresses a record on the backend
type RecordRef struct {
	ListID int64
	ID     int64
}

// RoundRating rounds a rating to one decimal place
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// ValidRating reports whether v lies within the personal rating domain
func ValidRating(v float64) bool {
	return !math.IsNaN(v) && v >= MinRating && v <= MaxRating
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
