package whirlwatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/utils"
)

// ListSummary is one entry of the lists overview
type ListSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsOwner     bool   `json:"is_owner"`
	UserCount   int    `json:"user_count"`
}

// List is a list with its records
type List struct {
	ListSummary
	Records []models.MediaRecord
}

// AggregateRating is the server-side average of one record across list members
type AggregateRating struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// mediaItem is a record as serialized by the list endpoint. Catalog fields
// are missing when the backend failed to reach the catalog provider.
type mediaItem struct {
	ID          int64       `json:"id"`
	TMDBID      int64       `json:"tmdb_id"`
	MediaType   string      `json:"media_type"`
	WatchStatus string      `json:"watch_status"`
	Rating      *float64    `json:"rating"`
	AddedDate   string      `json:"added_date"`
	LastUpdated string      `json:"last_updated"`
	AddedBy     models.User `json:"added_by"`
	Title       *string     `json:"title"`
	PosterPath  *string     `json:"poster_path"`
	Overview    *string     `json:"overview"`
	ReleaseDate *string     `json:"release_date"`
	VoteAverage *float64    `json:"vote_average"`
}

// timestampLayouts are tried in order; the backend emits naive UTC isoformat
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// toRecord converts the wire item into a record of the given list
func (m mediaItem) toRecord(list ListSummary) (models.MediaRecord, error) {
	kind, err := models.ParseMediaKind(m.MediaType)
	if err != nil {
		return models.MediaRecord{}, err
	}
	status := models.StatusNotWatched
	if m.WatchStatus != "" {
		if status, err = models.ParseWatchStatus(m.WatchStatus); err != nil {
			return models.MediaRecord{}, err
		}
	}
	added, err := parseTimestamp(m.AddedDate)
	if err != nil {
		return models.MediaRecord{}, err
	}
	updated, err := parseTimestamp(m.LastUpdated)
	if err != nil {
		return models.MediaRecord{}, err
	}
	if updated.Before(added) {
		updated = added
	}

	r := models.MediaRecord{
		ID:             m.ID,
		ExternalID:     m.TMDBID,
		Title:          fmt.Sprintf("TMDB #%d", m.TMDBID),
		PosterPath:     m.PosterPath,
		MediaKind:      kind,
		ExternalRating: m.VoteAverage,
		WatchStatus:    status,
		AddedAt:        added,
		LastUpdatedAt:  updated,
		AddedBy:        m.AddedBy,
		ListID:         list.ID,
		ListName:       list.Name,
	}
	if m.Title != nil && *m.Title != "" {
		r.Title = *m.Title
	}
	if m.Overview != nil {
		r.Overview = *m.Overview
	}
	if m.ReleaseDate != nil {
		r.ReleaseYear = utils.ExtractYear(*m.ReleaseDate)
	}
	// a rating only exists on completed records
	if status == models.StatusCompleted && m.Rating != nil {
		r.PersonalRating = models.Float(models.RoundRating(*m.Rating))
	}
	return r, nil
}

// FetchLists retrieves the lists the user owns or joined
func (c *Client) FetchLists(ctx context.Context) ([]ListSummary, error) {
	var resp struct {
		Lists []ListSummary `json:"lists"`
	}
	if err := c.call(ctx, request{
		operation: "fetch_lists",
		method:    http.MethodGet,
		path:      "/lists",
		result:    &resp,
	}); err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}

	return resp.Lists, nil
}

// FetchList retrieves one list with its records
func (c *Client) FetchList(ctx context.Context, listID int64) (*List, error) {
	var resp struct {
		ListSummary
		MediaItems []mediaItem `json:"media_items"`
	}
	if err := c.call(ctx, request{
		operation: "fetch_list",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/lists/%d", listID),
		result:    &resp,
	}); err != nil {
		return nil, fmt.Errorf("failed to get list %d: %w", listID, err)
	}

	list := &List{ListSummary: resp.ListSummary}
	for _, item := range resp.MediaItems {
		r, err := item.toRecord(resp.ListSummary)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"list_id":   listID,
				"record_id": item.ID,
			}).Warn("Skipping malformed record")
			continue
		}
		list.Records = append(list.Records, r)
	}

	return list, nil
}

// FetchListCollection retrieves every record of a scope. For the all and
// rated scopes, lists that fail for any reason other than authorization
// are skipped.
func (c *Client) FetchListCollection(ctx context.Context, scope models.Scope) ([]models.MediaRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if scope.Kind == models.ScopeList {
		list, err := c.FetchList(ctx, scope.ListID)
		if err != nil {
			return nil, err
		}
		return list.Records, nil
	}

	lists, err := c.FetchLists(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.MediaRecord
	for _, summary := range lists {
		list, err := c.FetchList(ctx, summary.ID)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
				return nil, err
			}
			c.logger.WithError(err).WithField("list_id", summary.ID).Warn("Skipping list that failed to load")
			continue
		}
		for _, r := range list.Records {
			if scope.Kind == models.ScopeRated && !r.IsRated() {
				continue
			}
			records = append(records, r)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"scope":   scope.String(),
		"lists":   len(lists),
		"records": len(records),
	}).Debug("Fetched collection")
	return records, nil
}

// FetchAggregateRatings retrieves the per-record averages of a list, keyed by record id
func (c *Client) FetchAggregateRatings(ctx context.Context, listID int64) (map[int64]AggregateRating, error) {
	var resp struct {
		Ratings []struct {
			MediaID int64 `json:"media_id"`
			AggregateRating
		} `json:"ratings"`
	}
	if err := c.call(ctx, request{
		operation: "fetch_ratings",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/lists/%d/ratings", listID),
		result:    &resp,
	}); err != nil {
		return nil, fmt.Errorf("failed to get ratings of list %d: %w", listID, err)
	}

	out := make(map[int64]AggregateRating, len(resp.Ratings))
	for _, r := range resp.Ratings {
		out[r.MediaID] = r.AggregateRating
	}
	return out, nil
}

// SubmitStatusChange persists a new watch status. Leaving completed clears the rating.
func (c *Client) SubmitStatusChange(ctx context.Context, ref models.RecordRef, status models.WatchStatus) error {
	body := map[string]interface{}{
		"watch_status": status,
	}
	if status != models.StatusCompleted {
		body["rating"] = nil
	}

	if err := c.call(ctx, request{
		operation: "update_status",
		method:    http.MethodPut,
		path:      mediaPath(ref),
		body:      body,
	}); err != nil {
		return fmt.Errorf("failed to update status of record %d: %w", ref.ID, err)
	}
	return nil
}

// SubmitRatingChange persists a rating; nil clears it
func (c *Client) SubmitRatingChange(ctx context.Context, ref models.RecordRef, rating *float64) error {
	body := map[string]interface{}{
		"rating": rating,
	}

	if err := c.call(ctx, request{
		operation: "update_rating",
		method:    http.MethodPut,
		path:      mediaPath(ref),
		body:      body,
	}); err != nil {
		return fmt.Errorf("failed to update rating of record %d: %w", ref.ID, err)
	}
	return nil
}

// SubmitRemoval deletes a record from its list
func (c *Client) SubmitRemoval(ctx context.Context, ref models.RecordRef) error {
	if err := c.call(ctx, request{
		operation: "remove_media",
		method:    http.MethodDelete,
		path:      mediaPath(ref),
	}); err != nil {
		return fmt.Errorf("failed to remove record %d: %w", ref.ID, err)
	}
	return nil
}

// AddMedia adds a catalog title to a list and returns the new record id
func (c *Client) AddMedia(ctx context.Context, listID, externalID int64, kind models.MediaKind) (int64, error) {
	body := map[string]interface{}{
		"tmdb_id":    externalID,
		"media_type": kind,
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, request{
		operation: "add_media",
		method:    http.MethodPost,
		path:      fmt.Sprintf("/lists/%d/media", listID),
		body:      body,
		result:    &resp,
	}); err != nil {
		return 0, fmt.Errorf("failed to add title %d to list %d: %w", externalID, listID, err)
	}
	return resp.ID, nil
}

func mediaPath(ref models.RecordRef) string {
	return fmt.Sprintf("/lists/%d/media/%d", ref.ListID, ref.ID)
}
