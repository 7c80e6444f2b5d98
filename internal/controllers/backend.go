package controllers

//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks

import (
	"context"

	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
)

// Backend persists mutations of the watch state
type Backend interface {
	SubmitStatusChange(ctx context.Context, ref models.RecordRef, status models.WatchStatus) error
	SubmitRatingChange(ctx context.Context, ref models.RecordRef, rating *float64) error
	SubmitRemoval(ctx context.Context, ref models.RecordRef) error
}

// CollectionSource loads the records of a scope and adds titles to lists
type CollectionSource interface {
	FetchListCollection(ctx context.Context, scope models.Scope) ([]models.MediaRecord, error)
	FetchAggregateRatings(ctx context.Context, listID int64) (map[int64]whirlwatch.AggregateRating, error)
	AddMedia(ctx context.Context, listID, externalID int64, kind models.MediaKind) (int64, error)
}
