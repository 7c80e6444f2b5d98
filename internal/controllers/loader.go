package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/metrics"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

var (
	// ErrAlreadyInList is returned when adding a title the list already holds
	ErrAlreadyInList = errors.New("title already in list")
	// ErrNoScope is returned by Reload before any scope was loaded
	ErrNoScope = errors.New("no scope loaded")
)

// Loader builds the view of a scope from the backend
type Loader struct {
	source  CollectionSource
	vm      *viewmodel.ViewModel
	mutator *Mutator
	logger  *logrus.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	scope  models.Scope
	loaded bool
}

// NewLoader creates a loader for one view
func NewLoader(source CollectionSource, vm *viewmodel.ViewModel, mutator *Mutator, logger *logrus.Logger, m *metrics.Metrics) *Loader {
	return &Loader{
		source:  source,
		vm:      vm,
		mutator: mutator,
		logger:  logger,
		metrics: m,
	}
}

// Load fetches the records of scope, replaces the view's collection and
// recomputes the aggregates
func (l *Loader) Load(ctx context.Context, scope models.Scope) (stats.Summary, error) {
	if err := scope.Validate(); err != nil {
		return stats.Summary{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.WithField("scope", scope.String()).Info("Loading collection")

	records, err := l.source.FetchListCollection(ctx, scope)
	if err != nil {
		l.metrics.ObserveReload(string(scope.Kind), err)
		return stats.Summary{}, fmt.Errorf("failed to load %s: %w", scope, err)
	}

	if scope.Kind == models.ScopeList {
		if err := l.attachListAverages(ctx, scope.ListID, records); err != nil {
			if errors.Is(err, whirlwatch.ErrUnauthorized) {
				l.metrics.ObserveReload(string(scope.Kind), err)
				return stats.Summary{}, err
			}
			l.logger.WithError(err).WithField("list_id", scope.ListID).Warn("List averages unavailable")
		}
	}

	summary := l.mutator.Reset(records)
	l.scope, l.loaded = scope, true

	l.metrics.ObserveReload(string(scope.Kind), nil)
	l.metrics.SetSummary(summary)
	l.logger.WithFields(logrus.Fields{
		"scope":     scope.String(),
		"records":   summary.TotalCount,
		"completed": summary.CompletedCount,
	}).Info("Collection loaded")
	return summary, nil
}

// Reload loads the current scope again
func (l *Loader) Reload(ctx context.Context) (stats.Summary, error) {
	scope, ok := l.Scope()
	if !ok {
		return stats.Summary{}, ErrNoScope
	}
	return l.Load(ctx, scope)
}

// Scope returns the loaded scope
func (l *Loader) Scope() (models.Scope, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scope, l.loaded
}

// AddTitle adds a catalog title to a list and reloads the view so the new
// record carries the backend's id and timestamps
func (l *Loader) AddTitle(ctx context.Context, listID, externalID int64, kind models.MediaKind) (int64, error) {
	if _, err := models.ParseMediaKind(string(kind)); err != nil {
		return 0, err
	}

	existing, found, err := l.findInList(ctx, listID, externalID)
	if err != nil {
		return 0, err
	}
	if found {
		return 0, fmt.Errorf("%w: record %d, remove it instead", ErrAlreadyInList, existing.ID)
	}

	id, err := l.source.AddMedia(ctx, listID, externalID, kind)
	if err != nil {
		return 0, err
	}
	l.logger.WithFields(logrus.Fields{
		"list_id":   listID,
		"tmdb_id":   externalID,
		"record_id": id,
	}).Info("Added title to list")

	if l.covers(listID) {
		if _, err := l.Reload(ctx); err != nil {
			return id, fmt.Errorf("title added but reload failed: %w", err)
		}
	}
	return id, nil
}

// RemoveTitle removes a catalog title from a list through the mutator
func (l *Loader) RemoveTitle(ctx context.Context, listID, externalID int64) error {
	r, ok := l.vm.FindByExternalID(listID, externalID)
	if !ok {
		return fmt.Errorf("%w: title %d in list %d", viewmodel.ErrRecordNotFound, externalID, listID)
	}
	return l.mutator.Remove(ctx, r.ID)
}

// findInList looks the title up in the view when the scope holds the whole
// list, and asks the backend otherwise
func (l *Loader) findInList(ctx context.Context, listID, externalID int64) (models.MediaRecord, bool, error) {
	if l.covers(listID) {
		r, ok := l.vm.FindByExternalID(listID, externalID)
		return r, ok, nil
	}

	records, err := l.source.FetchListCollection(ctx, models.ListScope(listID))
	if err != nil {
		return models.MediaRecord{}, false, fmt.Errorf("failed to check list %d: %w", listID, err)
	}
	for _, r := range records {
		if r.ExternalID == externalID {
			return r, true, nil
		}
	}
	return models.MediaRecord{}, false, nil
}

// covers reports whether the loaded scope holds every record of the list
func (l *Loader) covers(listID int64) bool {
	scope, ok := l.Scope()
	if !ok {
		return false
	}
	return scope.Kind == models.ScopeAll || (scope.Kind == models.ScopeList && scope.ListID == listID)
}

func (l *Loader) attachListAverages(ctx context.Context, listID int64, records []models.MediaRecord) error {
	ratings, err := l.source.FetchAggregateRatings(ctx, listID)
	if err != nil {
		return err
	}
	for i := range records {
		agg, ok := ratings[records[i].ID]
		if !ok {
			continue
		}
		if agg.Average != nil {
			records[i].ListAverageRating = models.Float(models.RoundRating(*agg.Average))
		}
		records[i].RatingCount = agg.Count
	}
	return nil
}
