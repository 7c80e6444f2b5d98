// Package stats derives summary statistics from a record collection.
package stats

import (
	"math"
	"sync"

	"github.com/amaumene/whirlwatch/internal/models"
)

// Summary holds the aggregates of a whole scope
type Summary struct {
	TotalCount      int     `json:"total_count"`
	CompletedCount  int     `json:"completed_count"`
	InProgressCount int     `json:"in_progress_count"`
	NotWatchedCount int     `json:"not_watched_count"`
	AverageRating   float64 `json:"average_rating"` // 0 means no ratings yet
	RatedCount      int     `json:"rated_count"`

	// running sum of ratings in tenths, exact for one-decimal ratings
	ratedTenths int64
}

// Compute derives the summary of records in a single pass
func Compute(records []models.MediaRecord) Summary {
	var s Summary
	for i := range records {
		s.add(&records[i])
	}
	s.refreshAverage()
	return s
}

// ApplyDelta moves the summary from prev to next for one record.
// A nil side stands for an absent record (insertion or removal).
func (s Summary) ApplyDelta(prev, next *models.MediaRecord) Summary {
	if prev != nil {
		s.remove(prev)
	}
	if next != nil {
		s.add(next)
	}
	s.refreshAverage()
	return s
}

// NoRatings reports whether the average is the "no ratings yet" sentinel
func (s Summary) NoRatings() bool {
	return s.RatedCount == 0
}

func (s *Summary) add(r *models.MediaRecord) {
	s.TotalCount++
	s.bump(r.WatchStatus, 1)
	if r.PersonalRating != nil {
		s.RatedCount++
		s.ratedTenths += tenths(*r.PersonalRating)
	}
}

func (s *Summary) remove(r *models.MediaRecord) {
	s.TotalCount--
	s.bump(r.WatchStatus, -1)
	if r.PersonalRating != nil {
		s.RatedCount--
		s.ratedTenths -= tenths(*r.PersonalRating)
	}
}

func (s *Summary) bump(status models.WatchStatus, n int) {
	switch status {
	case models.StatusCompleted:
		s.CompletedCount += n
	case models.StatusInProgress:
		s.InProgressCount += n
	default:
		s.NotWatchedCount += n
	}
}

func (s *Summary) refreshAverage() {
	if s.RatedCount == 0 {
		s.AverageRating = 0
		return
	}
	// mean in tenths, rounded, back to one decimal
	s.AverageRating = math.Round(float64(s.ratedTenths)/float64(s.RatedCount)) / 10
}

func tenths(v float64) int64 {
	return int64(math.Round(v * 10))
}

// Aggregator keeps the running summary of one view
type Aggregator struct {
	mu      sync.Mutex
	summary Summary
}

// NewAggregator creates an aggregator with an empty summary
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Reset recomputes the summary from the full collection
func (a *Aggregator) Reset(records []models.MediaRecord) Summary {
	s := Compute(records)
	a.mu.Lock()
	a.summary = s
	a.mu.Unlock()
	return s
}

// ApplyDelta updates the running summary incrementally
func (a *Aggregator) ApplyDelta(prev, next *models.MediaRecord) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary = a.summary.ApplyDelta(prev, next)
	return a.summary
}

// Snapshot returns the current summary
func (a *Aggregator) Snapshot() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// Add accounts for an inserted record
func (a *Aggregator) Add(r models.MediaRecord) Summary {
	return a.ApplyDelta(nil, &r)
}

// Remove accounts for a removed record
func (a *Aggregator) Remove(r models.MediaRecord) Summary {
	return a.ApplyDelta(&r, nil)
}
