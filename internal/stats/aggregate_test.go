package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/whirlwatch/internal/models"
)

func rec(id int64, status models.WatchStatus, rating *float64) models.MediaRecord {
	return models.MediaRecord{ID: id, WatchStatus: status, PersonalRating: rating}
}

func TestComputeMixedCollection(t *testing.T) {
	records := []models.MediaRecord{
		rec(1, models.StatusCompleted, models.Float(8.0)),
		rec(2, models.StatusInProgress, nil),
		rec(3, models.StatusNotWatched, nil),
	}

	s := Compute(records)
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 1, s.InProgressCount)
	assert.Equal(t, 1, s.NotWatchedCount)
	assert.Equal(t, 8.0, s.AverageRating)
}

func TestComputeEmptyHasSentinelAverage(t *testing.T) {
	s := Compute(nil)
	assert.Equal(t, 0, s.TotalCount)
	assert.Equal(t, 0.0, s.AverageRating)
	assert.True(t, s.NoRatings())
}

func TestAverageRoundsToOneDecimal(t *testing.T) {
	s := Compute([]models.MediaRecord{
		rec(1, models.StatusCompleted, models.Float(7.0)),
		rec(2, models.StatusCompleted, models.Float(8.0)),
		rec(3, models.StatusCompleted, models.Float(8.0)),
	})
	// 23/3 = 7.666...
	assert.Equal(t, 7.7, s.AverageRating)
}

func TestApplyDeltaStatusAndRating(t *testing.T) {
	before := []models.MediaRecord{
		rec(1, models.StatusCompleted, models.Float(8.0)),
		rec(2, models.StatusInProgress, nil),
		rec(3, models.StatusNotWatched, nil),
	}
	s := Compute(before)

	prev := before[1]
	next := rec(2, models.StatusCompleted, models.Float(6.0))
	s = s.ApplyDelta(&prev, &next)

	assert.Equal(t, 2, s.CompletedCount)
	assert.Equal(t, 0, s.InProgressCount)
	assert.Equal(t, 1, s.NotWatchedCount)
	assert.Equal(t, 7.0, s.AverageRating)
}

func TestApplyDeltaInsertAndRemove(t *testing.T) {
	a := rec(1, models.StatusCompleted, models.Float(9.5))
	s := Compute([]models.MediaRecord{a})

	s = s.ApplyDelta(&a, nil)
	assert.Equal(t, Compute(nil), s)

	s = s.ApplyDelta(nil, &a)
	assert.Equal(t, Compute([]models.MediaRecord{a}), s)
}

// Incremental updates must match a full recompute exactly, for any mutation.
func TestApplyDeltaMatchesCompute(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []models.WatchStatus{models.StatusNotWatched, models.StatusInProgress, models.StatusCompleted}

	randomRecord := func(id int64) models.MediaRecord {
		status := statuses[rng.Intn(len(statuses))]
		var rating *float64
		if status == models.StatusCompleted && rng.Intn(3) > 0 {
			rating = models.Float(float64(10+rng.Intn(91)) / 10)
		}
		return rec(id, status, rating)
	}

	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(12)
		records := make([]models.MediaRecord, n)
		for i := range records {
			records[i] = randomRecord(int64(i))
		}
		running := Compute(records)

		for step := 0; step < 10; step++ {
			idx := rng.Intn(len(records))
			prev := records[idx]
			next := randomRecord(prev.ID)
			records[idx] = next

			running = running.ApplyDelta(&prev, &next)
			require.Equal(t, Compute(records), running, "iteration %d step %d", iter, step)
		}
	}
}

func TestAggregatorTracksRunningSummary(t *testing.T) {
	agg := NewAggregator()
	records := []models.MediaRecord{rec(1, models.StatusNotWatched, nil)}
	agg.Reset(records)

	prev := records[0]
	next := rec(1, models.StatusCompleted, models.Float(5.5))
	got := agg.ApplyDelta(&prev, &next)

	assert.Equal(t, Compute([]models.MediaRecord{next}), got)
	assert.Equal(t, got, agg.Snapshot())
}
