package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/metrics"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

// Operation names a kind of mutation
type Operation string

const (
	OpStatus Operation = "status"
	OpRating Operation = "rating"
	OpRemove Operation = "remove"
)

var (
	// ErrInvalidRating is returned without contacting the backend when a
	// rating lies outside 1.0-10.0
	ErrInvalidRating = errors.New("rating must be between 1.0 and 10.0")
	// ErrNotCompleted is returned without contacting the backend when a
	// rating is set on a record that is not completed
	ErrNotCompleted = errors.New("only completed titles can be rated")
)

// MutationError is a backend failure after which the local change was undone
type MutationError struct {
	Op       Operation
	RecordID int64
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s of record %d failed: %v", e.Op, e.RecordID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Message returns the notice shown to the user
func (e *MutationError) Message() string {
	var rejected *whirlwatch.RejectedError
	switch {
	case errors.Is(e.Err, whirlwatch.ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(e.Err, whirlwatch.ErrNotFound):
		return "This title no longer exists on the server. Reload to see the latest list."
	case errors.Is(e.Err, whirlwatch.ErrNetworkFailure):
		return "Could not reach the server. Your change was undone."
	case errors.As(e.Err, &rejected):
		return fmt.Sprintf("The server refused the change (%s). Your change was undone.", rejected.Reason)
	}
	return "Something went wrong. Your change was undone."
}

// MutatorOption customizes a Mutator
type MutatorOption func(*Mutator)

// WithClock sets the time source used to stamp LastUpdatedAt
func WithClock(now func() time.Time) MutatorOption {
	return func(m *Mutator) { m.now = now }
}

// WithUnauthorizedHandler sets the hook run when the backend refuses the session
func WithUnauthorizedHandler(fn func()) MutatorOption {
	return func(m *Mutator) { m.onUnauthorized = fn }
}

// Mutator applies status, rating and removal changes to the view before the
// backend confirms them, and undoes each one that the backend does not accept.
type Mutator struct {
	vm      *viewmodel.ViewModel
	agg     *stats.Aggregator
	backend Backend
	logger  *logrus.Logger
	metrics *metrics.Metrics

	now            func() time.Time
	onUnauthorized func()

	// held while a record and the aggregates change together
	mu       sync.Mutex
	inFlight map[int64]int
}

// NewMutator creates a mutator over one view
func NewMutator(vm *viewmodel.ViewModel, agg *stats.Aggregator, backend Backend, logger *logrus.Logger, m *metrics.Metrics, opts ...MutatorOption) *Mutator {
	mut := &Mutator{
		vm:       vm,
		agg:      agg,
		backend:  backend,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
		inFlight: make(map[int64]int),
	}
	for _, opt := range opts {
		opt(mut)
	}
	return mut
}

// UpdateStatus sets the watch status of a record. Leaving completed clears the rating.
func (m *Mutator) UpdateStatus(ctx context.Context, id int64, status models.WatchStatus) error {
	if _, err := models.ParseWatchStatus(string(status)); err != nil {
		m.metrics.ObserveMutation(string(OpStatus), metrics.OutcomeRejected)
		return err
	}

	prev, rev, err := m.apply(id, func(r *models.MediaRecord) error {
		r.WatchStatus = status
		if status != models.StatusCompleted {
			r.PersonalRating = nil
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = m.backend.SubmitStatusChange(ctx, prev.Ref(), status)
	return m.settle(OpStatus, prev, rev, err)
}

// UpdateRating sets or clears (nil) the personal rating of a completed record
func (m *Mutator) UpdateRating(ctx context.Context, id int64, rating *float64) error {
	if rating != nil {
		if !models.ValidRating(*rating) {
			m.metrics.ObserveMutation(string(OpRating), metrics.OutcomeRejected)
			return ErrInvalidRating
		}
		rating = models.Float(models.RoundRating(*rating))
	}

	prev, rev, err := m.apply(id, func(r *models.MediaRecord) error {
		if r.WatchStatus != models.StatusCompleted {
			return ErrNotCompleted
		}
		r.PersonalRating = rating
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotCompleted) {
			m.metrics.ObserveMutation(string(OpRating), metrics.OutcomeRejected)
		}
		return err
	}

	err = m.backend.SubmitRatingChange(ctx, prev.Ref(), rating)
	return m.settle(OpRating, prev, rev, err)
}

// Remove deletes a record from the view and its list
func (m *Mutator) Remove(ctx context.Context, id int64) error {
	m.mu.Lock()
	prev, err := m.vm.Remove(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.agg.Remove(prev)
	rev := m.vm.Revision(id)
	m.inFlight[id]++
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"op":        OpRemove,
		"record_id": id,
		"list_id":   prev.ListID,
	}).Debug("Applied mutation locally")

	err = m.backend.SubmitRemoval(ctx, prev.Ref())
	return m.settle(OpRemove, prev, rev, err)
}

// Reset replaces the view's collection and recomputes the aggregates as one
// step, so no local change lands between the two
func (m *Mutator) Reset(records []models.MediaRecord) stats.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vm.Load(records)
	return m.agg.Reset(records)
}

// InFlight reports whether a mutation of the record awaits the backend
func (m *Mutator) InFlight(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight[id] > 0
}

// apply changes a record locally and updates the aggregates in the same step.
// It returns the record as it was before and the revision of the change.
func (m *Mutator) apply(id int64, mutate func(r *models.MediaRecord) error) (models.MediaRecord, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vm.Closed() {
		return models.MediaRecord{}, 0, viewmodel.ErrClosed
	}
	prev, ok := m.vm.Get(id)
	if !ok {
		return models.MediaRecord{}, 0, fmt.Errorf("%w: %d", viewmodel.ErrRecordNotFound, id)
	}

	next := prev.Clone()
	if err := mutate(&next); err != nil {
		return models.MediaRecord{}, 0, err
	}
	next.LastUpdatedAt = m.now()
	if next.LastUpdatedAt.Before(next.AddedAt) {
		next.LastUpdatedAt = next.AddedAt
	}

	rev, err := m.vm.Replace(next)
	if err != nil {
		return models.MediaRecord{}, 0, err
	}
	m.agg.ApplyDelta(&prev, &next)
	m.inFlight[id]++

	m.logger.WithFields(logrus.Fields{
		"record_id": id,
		"list_id":   prev.ListID,
		"status":    next.WatchStatus,
	}).Debug("Applied mutation locally")
	return prev, rev, nil
}

// settle commits the mutation or undoes it after a backend failure
func (m *Mutator) settle(op Operation, prev models.MediaRecord, rev uint64, err error) error {
	fields := logrus.Fields{
		"op":        op,
		"record_id": prev.ID,
		"list_id":   prev.ListID,
	}

	if err == nil {
		m.done(prev.ID)
		m.metrics.ObserveMutation(string(op), metrics.OutcomeCommitted)
		m.logger.WithFields(fields).Info("Mutation committed")
		return nil
	}

	if m.rollback(op, prev, rev) {
		m.metrics.ObserveMutation(string(op), metrics.OutcomeRolledBack)
		m.logger.WithError(err).WithFields(fields).Warn("Mutation failed, local change undone")
	} else {
		m.metrics.ObserveMutation(string(op), metrics.OutcomeStale)
		m.logger.WithError(err).WithFields(fields).Warn("Mutation failed, rollback skipped")
	}

	if errors.Is(err, whirlwatch.ErrUnauthorized) && m.onUnauthorized != nil {
		m.onUnauthorized()
	}
	return &MutationError{Op: op, RecordID: prev.ID, Err: err}
}

// rollback restores prev unless the view was discarded or the record changed
// again since revision rev. It reports whether the restore happened.
func (m *Mutator) rollback(op Operation, prev models.MediaRecord, rev uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release(prev.ID)

	if m.vm.Closed() || m.vm.Revision(prev.ID) != rev {
		return false
	}

	if op == OpRemove {
		ok, err := m.vm.Insert(prev)
		if err != nil || !ok {
			return false
		}
		m.agg.Add(prev)
		return true
	}

	current, ok := m.vm.Get(prev.ID)
	if !ok {
		return false
	}
	if _, err := m.vm.Replace(prev); err != nil {
		return false
	}
	m.agg.ApplyDelta(&current, &prev)
	return true
}

func (m *Mutator) done(id int64) {
	m.mu.Lock()
	m.release(id)
	m.mu.Unlock()
}

// release must be called with mu held
func (m *Mutator) release(id int64) {
	if m.inFlight[id] <= 1 {
		delete(m.inFlight, id)
		return
	}
	m.inFlight[id]--
}
