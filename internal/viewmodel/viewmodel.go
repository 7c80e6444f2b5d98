// Package viewmodel holds the collection of one view and computes the page
// shown to the user from its filter, sort and pagination state.
package viewmodel

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/amaumene/whirlwatch/internal/models"
)

var (
	// ErrClosed is returned by mutating calls once the view has been discarded
	ErrClosed = errors.New("view model closed")
	// ErrRecordNotFound is returned when no record has the requested id
	ErrRecordNotFound = errors.New("record not found")
)

func errNotFound(id int64) error {
	return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
}

// Options configures a view model
type Options struct {
	PageSize    int
	DefaultSort SortKey
	Language    language.Tag
}

// Page is the computed, displayed slice of the collection
type Page struct {
	Items        []models.MediaRecord
	Number       int
	TotalPages   int
	TotalMatches int
	// Closest title in scope when a search matched nothing
	Suggestion string
}

// ViewModel is the authoritative collection of one view instance
type ViewModel struct {
	mu sync.Mutex

	// collection order: load order, re-inserted records go last
	records   []models.MediaRecord
	revisions map[int64]uint64
	// revision counter, never reset so stale revisions cannot match after a load
	seq uint64

	filters  Filters
	sortKey  SortKey
	page     int
	pageSize int

	collator *collate.Collator
	folder   cases.Caser
	closed   bool
}

// New creates an empty view model
func New(opts Options) *ViewModel {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = DefaultSort
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}

	return &ViewModel{
		revisions: make(map[int64]uint64),
		sortKey:   opts.DefaultSort,
		page:      1,
		pageSize:  opts.PageSize,
		collator:  collate.New(opts.Language),
		folder:    cases.Fold(),
	}
}

// Load replaces the collection wholesale and returns to page 1
func (v *ViewModel) Load(records []models.MediaRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = make([]models.MediaRecord, len(records))
	for i := range records {
		v.records[i] = records[i].Clone()
	}
	v.revisions = make(map[int64]uint64, len(records))
	v.page = 1
}

// SetFilter updates one filter parameter and returns to page 1
func (v *ViewModel) SetFilter(field FilterField, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.filters.set(field, value); err != nil {
		return err
	}
	v.page = 1
	return nil
}

// Filters returns the active filter parameters
func (v *ViewModel) Filters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// SetSort changes the ordering and keeps the current page number
func (v *ViewModel) SetSort(key SortKey) error {
	if _, err := ParseSortKey(string(key)); err != nil {
		return err
	}
	v.mu.Lock()
	v.sortKey = key
	v.mu.Unlock()
	return nil
}

// SortKey returns the active sort key
func (v *ViewModel) SortKey() SortKey {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sortKey
}

// SetPage moves to page n; out of range values are clamped by Page
func (v *ViewModel) SetPage(n int) {
	v.mu.Lock()
	v.page = n
	v.mu.Unlock()
}

// Page filters, sorts and slices the collection
func (v *ViewModel) Page() Page {
	v.mu.Lock()
	defer v.mu.Unlock()

	sorted := v.filteredSorted()

	totalPages := (len(sorted) + v.pageSize - 1) / v.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if v.page > totalPages {
		v.page = totalPages
	}
	if v.page < 1 {
		v.page = 1
	}

	start := (v.page - 1) * v.pageSize
	end := min(start+v.pageSize, len(sorted))

	items := make([]models.MediaRecord, 0, end-start)
	for _, r := range sorted[start:end] {
		items = append(items, r.Clone())
	}

	page := Page{
		Items:        items,
		Number:       v.page,
		TotalPages:   totalPages,
		TotalMatches: len(sorted),
	}
	if len(sorted) == 0 && v.filters.Search != "" {
		page.Suggestion = v.suggest(v.filters.Search)
	}
	return page
}

// Spin picks one record of the filtered set at random
func (v *ViewModel) Spin(rng *rand.Rand) (models.MediaRecord, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	candidates := v.filtered()
	if len(candidates) == 0 {
		return models.MediaRecord{}, false
	}
	return candidates[rng.Intn(len(candidates))].Clone(), true
}

// filtered returns pointers into the collection, in collection order
func (v *ViewModel) filtered() []*models.MediaRecord {
	search := v.folder.String(v.filters.Search)

	out := make([]*models.MediaRecord, 0, len(v.records))
	for i := range v.records {
		r := &v.records[i]
		if v.filters.matches(r, v.folder.String(r.Title), search) {
			out = append(out, r)
		}
	}
	return out
}

func (v *ViewModel) filteredSorted() []*models.MediaRecord {
	out := v.filtered()
	compare := comparator(v.sortKey, v.collator)
	if v.sortKey.descending() {
		slices.SortStableFunc(out, func(a, b *models.MediaRecord) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}

// suggest returns the title closest to query, if any is reasonably close
func (v *ViewModel) suggest(query string) string {
	q := v.folder.String(query)
	limit := max(2, utf8.RuneCountInString(q)/3)

	best, bestDist := "", limit+1
	for i := range v.records {
		d := levenshtein.ComputeDistance(q, v.folder.String(v.records[i].Title))
		if d < bestDist {
			best, bestDist = v.records[i].Title, d
		}
	}
	return best
}

// Get returns a copy of the record with the given id
func (v *ViewModel) Get(id int64) (models.MediaRecord, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i := v.indexOf(id); i >= 0 {
		return v.records[i].Clone(), true
	}
	return models.MediaRecord{}, false
}

// Records returns a copy of the whole collection
func (v *ViewModel) Records() []models.MediaRecord {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]models.MediaRecord, len(v.records))
	for i := range v.records {
		out[i] = v.records[i].Clone()
	}
	return out
}

// Len returns the size of the collection
func (v *ViewModel) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.records)
}

// Contains reports whether the list already holds the catalog title
func (v *ViewModel) Contains(listID, externalID int64) bool {
	_, ok := v.FindByExternalID(listID, externalID)
	return ok
}

// FindByExternalID returns the record of a catalog title within a list
func (v *ViewModel) FindByExternalID(listID, externalID int64) (models.MediaRecord, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.records {
		if v.records[i].ListID == listID && v.records[i].ExternalID == externalID {
			return v.records[i].Clone(), true
		}
	}
	return models.MediaRecord{}, false
}

// Replace swaps in a new version of an existing record and returns its revision
func (v *ViewModel) Replace(r models.MediaRecord) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return 0, ErrClosed
	}
	i := v.indexOf(r.ID)
	if i < 0 {
		return 0, errNotFound(r.ID)
	}
	v.records[i] = r.Clone()
	return v.bump(r.ID), nil
}

// Revision returns the revision of the last change applied to a record,
// 0 when it is unchanged since load
func (v *ViewModel) Revision(id int64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.revisions[id]
}

// Remove deletes a record and returns it
func (v *ViewModel) Remove(id int64) (models.MediaRecord, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return models.MediaRecord{}, ErrClosed
	}
	i := v.indexOf(id)
	if i < 0 {
		return models.MediaRecord{}, errNotFound(id)
	}
	r := v.records[i]
	v.records = slices.Delete(v.records, i, i+1)
	v.bump(id)
	return r, nil
}

// Insert adds a record at the end of the collection.
// It reports false when a record with the same id is already present.
func (v *ViewModel) Insert(r models.MediaRecord) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return false, ErrClosed
	}
	if v.indexOf(r.ID) >= 0 {
		return false, nil
	}
	v.records = append(v.records, r.Clone())
	v.bump(r.ID)
	return true, nil
}

// Close discards the view; pending callbacks must not touch it afterwards
func (v *ViewModel) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Closed reports whether the view was discarded
func (v *ViewModel) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *ViewModel) bump(id int64) uint64 {
	v.seq++
	v.revisions[id] = v.seq
	return v.seq
}

func (v *ViewModel) indexOf(id int64) int {
	for i := range v.records {
		if v.records[i].ID == id {
			return i
		}
	}
	return -1
}
