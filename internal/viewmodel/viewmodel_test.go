package viewmodel

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/amaumene/whirlwatch/internal/models"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func record(id int64, title string) models.MediaRecord {
	return models.MediaRecord{
		ID:            id,
		ExternalID:    1000 + id,
		Title:         title,
		MediaKind:     models.MediaKindMovie,
		WatchStatus:   models.StatusNotWatched,
		AddedAt:       epoch,
		LastUpdatedAt: epoch,
		ListID:        1,
		ListName:      "Friday night",
	}
}

func ids(items []models.MediaRecord) []int64 {
	out := make([]int64, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func newTestModel(pageSize int) *ViewModel {
	return New(Options{PageSize: pageSize, Language: language.English})
}

func TestPageTotals(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		pageSize  int
		wantPages int
	}{
		{"empty", 0, 10, 1},
		{"one", 1, 10, 1},
		{"exact", 10, 10, 1},
		{"overflow", 11, 10, 2},
		{"small pages", 5, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestModel(tt.pageSize)
			records := make([]models.MediaRecord, tt.count)
			for i := range records {
				records[i] = record(int64(i+1), "Title")
			}
			vm.Load(records)

			page := vm.Page()
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.count, page.TotalMatches)
			assert.Equal(t, 1, page.Number)
		})
	}
}

func TestFiltersAreConjunctive(t *testing.T) {
	a := record(1, "The Matrix")
	a.WatchStatus = models.StatusCompleted
	b := record(2, "Matrix Reloaded")
	b.MediaKind = models.MediaKindTV
	c := record(3, "Arrival")
	c.ListID = 2
	d := record(4, "the matrix resurrections")
	d.WatchStatus = models.StatusCompleted
	d.ListID = 2

	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{a, b, c, d})
	require.NoError(t, vm.SetSort(SortTitleAsc))

	require.NoError(t, vm.SetFilter(FilterSearch, "MATRIX"))
	assert.ElementsMatch(t, []int64{1, 2, 4}, ids(vm.Page().Items))

	require.NoError(t, vm.SetFilter(FilterMediaKind, "movie"))
	assert.ElementsMatch(t, []int64{1, 4}, ids(vm.Page().Items))

	require.NoError(t, vm.SetFilter(FilterWatchStatus, "completed"))
	require.NoError(t, vm.SetFilter(FilterList, "2"))
	assert.Equal(t, []int64{4}, ids(vm.Page().Items))

	// "all" lifts the constraint of a field
	require.NoError(t, vm.SetFilter(FilterList, All))
	require.NoError(t, vm.SetFilter(FilterMediaKind, All))
	assert.ElementsMatch(t, []int64{1, 4}, ids(vm.Page().Items))
}

func TestMinExternalRatingFilter(t *testing.T) {
	a := record(1, "A")
	a.ExternalRating = models.Float(8.1)
	b := record(2, "B")
	b.ExternalRating = models.Float(6.0)
	c := record(3, "C")

	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{a, b, c})
	require.NoError(t, vm.SetFilter(FilterMinExternalRating, "7"))
	assert.Equal(t, []int64{1}, ids(vm.Page().Items))
}

func TestSetFilterRejectsInvalidValues(t *testing.T) {
	vm := newTestModel(10)
	assert.Error(t, vm.SetFilter(FilterMediaKind, "anime"))
	assert.Error(t, vm.SetFilter(FilterWatchStatus, "watched"))
	assert.Error(t, vm.SetFilter(FilterList, "abc"))
	assert.Error(t, vm.SetFilter(FilterField("genre"), "drama"))
	assert.Equal(t, Filters{}, vm.Filters())
}

func TestSetFilterResetsPageButSetSortDoesNot(t *testing.T) {
	vm := newTestModel(2)
	records := make([]models.MediaRecord, 6)
	for i := range records {
		records[i] = record(int64(i+1), "Title")
	}
	vm.Load(records)

	vm.SetPage(3)
	require.NoError(t, vm.SetSort(SortTitleDesc))
	assert.Equal(t, 3, vm.Page().Number)
	assert.Equal(t, SortTitleDesc, vm.SortKey())

	require.NoError(t, vm.SetFilter(FilterSearch, "title"))
	assert.Equal(t, 1, vm.Page().Number)
	// the sort key survives filter changes
	assert.Equal(t, SortTitleDesc, vm.SortKey())
}

func TestFilterShrinkClampsPage(t *testing.T) {
	vm := newTestModel(2)
	vm.Load([]models.MediaRecord{
		record(1, "Alien"),
		record(2, "Aliens"),
		record(3, "Heat"),
		record(4, "Ronin"),
		record(5, "Thief"),
	})
	require.NoError(t, vm.SetSort(SortTitleAsc))

	vm.SetPage(3)
	page := vm.Page()
	require.Equal(t, 3, page.Number)
	require.Len(t, page.Items, 1)

	require.NoError(t, vm.SetFilter(FilterSearch, "alien"))
	page = vm.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, []int64{1, 2}, ids(page.Items))
}

func TestPageClampsWhenCollectionShrinks(t *testing.T) {
	vm := newTestModel(2)
	vm.Load([]models.MediaRecord{record(1, "A"), record(2, "B"), record(3, "C")})
	require.NoError(t, vm.SetSort(SortTitleAsc))
	vm.SetPage(2)
	require.Equal(t, []int64{3}, ids(vm.Page().Items))

	_, err := vm.Remove(3)
	require.NoError(t, err)

	page := vm.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, []int64{1, 2}, ids(page.Items))

	vm.SetPage(-4)
	assert.Equal(t, 1, vm.Page().Number)
}

func TestLoadResetsPage(t *testing.T) {
	vm := newTestModel(1)
	vm.Load([]models.MediaRecord{record(1, "A"), record(2, "B")})
	vm.SetPage(2)
	require.Equal(t, 2, vm.Page().Number)

	vm.Load([]models.MediaRecord{record(1, "A"), record(2, "B")})
	assert.Equal(t, 1, vm.Page().Number)
}

func TestTitleSortIsLocaleAware(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{
		record(1, "cherry"),
		record(2, "Éclair"),
		record(3, "Banana"),
		record(4, "apple"),
		record(5, "Eagle"),
	})

	require.NoError(t, vm.SetSort(SortTitleAsc))
	assert.Equal(t, []int64{4, 3, 1, 5, 2}, ids(vm.Page().Items))

	require.NoError(t, vm.SetSort(SortTitleDesc))
	assert.Equal(t, []int64{2, 5, 1, 3, 4}, ids(vm.Page().Items))
}

func TestDateSorts(t *testing.T) {
	a := record(1, "A")
	a.AddedAt = epoch.Add(2 * time.Hour)
	a.LastUpdatedAt = epoch.Add(3 * time.Hour)
	b := record(2, "B")
	b.AddedAt = epoch
	b.LastUpdatedAt = epoch.Add(5 * time.Hour)
	c := record(3, "C")
	c.AddedAt = epoch.Add(time.Hour)
	c.LastUpdatedAt = epoch.Add(time.Hour)

	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{a, b, c})

	cases := map[SortKey][]int64{
		SortAddedAsc:        {2, 3, 1},
		SortAddedDesc:       {1, 3, 2},
		SortLastUpdatedAsc:  {3, 1, 2},
		SortLastUpdatedDesc: {2, 1, 3},
	}
	for key, want := range cases {
		require.NoError(t, vm.SetSort(key))
		assert.Equal(t, want, ids(vm.Page().Items), "sort %s", key)
	}
}

func TestUnratedRecordsSortBelowRated(t *testing.T) {
	rated := func(id int64, v float64) models.MediaRecord {
		r := record(id, "T")
		r.WatchStatus = models.StatusCompleted
		r.PersonalRating = models.Float(v)
		r.ListAverageRating = models.Float(v)
		r.ExternalRating = models.Float(v)
		return r
	}
	records := []models.MediaRecord{
		rated(1, 7.5),
		record(2, "T"),
		rated(3, 9.0),
		record(4, "T"),
		rated(5, 3.0),
	}
	vm := newTestModel(10)
	vm.Load(records)

	for _, key := range []SortKey{SortRatingAsc, SortListAverageAsc, SortExternalRatingAsc} {
		require.NoError(t, vm.SetSort(key))
		assert.Equal(t, []int64{2, 4, 5, 1, 3}, ids(vm.Page().Items), "sort %s", key)
	}
	for _, key := range []SortKey{SortRatingDesc, SortListAverageDesc, SortExternalRatingDesc} {
		require.NoError(t, vm.SetSort(key))
		assert.Equal(t, []int64{3, 1, 5, 2, 4}, ids(vm.Page().Items), "sort %s", key)
	}
}

func TestSortIsStableForEveryKey(t *testing.T) {
	// identical sort fields, so every key sees a five-way tie
	records := make([]models.MediaRecord, 5)
	for i := range records {
		r := record(int64(10-i), "Same Title")
		r.WatchStatus = models.StatusCompleted
		r.PersonalRating = models.Float(6)
		r.ExternalRating = models.Float(7)
		r.ListAverageRating = models.Float(6.5)
		records[i] = r
	}
	loadOrder := ids(records)

	vm := newTestModel(10)
	vm.Load(records)
	for key := range sortKeys {
		require.NoError(t, vm.SetSort(key))
		assert.Equal(t, loadOrder, ids(vm.Page().Items), "sort %s", key)
	}
}

func TestSortStableAmongDistinctKeys(t *testing.T) {
	a := record(1, "Heat")
	b := record(2, "Alien")
	c := record(3, "Heat")
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{a, b, c})

	require.NoError(t, vm.SetSort(SortTitleAsc))
	assert.Equal(t, []int64{2, 1, 3}, ids(vm.Page().Items))
	require.NoError(t, vm.SetSort(SortTitleDesc))
	assert.Equal(t, []int64{1, 3, 2}, ids(vm.Page().Items))
}

func TestInsertAppendsToCollectionOrder(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{record(1, "A"), record(2, "A"), record(3, "A")})

	removed, err := vm.Remove(1)
	require.NoError(t, err)
	ok, err := vm.Insert(removed)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, vm.SetSort(SortTitleAsc))
	assert.Equal(t, []int64{2, 3, 1}, ids(vm.Page().Items))

	ok, err = vm.Insert(removed)
	require.NoError(t, err)
	assert.False(t, ok, "duplicate id must not be inserted twice")
}

func TestReplaceBumpsRevision(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{record(1, "A")})
	assert.Equal(t, uint64(0), vm.Revision(1))

	r, _ := vm.Get(1)
	r.WatchStatus = models.StatusInProgress
	rev, err := vm.Replace(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)
	assert.Equal(t, rev, vm.Revision(1))

	got, ok := vm.Get(1)
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, got.WatchStatus)

	_, err = vm.Replace(record(99, "missing"))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestClosedViewRejectsMutations(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{record(1, "A")})
	vm.Close()

	assert.True(t, vm.Closed())
	_, err := vm.Replace(record(1, "B"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = vm.Remove(1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = vm.Insert(record(2, "C"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPageReturnsCopies(t *testing.T) {
	r := record(1, "A")
	r.WatchStatus = models.StatusCompleted
	r.PersonalRating = models.Float(5)
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{r})

	page := vm.Page()
	*page.Items[0].PersonalRating = 1

	got, _ := vm.Get(1)
	assert.Equal(t, 5.0, *got.PersonalRating)
}

func TestContainsByListAndExternalID(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{record(1, "A")})

	assert.True(t, vm.Contains(1, 1001))
	assert.False(t, vm.Contains(2, 1001))
	assert.False(t, vm.Contains(1, 1002))
}

func TestSuggestionOnEmptySearch(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{record(1, "Inception"), record(2, "Interstellar")})

	require.NoError(t, vm.SetFilter(FilterSearch, "incepton"))
	page := vm.Page()
	assert.Equal(t, 0, page.TotalMatches)
	assert.Equal(t, "Inception", page.Suggestion)

	require.NoError(t, vm.SetFilter(FilterSearch, "zzzzzzzzzzzz"))
	assert.Empty(t, vm.Page().Suggestion)
}

func TestSpinPicksFromFilteredSet(t *testing.T) {
	a := record(1, "A")
	b := record(2, "B")
	b.WatchStatus = models.StatusCompleted
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{a, b})
	require.NoError(t, vm.SetFilter(FilterWatchStatus, "not_watched"))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		got, ok := vm.Spin(rng)
		require.True(t, ok)
		assert.Equal(t, int64(1), got.ID)
	}

	require.NoError(t, vm.SetFilter(FilterSearch, "nothing"))
	_, ok := vm.Spin(rng)
	assert.False(t, ok)
}

func TestRevisionsStayUniqueAcrossLoads(t *testing.T) {
	vm := newTestModel(10)
	vm.Load([]models.MediaRecord{record(1, "A")})
	first, err := vm.Replace(record(1, "B"))
	require.NoError(t, err)

	vm.Load([]models.MediaRecord{record(1, "A")})
	assert.Equal(t, uint64(0), vm.Revision(1))

	second, err := vm.Replace(record(1, "C"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
