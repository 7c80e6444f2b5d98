package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/amaumene/whirlwatch/internal/controllers/mocks"
	"github.com/amaumene/whirlwatch/internal/metrics"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
	"github.com/amaumene/whirlwatch/internal/stats"
	"github.com/amaumene/whirlwatch/internal/utils"
	"github.com/amaumene/whirlwatch/internal/viewmodel"
)

type loaderFixture struct {
	source  *mocks.MockCollectionSource
	backend *mocks.MockBackend
	vm      *viewmodel.ViewModel
	agg     *stats.Aggregator
	loader  *Loader
}

func newLoaderFixture(t *testing.T) *loaderFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := utils.NewLoggerWithOutput("error", "text", io.Discard)
	m := metrics.New()

	f := &loaderFixture{
		source:  mocks.NewMockCollectionSource(ctrl),
		backend: mocks.NewMockBackend(ctrl),
		vm:      viewmodel.New(viewmodel.Options{PageSize: 10}),
		agg:     stats.NewAggregator(),
	}
	mutator := NewMutator(f.vm, f.agg, f.backend, logger, m)
	f.loader = NewLoader(f.source, f.vm, mutator, logger, m)
	return f
}

func TestLoadListAttachesAverages(t *testing.T) {
	f := newLoaderFixture(t)
	scope := models.ListScope(7)

	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil)
	f.source.EXPECT().FetchAggregateRatings(gomock.Any(), int64(7)).Return(map[int64]whirlwatch.AggregateRating{
		1: {Average: models.Float(7.75), Count: 4},
	}, nil)

	summary, err := f.loader.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 8.0, summary.AverageRating)
	assert.Equal(t, summary, f.agg.Snapshot())

	r, ok := f.vm.Get(1)
	require.True(t, ok)
	require.NotNil(t, r.ListAverageRating)
	assert.Equal(t, 7.8, *r.ListAverageRating)
	assert.Equal(t, 4, r.RatingCount)

	got, ok := f.loader.Scope()
	assert.True(t, ok)
	assert.Equal(t, scope, got)
}

func TestLoadToleratesMissingAverages(t *testing.T) {
	f := newLoaderFixture(t)
	scope := models.ListScope(7)

	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil)
	f.source.EXPECT().FetchAggregateRatings(gomock.Any(), int64(7)).Return(nil, fmt.Errorf("x: %w", whirlwatch.ErrNotFound))

	_, err := f.loader.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 3, f.vm.Len())
}

func TestLoadAllSkipsAverages(t *testing.T) {
	f := newLoaderFixture(t)
	scope := models.Scope{Kind: models.ScopeAll}
	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil)

	_, err := f.loader.Load(context.Background(), scope)
	require.NoError(t, err)
}

func TestLoadFailureKeepsPreviousView(t *testing.T) {
	f := newLoaderFixture(t)
	scope := models.Scope{Kind: models.ScopeAll}
	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil)
	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(nil, whirlwatch.ErrNetworkFailure)

	_, err := f.loader.Load(context.Background(), scope)
	require.NoError(t, err)
	_, err = f.loader.Reload(context.Background())
	assert.ErrorIs(t, err, whirlwatch.ErrNetworkFailure)
	assert.Equal(t, 3, f.vm.Len())
}

func TestReloadWithoutScope(t *testing.T) {
	f := newLoaderFixture(t)
	_, err := f.loader.Reload(context.Background())
	assert.ErrorIs(t, err, ErrNoScope)
}

func TestAddTitleRejectsDuplicate(t *testing.T) {
	f := newLoaderFixture(t)
	scope := models.Scope{Kind: models.ScopeAll}
	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil)
	_, err := f.loader.Load(context.Background(), scope)
	require.NoError(t, err)

	// record 1 holds tmdb 101 in list 7; AddMedia must not be called
	_, err = f.loader.AddTitle(context.Background(), 7, 101, models.MediaKindMovie)
	assert.ErrorIs(t, err, ErrAlreadyInList)
}

func TestAddTitleChecksUncoveredList(t *testing.T) {
	f := newLoaderFixture(t)
	ctx := context.Background()
	f.source.EXPECT().FetchListCollection(gomock.Any(), models.ListScope(7)).Return(sampleRecords(), nil)
	f.source.EXPECT().FetchAggregateRatings(gomock.Any(), int64(7)).Return(nil, nil)
	_, err := f.loader.Load(ctx, models.ListScope(7))
	require.NoError(t, err)

	other := sampleRecords()[:1]
	other[0].ListID = 9
	f.source.EXPECT().FetchListCollection(gomock.Any(), models.ListScope(9)).Return(other, nil)

	_, err = f.loader.AddTitle(ctx, 9, 101, models.MediaKindMovie)
	assert.ErrorIs(t, err, ErrAlreadyInList)
}

func TestAddTitleReloads(t *testing.T) {
	f := newLoaderFixture(t)
	ctx := context.Background()
	scope := models.ListScope(7)

	withDune := sampleRecords()
	extra := withDune[2]
	extra.ID, extra.ExternalID, extra.Title = 4, 555, "Dune"
	withDune = append(withDune, extra)

	gomock.InOrder(
		f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil),
		f.source.EXPECT().FetchAggregateRatings(gomock.Any(), int64(7)).Return(nil, nil),
		f.source.EXPECT().AddMedia(gomock.Any(), int64(7), int64(555), models.MediaKindMovie).Return(int64(4), nil),
		f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(withDune, nil),
		f.source.EXPECT().FetchAggregateRatings(gomock.Any(), int64(7)).Return(nil, nil),
	)

	_, err := f.loader.Load(ctx, scope)
	require.NoError(t, err)

	id, err := f.loader.AddTitle(ctx, 7, 555, models.MediaKindMovie)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.True(t, f.vm.Contains(7, 555))
	assert.Equal(t, 4, f.agg.Snapshot().TotalCount)
}

func TestAddTitleRejectsUnknownKind(t *testing.T) {
	f := newLoaderFixture(t)
	_, err := f.loader.AddTitle(context.Background(), 7, 1, models.MediaKind("anime"))
	assert.Error(t, err)
}

func TestRemoveTitle(t *testing.T) {
	f := newLoaderFixture(t)
	ctx := context.Background()
	scope := models.Scope{Kind: models.ScopeAll}
	f.source.EXPECT().FetchListCollection(gomock.Any(), scope).Return(sampleRecords(), nil)
	_, err := f.loader.Load(ctx, scope)
	require.NoError(t, err)

	f.backend.EXPECT().SubmitRemoval(gomock.Any(), models.RecordRef{ListID: 7, ID: 2}).Return(nil)
	require.NoError(t, f.loader.RemoveTitle(ctx, 7, 102))
	assert.False(t, f.vm.Contains(7, 102))

	err = f.loader.RemoveTitle(ctx, 7, 102)
	assert.True(t, errors.Is(err, viewmodel.ErrRecordNotFound))
}
