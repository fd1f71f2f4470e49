package warmer_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	"github.com/SnapyBara/snapybara-geo/internal/domain"
	"github.com/SnapyBara/snapybara-geo/internal/repository/cache"
	"github.com/SnapyBara/snapybara-geo/internal/usecase"
	"github.com/SnapyBara/snapybara-geo/internal/worker/warmer"
)

// MockOverpassRepository is a mock of OverpassRepository
type MockOverpassRepository struct {
	mock.Mock
}

func (m *MockOverpassRepository) SearchPOIs(ctx context.Context, lat, lon, radiusKm float64) ([]domain.POI, error) {
	args := m.Called(ctx, lat, lon, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.POI), args.Error(1)
}

func (m *MockOverpassRepository) CountPOIs(ctx context.Context, lat, lon, radiusKm float64) (int, error) {
	args := m.Called(ctx, lat, lon, radiusKm)
	return args.Int(0), args.Error(1)
}

// MockNominatimRepository is a mock of NominatimRepository
type MockNominatimRepository struct {
	mock.Mock
}

func (m *MockNominatimRepository) SearchCategory(ctx context.Context, category string, lat, lon, radiusKm float64) ([]domain.POI, error) {
	args := m.Called(ctx, category, lat, lon, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.POI), args.Error(1)
}

func newWarmupUseCase(overpass *MockOverpassRepository, nominatim *MockNominatimRepository) *usecase.SearchUseCase {
	store := cache.NewStore(cache.NewMemoryRepository(), zap.NewNop())
	return usecase.NewSearchUseCase(
		overpass,
		nominatim,
		store,
		&config.CacheConfig{SearchTTL: time.Hour, NominatimTTL: time.Hour},
		&config.SearchConfig{
			MediumRadiusKm:      3.0,
			SplitRadiusKm:       10.0,
			VirtualRadiusKm:     50.0,
			MaxOverpassRadiusKm: 15.0,
			DedupThresholdM:     50.0,
			MaxResults:          100,
		},
		&config.OverpassConfig{GlobalTimeout: 5 * time.Second},
		&config.NominatimConfig{MaxRadiusKm: 10.0},
		zap.NewNop(),
	)
}

func TestWarmupWorker(t *testing.T) {
	t.Run("first pass runs on start", func(t *testing.T) {
		mockOverpass := &MockOverpassRepository{}
		mockNominatim := &MockNominatimRepository{}

		var searches int32
		mockOverpass.On("SearchPOIs", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { atomic.AddInt32(&searches, 1) }).
			Return([]domain.POI{}, nil)
		mockNominatim.On("SearchCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.POI{}, nil)

		uc := newWarmupUseCase(mockOverpass, mockNominatim)
		w := warmer.NewWarmupWorker(uc, &config.WarmupConfig{Enabled: true, Delay: 0}, zap.NewNop())

		done := make(chan error, 1)
		go func() {
			done <- w.Start(context.Background())
		}()

		// Первый проход идёт сразу, даём ему завершиться
		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&searches) > 0
		}, 2*time.Second, 10*time.Millisecond)

		require.NoError(t, w.Stop())

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("context cancellation stops the worker", func(t *testing.T) {
		mockOverpass := &MockOverpassRepository{}
		mockNominatim := &MockNominatimRepository{}

		mockOverpass.On("SearchPOIs", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.POI{}, nil)
		mockNominatim.On("SearchCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.POI{}, nil)

		uc := newWarmupUseCase(mockOverpass, mockNominatim)
		w := warmer.NewWarmupWorker(uc, &config.WarmupConfig{Enabled: true, Delay: 0}, zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- w.Start(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop on context cancellation")
		}
	})

	t.Run("name", func(t *testing.T) {
		uc := newWarmupUseCase(&MockOverpassRepository{}, &MockNominatimRepository{})
		w := warmer.NewWarmupWorker(uc, &config.WarmupConfig{}, zap.NewNop())
		assert.Equal(t, "cache-warmup", w.Name())
	})
}
