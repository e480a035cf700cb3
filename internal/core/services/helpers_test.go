package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(domain.DateLayout, day)
	if err != nil {
		panic(err)
	}
	noon := t.Add(12 * time.Hour)
	return func() time.Time { return noon }
}

type repos struct {
	store      *docstore.MemoryStore
	habits     *repository.DocumentHabitRepository
	categories *repository.DocumentCategoryRepository
	tracking   *repository.DocumentTrackingRepository
	rewards    *repository.DocumentRewardRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	store := docstore.NewMemoryStore()
	return repos{
		store:      store,
		habits:     repository.NewDocumentHabitRepository(store),
		categories: repository.NewDocumentCategoryRepository(store),
		tracking:   repository.NewDocumentTrackingRepository(store),
		rewards:    repository.NewDocumentRewardRepository(store),
	}
}

type MockTrackingRepo struct {
	mock.Mock
}

func (m *MockTrackingRepo) FindByHabitAndDate(ctx context.Context, habitID, date string) (*domain.TrackingRecord, error) {
	args := m.Called(ctx, habitID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepo) Create(ctx context.Context, record *domain.TrackingRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockTrackingRepo) Update(ctx context.Context, record *domain.TrackingRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockTrackingRepo) ListByHabitSince(ctx context.Context, habitID, fromDate string) ([]*domain.TrackingRecord, error) {
	args := m.Called(ctx, habitID, fromDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackingRecord), args.Error(1)
}

func (m *MockTrackingRepo) ListCompleted(ctx context.Context, habitID string) ([]*domain.TrackingRecord, error) {
	args := m.Called(ctx, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackingRecord), args.Error(1)
}

type MockRewardRepo struct {
	mock.Mock
}

func (m *MockRewardRepo) AddPoints(ctx context.Context, userID string, points int) error {
	return m.Called(ctx, userID, points).Error(0)
}

func (m *MockRewardRepo) Balance(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
