package storage

import (
	"context"
	"time"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

var _ Storage = (*MockStorage)(nil)

func (m *MockStorage) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Schedule), args.Error(1)
}

func (m *MockStorage) ListSchedules(ctx context.Context, filter *Filter) ([]*Schedule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Schedule), args.Error(1)
}

func (m *MockStorage) CreateSchedule(ctx context.Context, s *Schedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStorage) UpdateSchedule(ctx context.Context, s *Schedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStorage) DeleteSchedule(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Helper methods for creating test data ---

// NewMockSchedule creates a test schedule with a fixed ETag
func NewMockSchedule(id, summary string, start date.SimpleDate, rep mo.Option[recurrence.Repetition]) *Schedule {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &Schedule{
		ID:         id,
		Summary:    summary,
		Start:      start,
		Repetition: rep,
		ETag:       `"etag-` + id + `-1"`,
		Created:    now,
		Modified:   now,
	}
}

// AddSchedules sets up GetSchedule for each schedule and an unfiltered
// ListSchedules returning all of them
func (m *MockStorage) AddSchedules(schedules ...*Schedule) {
	for _, s := range schedules {
		m.On("GetSchedule", mock.Anything, s.ID).Return(s, nil)
	}
	m.On("ListSchedules", mock.Anything, (*Filter)(nil)).Return(schedules, nil)
}
