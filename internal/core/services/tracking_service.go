package services

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

type TrackingService struct {
	habits   domain.HabitRepository
	tracking domain.TrackingRepository
	now      func() time.Time
}

func NewTrackingService(habits domain.HabitRepository, tracking domain.TrackingRepository) *TrackingService {
	return &TrackingService{
		habits:   habits,
		tracking: tracking,
		now:      time.Now,
	}
}

func (s *TrackingService) WithClock(now func() time.Time) *TrackingService {
	s.now = now
	return s
}

type RecordProgressInput struct {
	HabitID  string
	Date     string
	Progress float64
	Note     string
}

// RecordProgress stores the progress of an existing habit on a day. The
// boolean result reports whether a new record was created.
func (s *TrackingService) RecordProgress(ctx context.Context, input RecordProgressInput) (*domain.TrackingRecord, bool, error) {
	habit, err := s.habits.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, false, err
	}

	fresh, err := domain.NewTrackingRecord(habit.ID, habit.UserID, input.Date, input.Progress, input.Note)
	if err != nil {
		return nil, false, err
	}

	return s.upsert(ctx, fresh, func(existing *domain.TrackingRecord) {
		existing.UserID = habit.UserID
		existing.HabitID = habit.ID
		existing.Date = input.Date
		existing.Note = input.Note
		existing.SetProgress(input.Progress)
	})
}

// UpsertDailyPercentage stores a 0-100 percentage as the day's progress.
// The habit does not need to exist. An empty date means today. Updates keep
// the note and owner already on the record.
func (s *TrackingService) UpsertDailyPercentage(ctx context.Context, habitID string, percentage float64, date string) (*domain.TrackingRecord, bool, error) {
	if date == "" {
		date = domain.FormatDay(s.now())
	}
	if percentage < 0 {
		return nil, false, domain.ErrInvalidPercentage
	}

	var owner string
	habit, err := s.habits.GetByID(ctx, habitID)
	switch {
	case err == nil:
		owner = habit.UserID
	case !errors.Is(err, domain.ErrHabitNotFound):
		return nil, false, err
	}

	progress := domain.PercentageToProgress(percentage)

	fresh, err := domain.NewTrackingRecord(habitID, owner, date, progress, "")
	if err != nil {
		return nil, false, err
	}

	return s.upsert(ctx, fresh, func(existing *domain.TrackingRecord) {
		if existing.UserID == "" {
			existing.UserID = owner
		}
		existing.SetProgress(progress)
	})
}

// upsert writes fresh unless a record for the same habit and day exists,
// in which case merge is applied to that record instead. Losing the insert
// race to a concurrent writer falls back to the update path once.
func (s *TrackingService) upsert(ctx context.Context, fresh *domain.TrackingRecord, merge func(*domain.TrackingRecord)) (*domain.TrackingRecord, bool, error) {
	existing, err := s.tracking.FindByHabitAndDate(ctx, fresh.HabitID, fresh.Date)
	switch {
	case err == nil:
		return s.update(ctx, existing, merge)
	case !errors.Is(err, domain.ErrTrackingNotFound):
		return nil, false, err
	}

	err = s.tracking.Create(ctx, fresh)
	if err == nil {
		return fresh, true, nil
	}
	if !errors.Is(err, domain.ErrTrackingConflict) {
		return nil, false, err
	}

	existing, err = s.tracking.FindByHabitAndDate(ctx, fresh.HabitID, fresh.Date)
	if err != nil {
		return nil, false, err
	}
	return s.update(ctx, existing, merge)
}

func (s *TrackingService) update(ctx context.Context, existing *domain.TrackingRecord, merge func(*domain.TrackingRecord)) (*domain.TrackingRecord, bool, error) {
	merge(existing)
	if err := s.tracking.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
