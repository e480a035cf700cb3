package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

type HabitService struct {
	habits   domain.HabitRepository
	tracking domain.TrackingRepository
	now      func() time.Time
}

func NewHabitService(habits domain.HabitRepository, tracking domain.TrackingRepository) *HabitService {
	return &HabitService{
		habits:   habits,
		tracking: tracking,
		now:      time.Now,
	}
}

// WithClock replaces the clock that decides what "today" is.
func (s *HabitService) WithClock(now func() time.Time) *HabitService {
	s.now = now
	return s
}

type CreateHabitInput struct {
	UserID      string
	Name        string
	Category    string
	Frequency   string
	Description string

	TargetPerDay *int
	Status       *string
	Color        *string
	ReminderTime *string
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name, input.Category, input.Frequency)
	if err != nil {
		return nil, err
	}

	err = habit.Apply(domain.HabitPatch{
		Description:  &input.Description,
		TargetPerDay: input.TargetPerDay,
		Status:       input.Status,
		Color:        input.Color,
		ReminderTime: input.ReminderTime,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, habit); err != nil {
		return nil, err
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// ensureUniqueName fails when another active habit of the same owner
// already uses the habit's name.
func (s *HabitService) ensureUniqueName(ctx context.Context, habit *domain.Habit) error {
	existing, err := s.habits.ListActiveByName(ctx, habit.UserID, habit.Name, 2)
	if err != nil {
		return err
	}

	for _, other := range existing {
		if other.ID != habit.ID {
			return fmt.Errorf("%w: %s", domain.ErrHabitAlreadyExists, habit.Name)
		}
	}
	return nil
}

// List returns every habit of the user with the last 30 days of progress,
// active habits first and then by name.
func (s *HabitService) List(ctx context.Context, userID string) ([]*domain.HabitView, error) {
	habits, err := s.habits.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := domain.FormatDay(now)
	since := domain.FormatDay(now.AddDate(0, 0, -domain.RecentWindowDays))

	views := make([]*domain.HabitView, 0, len(habits))
	for _, h := range habits {
		records, err := s.tracking.ListByHabitSince(ctx, h.ID, since)
		if err != nil {
			return nil, err
		}

		view := &domain.HabitView{
			Habit:   *h,
			Records: make([]domain.DailyProgress, 0, len(records)),
		}
		for _, r := range records {
			view.Records = append(view.Records, domain.DailyProgress{Date: r.Date, Progress: r.Progress})
			if r.Date == today && r.IsCompleted() {
				view.CompletedToday = true
			}
		}
		sort.Slice(view.Records, func(i, j int) bool {
			return view.Records[i].Date < view.Records[j].Date
		})

		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		ai, aj := views[i].IsActive(), views[j].IsActive()
		if ai != aj {
			return ai
		}
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})

	return views, nil
}

func (s *HabitService) Update(ctx context.Context, id string, patch domain.HabitPatch) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasActive := habit.IsActive()
	oldName := habit.Name

	if err := habit.Apply(patch); err != nil {
		return nil, err
	}

	if habit.IsActive() && (!wasActive || habit.Name != oldName) {
		if err := s.ensureUniqueName(ctx, habit); err != nil {
			return nil, err
		}
	}

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete removes the habit permanently. Its tracking records are kept.
func (s *HabitService) Delete(ctx context.Context, id string) error {
	if _, err := s.habits.GetByID(ctx, id); err != nil {
		return err
	}
	return s.habits.Delete(ctx, id)
}
