package services

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
	"go.uber.org/zap"
)

type StatsService struct {
	tracking domain.TrackingRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewStatsService(tracking domain.TrackingRepository, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		tracking: tracking,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// HabitStreaks never fails: on a store error it returns zeroed statistics
// with the error text in Message.
func (s *StatsService) HabitStreaks(ctx context.Context, habitID string) *domain.StreakStats {
	stats, err := s.habitStreaks(ctx, habitID)
	if err != nil {
		s.logger.Error("failed to compute habit statistics",
			zap.String("habit_id", habitID),
			zap.Error(err),
		)
		return &domain.StreakStats{Message: err.Error()}
	}
	return stats
}

func (s *StatsService) habitStreaks(ctx context.Context, habitID string) (*domain.StreakStats, error) {
	now := s.now()

	completed, err := s.tracking.ListCompleted(ctx, habitID)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(completed))
	for _, r := range completed {
		day, err := domain.ParseDay(r.Date)
		if err != nil {
			s.logger.Warn("skipping tracking record with bad date",
				zap.String("habit_id", habitID),
				zap.String("record_id", r.ID),
				zap.String("fecha", r.Date),
			)
			continue
		}
		dates = append(dates, day)
	}

	stats := &domain.StreakStats{}

	today, err := s.tracking.FindByHabitAndDate(ctx, habitID, domain.FormatDay(now))
	switch {
	case err == nil:
		stats.ProgressPct = today.Progress * 100
	case !errors.Is(err, domain.ErrTrackingNotFound):
		return nil, err
	}

	if len(dates) == 0 {
		return stats, nil
	}

	stats.CurrentStreak, stats.MaxStreak = domain.ComputeStreaks(dates, now)
	stats.CompletedDays = len(dates)

	last := dates[0]
	for _, d := range dates[1:] {
		if d.After(last) {
			last = d
		}
	}
	lastDay := domain.FormatDay(last)
	stats.LastDay = &lastDay

	return stats, nil
}
