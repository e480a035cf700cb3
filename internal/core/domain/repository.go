package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitAlreadyExists = errors.New("habit already exists for this user")
)

type HabitRepository interface {
	// Create persists a new habit.
	Create(ctx context.Context, habit *Habit) error

	// GetByID returns ErrHabitNotFound when the habit does not exist.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID returns every habit of the user, active and inactive.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListActiveByName returns the user's active habits with the given
	// normalized name. At most limit results when limit > 0.
	ListActiveByName(ctx context.Context, userID, name string, limit int) ([]*Habit, error)

	// HasActiveInCategory reports whether any active habit, of any user,
	// is filed under the category name.
	HasActiveInCategory(ctx context.Context, categoryName string) (bool, error)

	Update(ctx context.Context, habit *Habit) error

	// Delete permanently removes a habit.
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error

	// GetByID returns ErrCategoryNotFound when the category does not exist.
	GetByID(ctx context.Context, id string) (*Category, error)

	// ListActive returns active categories owned by userID, or the global
	// ones when userID is nil.
	ListActive(ctx context.Context, userID *string) ([]*Category, error)

	Update(ctx context.Context, category *Category) error
}

type TrackingRepository interface {
	// FindByHabitAndDate returns ErrTrackingNotFound when no record exists.
	FindByHabitAndDate(ctx context.Context, habitID, date string) (*TrackingRecord, error)

	// Create inserts the record under its ID and fails with
	// ErrTrackingConflict if a record with that ID already exists.
	Create(ctx context.Context, record *TrackingRecord) error

	// Update overwrites the mutable fields of an existing record.
	Update(ctx context.Context, record *TrackingRecord) error

	// ListByHabitSince returns the habit's records with date >= fromDate.
	ListByHabitSince(ctx context.Context, habitID, fromDate string) ([]*TrackingRecord, error)

	// ListCompleted returns the habit's records with progress >= 1.
	ListCompleted(ctx context.Context, habitID string) ([]*TrackingRecord, error)
}

type RewardRepository interface {
	// AddPoints atomically increments the user's balance, creating it if needed.
	AddPoints(ctx context.Context, userID string, points int) error

	// Balance returns 0 when the user has no balance yet.
	Balance(ctx context.Context, userID string) (int, error)
}
