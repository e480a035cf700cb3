package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTrackingNotFound  = errors.New("tracking record not found")
	ErrTrackingConflict  = errors.New("tracking record already exists")
	ErrInvalidDate       = fmt.Errorf("%w: invalid date (must be YYYY-MM-DD)", ErrValidation)
	ErrNegativeProgress  = fmt.Errorf("%w: progress cannot be negative", ErrValidation)
	ErrTrackingHabitID   = fmt.Errorf("%w: habit id is required", ErrValidation)
	ErrInvalidPercentage = fmt.Errorf("%w: percentage cannot be negative", ErrValidation)
)

const (
	DateLayout = "2006-01-02"

	TrackingCompleted = "completado"
	TrackingPartial   = "parcial"

	// RecentWindowDays is how far back the habit listing looks for records.
	RecentWindowDays = 30
)

type TrackingRecord struct {
	ID        string    `json:"-"`
	UserID    string    `json:"id_usuario"`
	HabitID   string    `json:"id_habito"`
	Date      string    `json:"fecha"`
	Progress  float64   `json:"progreso"`
	State     string    `json:"estado"`
	Note      string    `json:"nota"`
	UpdatedAt time.Time `json:"ultima_actualizacion"`
}

type DailyProgress struct {
	Date     string  `json:"fecha"`
	Progress float64 `json:"progreso"`
}

func NewTrackingRecord(habitID, userID, date string, progress float64, note string) (*TrackingRecord, error) {
	r := &TrackingRecord{
		ID:      TrackingKey(habitID, date),
		UserID:  userID,
		HabitID: habitID,
		Date:    date,
		Note:    note,
	}
	r.SetProgress(progress)

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetProgress stores the fraction and derives the completion state from it.
func (r *TrackingRecord) SetProgress(progress float64) {
	r.Progress = progress
	r.State = CompletionState(progress)
	r.UpdatedAt = time.Now().UTC()
}

func (r *TrackingRecord) Validate() error {
	if strings.TrimSpace(r.HabitID) == "" {
		return ErrTrackingHabitID
	}
	if _, err := ParseDay(r.Date); err != nil {
		return err
	}
	if r.Progress < 0 {
		return ErrNegativeProgress
	}
	return nil
}

func (r *TrackingRecord) IsCompleted() bool {
	return r.Progress >= 1.0
}

func CompletionState(progress float64) string {
	if progress >= 1.0 {
		return TrackingCompleted
	}
	return TrackingPartial
}

// PercentageToProgress converts a 0-100 percentage to the stored fraction.
func PercentageToProgress(percentage float64) float64 {
	return percentage / 100
}

// TrackingKey is the document id for the record of a habit on a given day.
func TrackingKey(habitID, date string) string {
	return habitID + "_" + date
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}
