package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrHabitNameEmpty     = fmt.Errorf("%w: habit name cannot be empty", ErrValidation)
	ErrHabitNameTooLong   = fmt.Errorf("%w: habit name is too long (max 100 chars)", ErrValidation)
	ErrHabitInvalidUserID = fmt.Errorf("%w: invalid user id", ErrValidation)
	ErrInvalidHabitStatus = fmt.Errorf("%w: invalid habit status (must be activo or inactivo)", ErrValidation)
	ErrInvalidTarget      = fmt.Errorf("%w: target_per_day cannot be negative", ErrValidation)
	ErrInvalidColor       = fmt.Errorf("%w: invalid color format (must be #RRGGBB)", ErrValidation)
	ErrInvalidReminder    = fmt.Errorf("%w: invalid reminder format (must be HH:MM 24h)", ErrValidation)
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	HabitStatusActive   = "activo"
	HabitStatusInactive = "inactivo"
	DefaultHabitColor   = "#2EB38E"
	DefaultTargetPerDay = 1
	MaxNameLen          = 100

	habitIDPrefix = "h_"
)

type Habit struct {
	ID           string    `json:"id_habito"`
	UserID       string    `json:"id_usuario"`
	Name         string    `json:"nombre_habito"`
	Category     string    `json:"id_categoria"`
	Description  string    `json:"descripcion"`
	Frequency    string    `json:"frecuencia"`
	TargetPerDay int       `json:"target_per_day"`
	Status       string    `json:"estado_habito"`
	Color        string    `json:"color"`
	ReminderTime *string   `json:"reminder_time"`
	CreatedAt    time.Time `json:"fecha_creacion"`
}

// HabitView is a habit as returned by the listing: the habit plus the
// progress of the last 30 days and whether today is already done.
type HabitView struct {
	Habit
	Records        []DailyProgress `json:"records"`
	CompletedToday bool            `json:"completado_actual"`
}

// HabitPatch carries the fields of a partial update. Nil means "not provided".
type HabitPatch struct {
	Name         *string
	Category     *string
	Description  *string
	Frequency    *string
	TargetPerDay *int
	Status       *string
	Color        *string
	ReminderTime *string
}

// NormalizeName trims the name and capitalizes it: first letter upper case,
// the remaining letters lower case.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + strings.ToLower(trimmed[size:])
}

func NewHabit(userID, name, category, frequency string) (*Habit, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	h := &Habit{
		ID:           NewShortID(habitIDPrefix),
		UserID:       userID,
		Name:         NormalizeName(name),
		Category:     category,
		Frequency:    frequency,
		TargetPerDay: DefaultTargetPerDay,
		Status:       HabitStatusActive,
		Color:        DefaultHabitColor,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Apply merges the provided fields into the habit and validates the result.
// On error the habit is left untouched.
func (h *Habit) Apply(p HabitPatch) error {
	next := *h

	if p.Name != nil {
		next.Name = NormalizeName(*p.Name)
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Frequency != nil {
		next.Frequency = *p.Frequency
	}
	if p.TargetPerDay != nil {
		next.TargetPerDay = *p.TargetPerDay
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Color != nil {
		next.Color = *p.Color
	}
	if p.ReminderTime != nil {
		if *p.ReminderTime == "" {
			next.ReminderTime = nil
		} else {
			rem := *p.ReminderTime
			next.ReminderTime = &rem
		}
	}

	if err := next.Validate(); err != nil {
		return err
	}

	*h = next
	return nil
}

func (h *Habit) Validate() error {
	if h.Name == "" {
		return ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(h.Name) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if h.TargetPerDay < 0 {
		return ErrInvalidTarget
	}

	switch h.Status {
	case HabitStatusActive, HabitStatusInactive:
	default:
		return ErrInvalidHabitStatus
	}

	if h.Color != "" && !colorRegex.MatchString(h.Color) {
		return ErrInvalidColor
	}
	if h.ReminderTime != nil && !reminderRegex.MatchString(*h.ReminderTime) {
		return ErrInvalidReminder
	}
	return nil
}

func (h *Habit) IsActive() bool {
	return h.Status == HabitStatusActive
}
