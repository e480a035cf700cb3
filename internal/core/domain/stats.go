package domain

// StreakStats is the statistics payload of a single habit.
type StreakStats struct {
	CurrentStreak int     `json:"racha_actual"`
	MaxStreak     int     `json:"racha_maxima"`
	CompletedDays int     `json:"dias_completados"`
	LastDay       *string `json:"ultimo_dia"`
	ProgressPct   float64 `json:"porcentaje_avance"`
	Message       string  `json:"mensaje,omitempty"`
}
