package domain

import (
	"sort"
	"time"
)

// ComputeStreaks returns the current and the longest run of consecutive
// calendar days in dates. The current streak is alive only when the latest
// day is today or yesterday. Several dates on the same day count once.
func ComputeStreaks(dates []time.Time, today time.Time) (current int, longest int) {
	days := uniqueSortedDays(dates)
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	todayDay := truncateDay(today)
	yesterday := todayDay.AddDate(0, 0, -1)
	last := days[len(days)-1]

	if last.Equal(todayDay) || last.Equal(yesterday) {
		current = 1
		for i := len(days) - 1; i > 0; i-- {
			if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
				current++
			} else {
				break
			}
		}
	}

	return current, longest
}

func uniqueSortedDays(dates []time.Time) []time.Time {
	seen := make(map[string]bool, len(dates))
	days := make([]time.Time, 0, len(dates))

	for _, d := range dates {
		day := truncateDay(d)
		key := FormatDay(day)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// truncateDay keeps the calendar date of t (in t's location) as UTC midnight,
// so day arithmetic is not affected by DST.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
