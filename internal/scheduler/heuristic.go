// Package scheduler spreads decomposed steps over the days left before a deadline.
package scheduler

import (
	"time"

	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"
)

// Distribute assigns each step a date, evenly spaced from today and never
// later than the deadline. Both inputs are reduced to calendar days.
func Distribute(steps []string, today, deadline time.Time) []models.Subtask {
	if len(steps) == 0 {
		return []models.Subtask{}
	}
	today = dates.Day(today)
	deadline = dates.Day(deadline)

	totalDays := dates.DaysBetween(today, deadline)
	if totalDays < 0 {
		totalDays = 0
	}
	interval := totalDays / len(steps)
	if interval < 1 {
		interval = 1
	}

	out := make([]models.Subtask, 0, len(steps))
	for i, step := range steps {
		d := today.AddDate(0, 0, i*interval)
		if d.After(deadline) {
			d = deadline
		}
		out = append(out, models.NewSubtask(step, dates.Format(d), i+1))
	}
	return out
}

// DistributeDates is Distribute for string deadlines. When the deadline
// cannot be parsed the steps land on consecutive days starting today.
func DistributeDates(steps []string, today time.Time, deadline string) []models.Subtask {
	if d, ok := dates.Parse(deadline); ok {
		return Distribute(steps, today, d)
	}
	today = dates.Day(today)
	out := make([]models.Subtask, 0, len(steps))
	for i, step := range steps {
		out = append(out, models.NewSubtask(step, dates.Format(today.AddDate(0, 0, i)), i+1))
	}
	return out
}
