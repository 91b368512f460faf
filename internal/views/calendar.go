package views

import (
	"time"

	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"
)

// CalendarDay summarizes one day of the month grid.
type CalendarDay struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// CalendarMonth counts, for every day of the month, the tasks that would
// appear in that day's daily view.
func CalendarMonth(tasks []models.Task, year int, month time.Month) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	out := make([]CalendarDay, days)
	for i := range out {
		out[i].Date = dates.Format(first.AddDate(0, 0, i))
	}

	for _, t := range tasks {
		seen := make(map[int]bool)
		mark := func(s string) {
			d, ok := dates.Parse(s)
			if !ok || d.Year() != year || d.Month() != month {
				return
			}
			seen[d.Day()-1] = true
		}
		mark(t.ScheduledDate)
		mark(t.Deadline)
		for _, s := range t.Subtasks {
			mark(s.Date)
		}
		for i := range seen {
			out[i].Total++
			if t.Status == models.StatusCompleted {
				out[i].Completed++
			}
		}
	}
	return out
}

// ParseMonth reads a YYYY-MM string, defaulting to the month of now.
func ParseMonth(s string, now time.Time) (int, time.Month, bool) {
	if s == "" {
		return now.Year(), now.Month(), true
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
}
