// Package views holds the read-side selectors behind the daily, list,
// calendar and category screens. Selectors never modify their input.
package views

import (
	"sort"
	"time"

	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"
)

// DisplayStatus is the status shown to the user, derived from dates rather
// than stored.
type DisplayStatus string

const (
	DisplayCompleted  DisplayStatus = "completed"
	DisplayInProgress DisplayStatus = "in_progress"
	DisplayOverdue    DisplayStatus = "overdue"
)

// Rules tune how display statuses are derived.
type Rules struct {
	// LegacyEmptyIsCompleted shows every task without subtasks as completed,
	// whatever its stored status.
	LegacyEmptyIsCompleted bool
}

// IndexedSubtask is a subtask together with its position in the parent task.
type IndexedSubtask struct {
	Index   int            `json:"index"`
	Subtask models.Subtask `json:"subtask"`
}

func sameDay(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	na := dates.Normalize(a)
	return na != "" && na == dates.Normalize(b)
}

func copyTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// OnDate reports whether task belongs on the given day.
func OnDate(task models.Task, date string) bool {
	if sameDay(task.ScheduledDate, date) || sameDay(task.Deadline, date) {
		return true
	}
	for _, s := range task.Subtasks {
		if sameDay(s.Date, date) {
			return true
		}
	}
	return false
}

// sortKey orders by deadline, using the creation day for tasks without a
// usable deadline.
func sortKey(t models.Task) time.Time {
	if d, ok := dates.Parse(t.Deadline); ok {
		return d
	}
	return dates.Day(t.CreatedAt)
}

// TasksForDate selects the tasks shown on date, ordered by deadline then category.
func TasksForDate(tasks []models.Task, date string) []models.Task {
	out := []models.Task{}
	for _, t := range tasks {
		if OnDate(t, date) {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := sortKey(out[i]), sortKey(out[j])
		if !ki.Equal(kj) {
			return ki.Before(kj)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SubtasksForDate returns the subtasks of task whose effective date is date.
func SubtasksForDate(task models.Task, date string) []IndexedSubtask {
	out := []IndexedSubtask{}
	for i, s := range task.Subtasks {
		if sameDay(s.EffectiveDate(task.Deadline), date) {
			out = append(out, IndexedSubtask{Index: i, Subtask: s})
		}
	}
	return out
}

// PendingVsCompleted partitions tasks on their stored status.
func PendingVsCompleted(tasks []models.Task) (pending, completed []models.Task) {
	pending, completed = []models.Task{}, []models.Task{}
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			completed = append(completed, t.Clone())
		} else {
			pending = append(pending, t.Clone())
		}
	}
	return pending, completed
}

func groupRank(s models.TaskStatus) int {
	switch s {
	case models.StatusAssigned:
		return 1
	case models.StatusCompleted:
		return 2
	}
	return 3
}

// GroupByCategory buckets tasks by category. Each bucket lists in-progress
// tasks first, then completed ones, then the rest, each by ascending
// deadline with unparseable deadlines last.
func GroupByCategory(tasks []models.Task) map[string][]models.Task {
	groups := make(map[string][]models.Task)
	for _, t := range tasks {
		groups[t.Category] = append(groups[t.Category], t.Clone())
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			ri, rj := groupRank(g[i].Status), groupRank(g[j].Status)
			if ri != rj {
				return ri < rj
			}
			di, oki := dates.Parse(g[i].Deadline)
			dj, okj := dates.Parse(g[j].Deadline)
			switch {
			case oki && okj:
				return di.Before(dj)
			case oki != okj:
				return oki
			}
			return false
		})
	}
	return groups
}

// DeriveDisplayStatus computes what the user sees for task at time now. A
// task is in progress through the whole of its deadline day and overdue
// from the day after; an unparseable deadline never becomes overdue.
func DeriveDisplayStatus(task models.Task, now time.Time, rules Rules) DisplayStatus {
	if len(task.Subtasks) == 0 {
		if rules.LegacyEmptyIsCompleted || task.Status == models.StatusCompleted {
			return DisplayCompleted
		}
	} else if !rules.LegacyEmptyIsCompleted && (task.Status == models.StatusCompleted || allDone(task.Subtasks)) {
		return DisplayCompleted
	}

	deadline, ok := dates.Parse(task.Deadline)
	if !ok || !dates.Day(now).After(deadline) {
		return DisplayInProgress
	}
	return DisplayOverdue
}

func allDone(subs []models.Subtask) bool {
	for _, s := range subs {
		if !s.Completed {
			return false
		}
	}
	return true
}

// ActiveTasks is the list view: unfinished tasks, newest first.
func ActiveTasks(tasks []models.Task) []models.Task {
	pending, _ := PendingVsCompleted(tasks)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	return pending
}

// FormatDate renders s as YYYY-MM-DD or the placeholder.
func FormatDate(s string) string {
	return dates.Display(s)
}
