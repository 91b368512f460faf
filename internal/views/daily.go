package views

import (
	"time"

	"task-secretary-api/internal/models"
)

// DailyTask is one row of the daily view.
type DailyTask struct {
	models.Task
	Display        DisplayStatus    `json:"displayStatus"`
	DeadlineLabel  string           `json:"deadlineLabel"`
	SubtasksForDay []IndexedSubtask `json:"subtasksForDay"`
}

// Daily is the payload of the daily view.
type Daily struct {
	Date      string      `json:"date"`
	Pending   []DailyTask `json:"pending"`
	Completed []DailyTask `json:"completed"`
}

// DailyView assembles the daily screen for date.
func DailyView(tasks []models.Task, date string, now time.Time, rules Rules) Daily {
	pending, completed := PendingVsCompleted(TasksForDate(tasks, date))
	rows := func(ts []models.Task) []DailyTask {
		out := make([]DailyTask, 0, len(ts))
		for _, t := range ts {
			out = append(out, DailyTask{
				Task:           t,
				Display:        DeriveDisplayStatus(t, now, rules),
				DeadlineLabel:  FormatDate(t.Deadline),
				SubtasksForDay: SubtasksForDate(t, date),
			})
		}
		return out
	}
	return Daily{
		Date:      date,
		Pending:   rows(pending),
		Completed: rows(completed),
	}
}
