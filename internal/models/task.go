package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TaskStatus represents the assignment status of a task
type TaskStatus string

const (
	StatusUnassigned TaskStatus = "unassigned"
	StatusAssigned   TaskStatus = "assigned"
	StatusCompleted  TaskStatus = "completed"
)

var ErrInvalidStatus = errors.New("invalid status")
var ErrInvalidTransition = errors.New("invalid status transition")

// Snapshots written by the first web client used Chinese status labels.
var legacyStatuses = map[string]TaskStatus{
	"待分配": StatusUnassigned,
	"已分配": StatusAssigned,
	"已完成": StatusCompleted,
}

func statusRank(s TaskStatus) int {
	switch s {
	case StatusUnassigned:
		return 0
	case StatusAssigned:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// ParseStatus maps client input onto a known status.
func ParseStatus(s string) (TaskStatus, error) {
	s = strings.TrimSpace(s)
	if st, ok := legacyStatuses[s]; ok {
		return st, nil
	}
	st := TaskStatus(strings.ToLower(s))
	if statusRank(st) < 0 {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// CanTransition reports whether a task may move from one status to another.
// Statuses only move forward, except that a completed task may be reopened.
func CanTransition(from, to TaskStatus) bool {
	rf, rt := statusRank(from), statusRank(to)
	if rt < 0 {
		return false
	}
	if rf < 0 || from == to {
		return true
	}
	if from == StatusCompleted && to == StatusAssigned {
		return true
	}
	return rt > rf
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if st, ok := legacyStatuses[raw]; ok {
		*s = st
		return nil
	}
	*s = TaskStatus(raw)
	return nil
}

// TaskType classifies the shape of the work (informational only)
type TaskType string

const (
	TypeOneOff TaskType = "one-off"
	TypeHabit  TaskType = "habit"
	TypePeriod TaskType = "period"
)

// ParseTaskType is lenient: generated text rarely matches the enum exactly.
func ParseTaskType(s string) TaskType {
	l := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(l, "habit"), strings.Contains(l, "recurring"), strings.Contains(l, "习惯"):
		return TypeHabit
	case strings.Contains(l, "period"), strings.Contains(l, "span"), strings.Contains(l, "时间段"):
		return TypePeriod
	}
	return TypeOneOff
}

// Complexity is the coarse effort class of a task
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

func ParseComplexity(s string) Complexity {
	l := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(l, "complex") || strings.Contains(l, "复杂") {
		return ComplexityComplex
	}
	return ComplexitySimple
}

// Workload is the relative effort of one subtask
type Workload string

const (
	WorkloadLight  Workload = "light"
	WorkloadMedium Workload = "medium"
	WorkloadHeavy  Workload = "heavy"
)

func ParseWorkload(s string) Workload {
	switch w := Workload(strings.ToLower(strings.TrimSpace(s))); w {
	case WorkloadLight, WorkloadHeavy:
		return w
	}
	return WorkloadMedium
}

const DefaultEstimatedTime = 60

// Subtask is a dated, completable step of a task
type Subtask struct {
	Name          string   `json:"name"`
	Date          string   `json:"date,omitempty"`
	Completed     bool     `json:"completed"`
	Priority      int      `json:"priority"`
	OriginalText  string   `json:"originalText,omitempty"`
	EstimatedTime int      `json:"estimatedTime"`
	Workload      Workload `json:"workload"`
}

// NewSubtask builds a subtask with the default estimate and workload.
func NewSubtask(name, date string, priority int) Subtask {
	return Subtask{
		Name:          name,
		Date:          date,
		Priority:      priority,
		OriginalText:  name,
		EstimatedTime: DefaultEstimatedTime,
		Workload:      WorkloadMedium,
	}
}

// UnmarshalJSON accepts either a bare string or an object, so every reader
// sees the same record regardless of who wrote it.
func (s *Subtask) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = NewSubtask(name, "", 0)
		return nil
	}

	type plain Subtask
	var p struct {
		plain
		Workload string `json:"workload"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Subtask(p.plain)
	s.Workload = ParseWorkload(p.Workload)
	if s.EstimatedTime <= 0 {
		s.EstimatedTime = DefaultEstimatedTime
	}
	if s.OriginalText == "" {
		s.OriginalText = s.Name
	}
	return nil
}

// EffectiveDate is the subtask's own date, or the parent deadline when unset.
func (s Subtask) EffectiveDate(deadline string) string {
	if s.Date != "" {
		return s.Date
	}
	return deadline
}

// Renumber rewrites priorities so they match display order.
func Renumber(subtasks []Subtask) {
	for i := range subtasks {
		subtasks[i].Priority = i + 1
	}
}

// Task is a top-level unit of work
type Task struct {
	ID            string     `json:"id"`
	LegacyID      string     `json:"objectId,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	StartDate     string     `json:"startDate,omitempty"`
	Deadline      string     `json:"deadline"`
	ScheduledDate string     `json:"scheduledDate,omitempty"`
	Status        TaskStatus `json:"status"`
	TaskType      TaskType   `json:"taskType,omitempty"`
	Complexity    Complexity `json:"complexity,omitempty"`
	Subtasks      []Subtask  `json:"subtasks"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Matches reports whether id names this task, directly or through the legacy id.
func (t Task) Matches(id string) bool {
	return id != "" && (t.ID == id || t.LegacyID == id)
}

// FirstDate is the date a task is shown on: its first subtask's date, else the deadline.
func (t Task) FirstDate() string {
	if len(t.Subtasks) > 0 && t.Subtasks[0].Date != "" {
		return t.Subtasks[0].Date
	}
	return t.Deadline
}

// Clone copies the task including its subtask slice.
func (t Task) Clone() Task {
	if t.Subtasks != nil {
		subs := make([]Subtask, len(t.Subtasks))
		copy(subs, t.Subtasks)
		t.Subtasks = subs
	}
	return t
}

const titleRunes = 20

// DeriveTitle shortens a description into a display title.
func DeriveTitle(description string) string {
	r := []rune(strings.TrimSpace(description))
	if len(r) > titleRunes {
		return string(r[:titleRunes]) + "..."
	}
	return string(r)
}
