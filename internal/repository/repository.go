// Package repository owns each user's task collection. Every mutation keeps
// the subtask invariants, writes the full collection through to storage and
// announces the change on the realtime hub.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"task-secretary-api/internal/ai"
	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"
	"task-secretary-api/internal/realtime"
	"task-secretary-api/internal/scheduler"

	"golang.org/x/sync/semaphore"
)

var (
	ErrCreationInProgress = errors.New("another task is being created")
	ErrSubtaskIndex       = errors.New("subtask index out of range")
	ErrValidation         = errors.New("invalid task")
	ErrEmptySubtasks      = errors.New("cannot remove every subtask; delete the task instead")
)

// Planner decomposes and schedules tasks. Implementations never fail; a nil
// schedule asks the repository to spread the steps itself.
type Planner interface {
	Decompose(ctx context.Context, b ai.Brief) ai.Decomposition
	Schedule(ctx context.Context, b ai.Brief, d ai.Decomposition) []models.Subtask
}

// Publisher receives change notifications.
type Publisher interface {
	Publish(userID string, evt realtime.Event)
}

// Store loads and saves whole task snapshots.
type Store interface {
	Load() []models.Task
	Save(tasks []models.Task)
}

// Deps are the collaborators shared by every user's repository.
type Deps struct {
	Planner Planner
	Events  Publisher
	Now     func() time.Time
}

// CreateInput is what a client submits to create a task.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StartDate   string `json:"startDate"`
	Deadline    string `json:"deadline"`
	UseAI       bool   `json:"useAI"`
}

// Validate checks the form-level rules. Create itself accepts anything.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	deadline, ok := dates.Parse(in.Deadline)
	if !ok {
		return fmt.Errorf("%w: deadline must be a date", ErrValidation)
	}
	if in.StartDate != "" {
		start, ok := dates.Parse(in.StartDate)
		if !ok {
			return fmt.Errorf("%w: startDate must be a date", ErrValidation)
		}
		if start.After(deadline) {
			return fmt.Errorf("%w: start date is after the deadline", ErrValidation)
		}
	}
	return nil
}

// TaskPatch carries the fields to merge into a task; nil fields are left alone.
type TaskPatch struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Category      *string            `json:"category"`
	StartDate     *string            `json:"startDate"`
	Deadline      *string            `json:"deadline"`
	ScheduledDate *string            `json:"scheduledDate"`
	Status        *models.TaskStatus `json:"status"`
	TaskType      *models.TaskType   `json:"taskType"`
	Complexity    *models.Complexity `json:"complexity"`
	Subtasks      *[]models.Subtask  `json:"subtasks"`
}

// SubtaskPatch carries the subtask fields to change.
type SubtaskPatch struct {
	Name          *string          `json:"name"`
	Date          *string          `json:"date"`
	Completed     *bool            `json:"completed"`
	EstimatedTime *int             `json:"estimatedTime"`
	Workload      *models.Workload `json:"workload"`
}

var lastID atomic.Int64

// nextID derives a task id from the clock, bumped so ids never repeat.
func nextID(now time.Time) string {
	n := now.UnixNano()
	for {
		last := lastID.Load()
		if n <= last {
			n = last + 1
		}
		if lastID.CompareAndSwap(last, n) {
			return fmt.Sprintf("task-%d", n)
		}
	}
}

// Repository is one user's task collection.
type Repository struct {
	mu      sync.Mutex
	userID  string
	tasks   []models.Task
	store   Store
	deps    Deps
	gate    *semaphore.Weighted
	pending []realtime.Event
}

// New loads the collection from store.
func New(userID string, store Store, deps Deps) *Repository {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Repository{
		userID: userID,
		tasks:  store.Load(),
		store:  store,
		deps:   deps,
		gate:   semaphore.NewWeighted(1),
	}
}

// publish queues an event; callers hold mu.
func (r *Repository) publish(kind, taskID string) {
	r.pending = append(r.pending, realtime.Event{Type: kind, TaskID: taskID})
}

// flush delivers queued events. Call it with mu released.
func (r *Repository) flush() {
	r.mu.Lock()
	events := r.pending
	r.pending = nil
	r.mu.Unlock()

	if r.deps.Events == nil {
		return
	}
	for _, evt := range events {
		r.deps.Events.Publish(r.userID, evt)
	}
}

func (r *Repository) persistLocked() {
	snapshot := make([]models.Task, len(r.tasks))
	copy(snapshot, r.tasks)
	r.store.Save(snapshot)
}

func (r *Repository) indexLocked(id string) int {
	for i := range r.tasks {
		if r.tasks[i].Matches(id) {
			return i
		}
	}
	return -1
}

func (r *Repository) hasIDLocked(id string) bool {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return true
		}
	}
	return false
}

// List returns a copy of every task in insertion order.
func (r *Repository) List() []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Task, len(r.tasks))
	for i := range r.tasks {
		out[i] = r.tasks[i].Clone()
	}
	return out
}

// Get finds a task by id or legacy id.
func (r *Repository) Get(id string) (models.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return models.Task{}, false
	}
	return r.tasks[i].Clone(), true
}

// Create adds a task. With UseAI the task is decomposed and scheduled before
// it is stored; only one such creation may run at a time per user, and a
// cancelled context during enrichment aborts the creation without saving.
func (r *Repository) Create(ctx context.Context, in CreateInput) (models.Task, error) {
	if in.UseAI {
		if !r.gate.TryAcquire(1) {
			return models.Task{}, ErrCreationInProgress
		}
		defer r.gate.Release(1)
	}

	now := r.deps.Now()
	task := models.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		Status:      models.StatusUnassigned,
		CreatedAt:   now.UTC().Round(0),
	}
	if task.Title == "" {
		task.Title = models.DeriveTitle(in.Description)
	}

	if in.UseAI {
		if err := r.enrich(ctx, &task, now); err != nil {
			return models.Task{}, err
		}
	}

	r.mu.Lock()
	task.ID = nextID(now)
	for r.hasIDLocked(task.ID) {
		task.ID = nextID(now)
	}
	r.tasks = append(r.tasks, task)
	r.persistLocked()
	r.publish(realtime.TaskCreated, task.ID)
	r.mu.Unlock()
	r.flush()

	log.Printf("repository: created %s for %s (%d subtasks)", task.ID, r.userID, len(task.Subtasks))
	return task.Clone(), nil
}

func (r *Repository) enrich(ctx context.Context, task *models.Task, now time.Time) error {
	brief := ai.Brief{
		Description: task.Description,
		Category:    task.Category,
		Deadline:    task.Deadline,
		Today:       now,
	}

	d := ai.Fallback(task.Description)
	var subs []models.Subtask
	if r.deps.Planner != nil {
		d = r.deps.Planner.Decompose(ctx, brief)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("decompose task: %w", err)
		}
		subs = r.deps.Planner.Schedule(ctx, brief, d)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("schedule task: %w", err)
		}
	}

	if subs == nil {
		subs = scheduler.DistributeDates(d.Steps, now, task.Deadline)
	} else {
		models.Renumber(subs)
	}

	task.Status = models.StatusAssigned
	task.Subtasks = subs
	task.TaskType = d.Type
	task.Complexity = d.Complexity
	task.ScheduledDate = task.FirstDate()
	return nil
}

func applyPatch(t *models.Task, p TaskPatch) error {
	if p.Status != nil && !models.CanTransition(t.Status, *p.Status) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, t.Status, *p.Status)
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.Complexity != nil {
		t.Complexity = *p.Complexity
	}
	if p.Subtasks != nil {
		if len(*p.Subtasks) == 0 && len(t.Subtasks) > 0 {
			return ErrEmptySubtasks
		}
		subs := make([]models.Subtask, len(*p.Subtasks))
		copy(subs, *p.Subtasks)
		models.Renumber(subs)
		t.Subtasks = subs
		t.ScheduledDate = t.FirstDate()
	}
	if p.ScheduledDate != nil {
		t.ScheduledDate = *p.ScheduledDate
	}
	return nil
}

// Edit merges p into the task matching id. The bool is false when no task
// matches, in which case nothing changes.
func (r *Repository) Edit(id string, p TaskPatch) (models.Task, bool, error) {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return models.Task{}, false, nil
	}
	t := r.tasks[i].Clone()
	if err := applyPatch(&t, p); err != nil {
		return models.Task{}, true, err
	}
	r.tasks[i] = t
	r.persistLocked()

	kind := realtime.TaskUpdated
	if p.Status != nil && p.Title == nil && p.Subtasks == nil {
		kind = realtime.TaskStatusChanged
	}
	r.publish(kind, t.ID)
	return t.Clone(), true, nil
}

// SetStatus changes only the status.
func (r *Repository) SetStatus(id string, status models.TaskStatus) (models.Task, bool, error) {
	return r.Edit(id, TaskPatch{Status: &status})
}

// Delete removes the task matching id and reports whether one existed.
func (r *Repository) Delete(id string) bool {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id)
}

func (r *Repository) deleteLocked(id string) bool {
	i := r.indexLocked(id)
	if i < 0 {
		return false
	}
	taskID := r.tasks[i].ID
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	r.persistLocked()
	r.publish(realtime.TaskDeleted, taskID)
	return true
}

// editSubtasks rewrites the subtask list of a task through fn and stores the
// result with priorities renumbered.
func (r *Repository) editSubtasks(id string, fn func([]models.Subtask) ([]models.Subtask, error)) (models.Task, bool, error) {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return models.Task{}, false, nil
	}
	t, err := r.editSubtasksLocked(i, fn)
	return t, true, err
}

func (r *Repository) editSubtasksLocked(i int, fn func([]models.Subtask) ([]models.Subtask, error)) (models.Task, error) {
	subs := make([]models.Subtask, len(r.tasks[i].Subtasks))
	copy(subs, r.tasks[i].Subtasks)
	subs, err := fn(subs)
	if err != nil {
		return models.Task{}, err
	}

	t := r.tasks[i].Clone()
	if err := applyPatch(&t, TaskPatch{Subtasks: &subs}); err != nil {
		return models.Task{}, err
	}
	r.tasks[i] = t
	r.persistLocked()
	r.publish(realtime.TaskUpdated, t.ID)
	return t.Clone(), nil
}

func checkIndex(subs []models.Subtask, index int) error {
	if index < 0 || index >= len(subs) {
		return fmt.Errorf("%w: %d", ErrSubtaskIndex, index)
	}
	return nil
}

// AddSubtask appends a subtask at the end of the list.
func (r *Repository) AddSubtask(id, name, date string) (models.Task, bool, error) {
	return r.editSubtasks(id, func(subs []models.Subtask) ([]models.Subtask, error) {
		return append(subs, models.NewSubtask(name, date, len(subs)+1)), nil
	})
}

// UpdateSubtask changes fields of the subtask at index.
func (r *Repository) UpdateSubtask(id string, index int, p SubtaskPatch) (models.Task, bool, error) {
	return r.editSubtasks(id, func(subs []models.Subtask) ([]models.Subtask, error) {
		if err := checkIndex(subs, index); err != nil {
			return nil, err
		}
		s := &subs[index]
		if p.Name != nil {
			s.Name = *p.Name
		}
		if p.Date != nil {
			s.Date = *p.Date
		}
		if p.Completed != nil {
			s.Completed = *p.Completed
		}
		if p.EstimatedTime != nil && *p.EstimatedTime > 0 {
			s.EstimatedTime = *p.EstimatedTime
		}
		if p.Workload != nil {
			s.Workload = models.ParseWorkload(string(*p.Workload))
		}
		return subs, nil
	})
}

// ToggleSubtask flips the completion flag of the subtask at index.
func (r *Repository) ToggleSubtask(id string, index int) (models.Task, bool, error) {
	return r.editSubtasks(id, func(subs []models.Subtask) ([]models.Subtask, error) {
		if err := checkIndex(subs, index); err != nil {
			return nil, err
		}
		subs[index].Completed = !subs[index].Completed
		return subs, nil
	})
}

// ReorderSubtask moves the subtask at from so it ends up at index to.
func (r *Repository) ReorderSubtask(id string, from, to int) (models.Task, bool, error) {
	return r.editSubtasks(id, func(subs []models.Subtask) ([]models.Subtask, error) {
		if err := checkIndex(subs, from); err != nil {
			return nil, err
		}
		if err := checkIndex(subs, to); err != nil {
			return nil, err
		}
		moved := subs[from]
		subs = append(subs[:from], subs[from+1:]...)
		subs = append(subs[:to], append([]models.Subtask{moved}, subs[to:]...)...)
		return subs, nil
	})
}

// DeleteSubtask removes the subtask at index. Removing the last subtask
// removes the task too; the returned task then has no subtasks and removed
// is true.
func (r *Repository) DeleteSubtask(id string, index int) (task models.Task, removed, found bool, err error) {
	defer r.flush()
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return models.Task{}, false, false, nil
	}
	if err := checkIndex(r.tasks[i].Subtasks, index); err != nil {
		return models.Task{}, false, true, err
	}
	if len(r.tasks[i].Subtasks) == 1 {
		t := r.tasks[i].Clone()
		t.Subtasks = []models.Subtask{}
		r.deleteLocked(t.ID)
		log.Printf("repository: removed %s after its last subtask was deleted", t.ID)
		return t, true, true, nil
	}

	task, err = r.editSubtasksLocked(i, func(subs []models.Subtask) ([]models.Subtask, error) {
		return append(subs[:index], subs[index+1:]...), nil
	})
	return task, false, true, err
}
