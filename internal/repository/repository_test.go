package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-secretary-api/internal/ai"
	"task-secretary-api/internal/models"
	"task-secretary-api/internal/realtime"
	"task-secretary-api/internal/storage"
	"task-secretary-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type memStore struct {
	mu    sync.Mutex
	saved [][]models.Task
	seed  []models.Task
}

func (s *memStore) Load() []models.Task {
	out := make([]models.Task, len(s.seed))
	copy(out, s.seed)
	return out
}

func (s *memStore) Save(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, tasks)
}

func (s *memStore) last() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil
	}
	return s.saved[len(s.saved)-1]
}

type fakePlanner struct {
	decomposition ai.Decomposition
	schedule      []models.Subtask
	block         chan struct{}
	entered       chan struct{}
}

func (p *fakePlanner) Decompose(ctx context.Context, b ai.Brief) ai.Decomposition {
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ai.Fallback(b.Description)
		}
	}
	return p.decomposition
}

func (p *fakePlanner) Schedule(context.Context, ai.Brief, ai.Decomposition) []models.Subtask {
	if p.schedule == nil {
		return nil
	}
	out := make([]models.Subtask, len(p.schedule))
	copy(out, p.schedule)
	return out
}

type eventLog struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (l *eventLog) Publish(userID string, evt realtime.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	evt.UserID = userID
	l.events = append(l.events, evt)
}

func (l *eventLog) types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

func newRepo(planner Planner, seed ...models.Task) (*Repository, *memStore, *eventLog) {
	store := &memStore{seed: seed}
	events := &eventLog{}
	repo := New("alice", store, Deps{
		Planner: planner,
		Events:  events,
		Now:     func() time.Time { return today },
	})
	return repo, store, events
}

func threeSteps() *fakePlanner {
	return &fakePlanner{decomposition: ai.Decomposition{
		Steps:      []string{"buy paint", "sand", "paint"},
		Type:       models.TypeOneOff,
		Complexity: models.ComplexitySimple,
	}}
}

func TestCreateInput_Validate(t *testing.T) {
	ok := CreateInput{Description: "x", Category: "工作", Deadline: "2024-01-10"}
	require.NoError(t, ok.Validate())

	cases := map[string]CreateInput{
		"no description": {Category: "工作", Deadline: "2024-01-10"},
		"no category":    {Description: "x", Deadline: "2024-01-10"},
		"bad deadline":   {Description: "x", Category: "工作", Deadline: "soon"},
		"start after":    {Description: "x", Category: "工作", Deadline: "2024-01-10", StartDate: "2024-02-01"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, in.Validate(), ErrValidation)
		})
	}
}

func TestCreate_WithoutAI(t *testing.T) {
	repo, store, events := newRepo(nil)

	task, err := repo.Create(context.Background(), CreateInput{
		Description: "Write the quarterly report for finance",
		Category:    "工作",
		Deadline:    "2024-01-10",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^task-\d+$`, task.ID)
	assert.Equal(t, "Write the quarterly ...", task.Title)
	assert.Equal(t, models.StatusUnassigned, task.Status)
	assert.Empty(t, task.Subtasks)
	assert.Equal(t, today, task.CreatedAt)

	require.Len(t, store.last(), 1)
	assert.Equal(t, []string{realtime.TaskCreated}, events.types())
}

func TestCreate_WithAIFallsBackToHeuristic(t *testing.T) {
	repo, store, _ := newRepo(threeSteps())

	task, err := repo.Create(context.Background(), CreateInput{
		Title:       "Paint the fence",
		Description: "Paint the fence before winter",
		Category:    "生活",
		Deadline:    "2024-01-10",
		UseAI:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAssigned, task.Status)
	assert.Equal(t, models.TypeOneOff, task.TaskType)
	assert.Equal(t, models.ComplexitySimple, task.Complexity)
	require.Len(t, task.Subtasks, 3)
	assert.Equal(t, "2024-01-01", task.Subtasks[0].Date)
	assert.Equal(t, "2024-01-04", task.Subtasks[1].Date)
	assert.Equal(t, "2024-01-07", task.Subtasks[2].Date)
	assert.Equal(t, "2024-01-01", task.ScheduledDate)

	require.Equal(t, []models.Task{task}, store.last())
}

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(context.Context, string, string) (string, error) {
	return g.reply, g.err
}

func TestCreate_WithAIClientFallsBackOnBadModel(t *testing.T) {
	cases := map[string]stubGenerator{
		"generator error": {err: errors.New("model unavailable")},
		"non-JSON reply":  {reply: "sorry, I can't help with that"},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			repo, store, _ := newRepo(ai.NewClient(gen, 0))
			task, err := repo.Create(context.Background(), CreateInput{
				Description: "Repaint the fence",
				Category:    "生活",
				Deadline:    "2024-01-10",
				UseAI:       true,
			})
			require.NoError(t, err)
			require.Len(t, task.Subtasks, 1)
			assert.Equal(t, "Repaint the fence", task.Subtasks[0].Name)
			assert.Equal(t, "2024-01-01", task.Subtasks[0].Date)
			assert.Equal(t, models.TypeOneOff, task.TaskType)
			assert.Equal(t, models.ComplexitySimple, task.Complexity)
			assert.Equal(t, models.StatusAssigned, task.Status)
			require.Len(t, store.last(), 1)
		})
	}
}

func TestCreate_WithAIUsesModelSchedule(t *testing.T) {
	planner := threeSteps()
	planner.schedule = []models.Subtask{
		models.NewSubtask("buy paint", "2024-01-02", 7),
		models.NewSubtask("paint", "2024-01-05", 9),
	}
	repo, _, _ := newRepo(planner)

	task, err := repo.Create(context.Background(), CreateInput{
		Description: "Paint the fence", Category: "生活", Deadline: "2024-01-10", UseAI: true,
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, 1, task.Subtasks[0].Priority)
	assert.Equal(t, 2, task.Subtasks[1].Priority)
	assert.Equal(t, "2024-01-02", task.ScheduledDate)
}

func TestCreate_WithAIAndNoPlanner(t *testing.T) {
	repo, _, _ := newRepo(nil)
	task, err := repo.Create(context.Background(), CreateInput{
		Description: "Call mum", Category: "生活", Deadline: "2024-01-03", UseAI: true,
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 1)
	assert.Equal(t, "Call mum", task.Subtasks[0].Name)
	assert.Equal(t, "2024-01-01", task.Subtasks[0].Date)
}

func TestCreate_OnlyOneAICreationAtATime(t *testing.T) {
	planner := threeSteps()
	planner.block = make(chan struct{})
	planner.entered = make(chan struct{}, 1)
	repo, store, _ := newRepo(planner)

	in := CreateInput{Description: "Paint", Category: "生活", Deadline: "2024-01-10", UseAI: true}
	done := make(chan error, 1)
	go func() {
		_, err := repo.Create(context.Background(), in)
		done <- err
	}()
	<-planner.entered

	_, err := repo.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrCreationInProgress)

	// a plain creation does not wait for the model
	_, err = repo.Create(context.Background(), CreateInput{Description: "Read", Category: "学习", Deadline: "2024-01-10"})
	require.NoError(t, err)

	close(planner.block)
	require.NoError(t, <-done)
	assert.Len(t, store.last(), 2)

	planner.entered = nil
	_, err = repo.Create(context.Background(), in)
	require.NoError(t, err)
}

func TestCreate_CancelledDoesNotSave(t *testing.T) {
	planner := threeSteps()
	planner.block = make(chan struct{})
	repo, store, events := newRepo(planner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Create(ctx, CreateInput{Description: "Paint", Category: "生活", Deadline: "2024-01-10", UseAI: true})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, store.last())
	assert.Empty(t, events.types())
	assert.Empty(t, repo.List())
}

func TestCreate_IDsAreUnique(t *testing.T) {
	repo, _, _ := newRepo(nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		task, err := repo.Create(context.Background(), CreateInput{Description: "x", Category: "其他", Deadline: "2024-01-10"})
		require.NoError(t, err)
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func seeded() models.Task {
	return models.Task{
		ID:       "task-1",
		LegacyID: "legacy-1",
		Title:    "Paint the fence",
		Category: "生活",
		Deadline: "2024-01-10",
		Status:   models.StatusAssigned,
		Subtasks: []models.Subtask{
			models.NewSubtask("buy paint", "2024-01-01", 1),
			models.NewSubtask("sand", "2024-01-04", 2),
			models.NewSubtask("paint", "2024-01-07", 3),
		},
		ScheduledDate: "2024-01-01",
		CreatedAt:     today,
	}
}

func TestEdit(t *testing.T) {
	repo, store, events := newRepo(nil, seeded())

	title := "Paint the garden fence"
	task, found, err := repo.Edit("task-1", TaskPatch{Title: &title})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, title, task.Title)
	assert.Equal(t, title, store.last()[0].Title)
	assert.Equal(t, []string{realtime.TaskUpdated}, events.types())

	// legacy ids resolve to the same task
	got, ok := repo.Get("legacy-1")
	require.True(t, ok)
	assert.Equal(t, title, got.Title)
}

func TestEdit_UnknownIDIsNoop(t *testing.T) {
	repo, store, events := newRepo(nil, seeded())
	title := "nope"
	_, found, err := repo.Edit("task-404", TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, store.last())
	assert.Empty(t, events.types())
}

func TestEdit_SubtasksRenumberAndReschedule(t *testing.T) {
	repo, _, _ := newRepo(nil, seeded())
	subs := []models.Subtask{
		models.NewSubtask("paint", "2024-01-05", 3),
		models.NewSubtask("sand", "2024-01-04", 2),
	}
	task, _, err := repo.Edit("task-1", TaskPatch{Subtasks: &subs})
	require.NoError(t, err)
	assert.Equal(t, 1, task.Subtasks[0].Priority)
	assert.Equal(t, 2, task.Subtasks[1].Priority)
	assert.Equal(t, "2024-01-05", task.ScheduledDate)
	// the caller's slice is not modified
	assert.Equal(t, 3, subs[0].Priority)
}

func TestEdit_RejectsEmptyingSubtasks(t *testing.T) {
	repo, store, _ := newRepo(nil, seeded())
	empty := []models.Subtask{}

	_, found, err := repo.Edit("task-1", TaskPatch{Subtasks: &empty})
	require.True(t, found)
	require.ErrorIs(t, err, ErrEmptySubtasks)
	assert.Nil(t, store.last())

	task, ok := repo.Get("task-1")
	require.True(t, ok)
	assert.Len(t, task.Subtasks, 3)

	// a task that never had subtasks accepts an empty list
	bare, err := repo.Create(context.Background(), CreateInput{Description: "x", Category: "工作", Deadline: "2024-01-10"})
	require.NoError(t, err)
	_, _, err = repo.Edit(bare.ID, TaskPatch{Subtasks: &empty})
	require.NoError(t, err)
}

func TestSetStatus(t *testing.T) {
	repo, _, events := newRepo(nil, seeded())

	task, found, err := repo.SetStatus("task-1", models.StatusCompleted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusCompleted, task.Status)

	_, _, err = repo.SetStatus("task-1", models.StatusUnassigned)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	task, _, err = repo.SetStatus("task-1", models.StatusAssigned)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, task.Status)
	assert.Equal(t, []string{realtime.TaskStatusChanged, realtime.TaskStatusChanged}, events.types())
}

func TestDelete(t *testing.T) {
	repo, store, _ := newRepo(nil, seeded())
	assert.False(t, repo.Delete("task-404"))
	assert.Nil(t, store.last())
	assert.True(t, repo.Delete("legacy-1"))
	assert.Empty(t, store.last())
	assert.Empty(t, repo.List())
}

func TestSubtaskOperations(t *testing.T) {
	repo, _, _ := newRepo(nil, seeded())

	task, _, err := repo.AddSubtask("task-1", "clean brushes", "2024-01-09")
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 4)
	assert.Equal(t, 4, task.Subtasks[3].Priority)

	task, _, err = repo.ToggleSubtask("task-1", 0)
	require.NoError(t, err)
	assert.True(t, task.Subtasks[0].Completed)

	name := "sand twice"
	heavy := models.WorkloadHeavy
	task, _, err = repo.UpdateSubtask("task-1", 1, SubtaskPatch{Name: &name, Workload: &heavy})
	require.NoError(t, err)
	assert.Equal(t, "sand twice", task.Subtasks[1].Name)
	assert.Equal(t, models.WorkloadHeavy, task.Subtasks[1].Workload)

	task, _, err = repo.ReorderSubtask("task-1", 3, 0)
	require.NoError(t, err)
	names := []string{}
	for i, s := range task.Subtasks {
		names = append(names, s.Name)
		assert.Equal(t, i+1, s.Priority)
	}
	assert.Equal(t, []string{"clean brushes", "buy paint", "sand twice", "paint"}, names)
	assert.Equal(t, "2024-01-09", task.ScheduledDate)

	_, _, err = repo.ToggleSubtask("task-1", 9)
	require.ErrorIs(t, err, ErrSubtaskIndex)
	_, _, err = repo.ReorderSubtask("task-1", 0, 4)
	require.ErrorIs(t, err, ErrSubtaskIndex)
}

func TestDeleteSubtask_CascadesOnLast(t *testing.T) {
	seed := seeded()
	seed.Subtasks = seed.Subtasks[:2]
	repo, store, events := newRepo(nil, seed)

	task, removed, found, err := repo.DeleteSubtask("task-1", 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, removed)
	require.Len(t, task.Subtasks, 1)
	assert.Equal(t, "sand", task.Subtasks[0].Name)
	assert.Equal(t, 1, task.Subtasks[0].Priority)

	_, _, _, err = repo.DeleteSubtask("task-1", 3)
	require.ErrorIs(t, err, ErrSubtaskIndex)

	task, removed, found, err = repo.DeleteSubtask("task-1", 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, removed)
	assert.Equal(t, "task-1", task.ID)
	assert.Empty(t, repo.List())
	assert.Empty(t, store.last())
	assert.Equal(t, []string{realtime.TaskUpdated, realtime.TaskDeleted}, events.types())

	_, _, found, err = repo.DeleteSubtask("task-1", 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestList_ReturnsCopies(t *testing.T) {
	repo, _, _ := newRepo(nil, seeded())
	list := repo.List()
	list[0].Subtasks[0].Name = "mutated"
	got, _ := repo.Get("task-1")
	assert.Equal(t, "buy paint", got.Subtasks[0].Name)
}

func TestRegistry_PersistsPerUser(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	kv := storage.NewGormKV(db)
	deps := Deps{Now: func() time.Time { return today }}

	reg := NewRegistry(kv, deps)
	alice := reg.ForUser("alice")
	require.Same(t, alice, reg.ForUser("alice"))

	_, err = alice.Create(context.Background(), CreateInput{Description: "x", Category: "其他", Deadline: "2024-01-10"})
	require.NoError(t, err)
	assert.Empty(t, reg.ForUser("bob").List())

	// a fresh registry reads what the first one wrote
	reloaded := NewRegistry(kv, deps).ForUser("alice").List()
	require.Len(t, reloaded, 1)
	assert.Equal(t, "x", reloaded[0].Description)
}
