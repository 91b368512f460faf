package storage

import (
	"encoding/json"
	"log"

	"task-secretary-api/internal/models"
)

const (
	TasksKey      = "taskManager_tasks"
	CategoriesKey = "taskManager_customCategories"
)

// TaskStore persists the whole task collection as one JSON snapshot.
// Persistence is best-effort: Load never fails and Save only logs.
type TaskStore struct {
	kv  KV
	key string
}

func NewTaskStore(kv KV, scope string) *TaskStore {
	return &TaskStore{kv: kv, key: ScopedKey(scope, TasksKey)}
}

// Load returns the stored tasks, or an empty collection when the entry is
// missing or cannot be decoded.
func (s *TaskStore) Load() []models.Task {
	tasks := []models.Task{}
	if !loadJSON(s.kv, s.key, &tasks) || tasks == nil {
		return []models.Task{}
	}
	for i := range tasks {
		models.Renumber(tasks[i].Subtasks)
	}
	log.Printf("storage: restored %d tasks from %s", len(tasks), s.key)
	return tasks
}

// Save writes a full snapshot of tasks.
func (s *TaskStore) Save(tasks []models.Task) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	if saveJSON(s.kv, s.key, tasks) {
		log.Printf("storage: saved %d tasks to %s", len(tasks), s.key)
	}
}

// CategoryStore persists user-defined categories.
type CategoryStore struct {
	kv  KV
	key string
}

func NewCategoryStore(kv KV, scope string) *CategoryStore {
	return &CategoryStore{kv: kv, key: ScopedKey(scope, CategoriesKey)}
}

func (s *CategoryStore) Load() []models.Category {
	cats := []models.Category{}
	if !loadJSON(s.kv, s.key, &cats) || cats == nil {
		return []models.Category{}
	}
	return cats
}

func (s *CategoryStore) Save(cats []models.Category) {
	if cats == nil {
		cats = []models.Category{}
	}
	saveJSON(s.kv, s.key, cats)
}

func loadJSON(kv KV, key string, out any) bool {
	raw, ok, err := kv.Get(key)
	if err != nil {
		log.Printf("storage: failed to read %s: %v", key, err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Printf("storage: discarding unreadable %s: %v", key, err)
		return false
	}
	return true
}

func saveJSON(kv KV, key string, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("storage: failed to encode %s: %v", key, err)
		return false
	}
	if err := kv.Set(key, string(b)); err != nil {
		log.Printf("storage: failed to write %s: %v", key, err)
		return false
	}
	return true
}
