package repository

import (
	"sync"

	"task-secretary-api/internal/storage"
)

// Registry hands out one Repository per user, loading each lazily from the
// shared key-value store.
type Registry struct {
	mu    sync.Mutex
	kv    storage.KV
	deps  Deps
	repos map[string]*Repository
}

func NewRegistry(kv storage.KV, deps Deps) *Registry {
	return &Registry{
		kv:    kv,
		deps:  deps,
		repos: make(map[string]*Repository),
	}
}

// ForUser returns the repository scoped to userID.
func (g *Registry) ForUser(userID string) *Repository {
	g.mu.Lock()
	defer g.mu.Unlock()

	if repo, ok := g.repos[userID]; ok {
		return repo
	}
	repo := New(userID, storage.NewTaskStore(g.kv, userID), g.deps)
	g.repos[userID] = repo
	return repo
}
