package category

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"task-secretary-api/internal/models"
	"task-secretary-api/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrDuplicateName = errors.New("category already exists")
	ErrEmptyName     = errors.New("category name is required")
	ErrNotFound      = errors.New("category not found")
)

// Store loads and saves a user's custom categories.
type Store interface {
	Load() []models.Category
	Save(cats []models.Category)
}

// Service manages one user's custom categories.
type Service struct {
	mu     sync.Mutex
	store  Store
	custom []models.Category
}

func NewService(store Store) *Service {
	return &Service{store: store, custom: store.Load()}
}

// List returns the presets followed by the custom categories.
func (s *Service) List() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Category, 0, len(Presets)+len(s.custom))
	out = append(out, Presets...)
	out = append(out, s.custom...)
	return out
}

// Registry snapshots the current styles.
func (s *Service) Registry() *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewRegistry(s.custom)
}

// Add creates a custom category. Missing icon or color take the default style.
func (s *Service) Add(name, icon, color string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, ErrEmptyName
	}
	if icon == "" {
		icon = DefaultStyle.Icon
	}
	if color == "" {
		color = DefaultStyle.Color
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if isPreset(name) {
		return models.Category{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	for _, c := range s.custom {
		if c.Name == name {
			return models.Category{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}

	c := models.Category{ID: uuid.NewString(), Name: name, Icon: icon, Color: color}
	s.custom = append(s.custom, c)
	s.persistLocked()
	return c, nil
}

// Delete removes a custom category. Tasks filed under it keep the name and
// fall back to the default style.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.custom {
		if c.ID == id {
			s.custom = append(s.custom[:i], s.custom[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

func (s *Service) persistLocked() {
	snapshot := make([]models.Category, len(s.custom))
	copy(snapshot, s.custom)
	s.store.Save(snapshot)
}

// Manager hands out one Service per user.
type Manager struct {
	mu       sync.Mutex
	kv       storage.KV
	services map[string]*Service
}

func NewManager(kv storage.KV) *Manager {
	return &Manager{kv: kv, services: make(map[string]*Service)}
}

func (m *Manager) ForUser(userID string) *Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	if svc, ok := m.services[userID]; ok {
		return svc
	}
	svc := NewService(storage.NewCategoryStore(m.kv, userID))
	m.services[userID] = svc
	return svc
}
