package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"task-secretary-api/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrMissingFields  = errors.New("email and password are required")
)

// UserStore keeps accounts in a flat JSON file that is read and rewritten on
// every call.
type UserStore struct {
	mu   sync.Mutex
	path string
}

func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

func (s *UserStore) readLocked() ([]models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) writeLocked(users []models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create users dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds an account with a bcrypt-hashed password.
func (s *UserStore) Create(email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readLocked()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return models.User{}, ErrEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Email: email, Password: string(hash)}
	if err := s.writeLocked(append(users, user)); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks a password. Accounts written before hashing was added
// still hold plaintext and are compared directly.
func (s *UserStore) Authenticate(email, password string) (models.User, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	users, err := s.readLocked()
	s.mu.Unlock()
	if err != nil {
		return models.User{}, err
	}

	for _, u := range users {
		if normalizeEmail(u.Email) != email {
			continue
		}
		if passwordMatches(u.Password, password) {
			return u, nil
		}
		break
	}
	return models.User{}, ErrBadCredentials
}

func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored != "" && stored == given
}
