package auth

import (
	"task-secretary-api/internal/models"
)

// Session is what register and login hand back to the client.
type Session struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Service ties the user file to token issuance.
type Service struct {
	users  *UserStore
	tokens *TokenIssuer
}

func NewService(users *UserStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(email, password string) (Session, error) {
	u, err := s.users.Create(email, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *Service) Login(email, password string) (Session, error) {
	u, err := s.users.Authenticate(email, password)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *Service) session(u models.User) (Session, error) {
	token, err := s.tokens.GenerateToken(u.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{User: models.PublicUser{Email: u.Email}, Token: token}, nil
}

// Tokens exposes the issuer for request authentication.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}
