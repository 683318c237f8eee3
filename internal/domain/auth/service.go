package auth

import (
	"context"
	"strings"
	"time"

	"crewshift/internal/domain/apperr"
)

type Service struct {
	Store    UserStore
	Secret   string
	TokenTTL time.Duration
}

func NewService(store UserStore, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Login exchanges credentials for a signed token. Unknown emails and bad
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "auth.Login"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperr.Validation(op, []apperr.FieldIssue{{Field: "email", Reason: "email and password are required"}})
	}

	user, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Session{}, apperr.New(apperr.KindUnauthenticated, op, "invalid credentials")
		}
		return Session{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, apperr.New(apperr.KindUnauthenticated, op, "invalid credentials")
	}

	token, err := GenerateToken(s.Secret, user.Identity(), s.TokenTTL)
	if err != nil {
		return Session{}, apperr.Store(op, err)
	}
	return Session{Token: token, ExpiresAt: time.Now().Add(s.TokenTTL), User: user}, nil
}

func (s *Service) Register(ctx context.Context, email, name, password string, role Role) (User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, apperr.Store("auth.Register", err)
	}
	return s.Store.CreateUser(ctx, User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	})
}
