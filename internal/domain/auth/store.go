package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/platform/querier"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role}
}

// UserLookup resolves a user by id; other packages depend on it for
// ownership and contact details.
type UserLookup interface {
	FindUserByID(ctx context.Context, id string) (User, error)
}

type UserStore interface {
	UserLookup
	FindUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, email, name, role, password_hash, created_at
    FROM users
    WHERE lower(email) = lower($1)
  `, email)
	return scanUser(row, "auth.FindUserByEmail")
}

func (s *Store) FindUserByID(ctx context.Context, id string) (User, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, email, name, role, password_hash, created_at
    FROM users
    WHERE id = $1
  `, id)
	return scanUser(row, "auth.FindUserByID")
}

func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, name, role, password_hash)
    VALUES ($1,$2,$3,$4)
    RETURNING id, created_at
  `, user.Email, user.Name, user.Role.String(), user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if querier.IsUniqueViolation(err, "users_email_key") {
			return User{}, apperr.Validation("auth.CreateUser", []apperr.FieldIssue{{Field: "email", Reason: "email is already registered"}})
		}
		return User{}, apperr.Store("auth.CreateUser", err)
	}
	return user, nil
}

func scanUser(row pgx.Row, op string) (User, error) {
	var (
		out  User
		role string
	)
	if err := row.Scan(&out.ID, &out.Email, &out.Name, &role, &out.PasswordHash, &out.CreatedAt); err != nil {
		if querier.IsNoRows(err) {
			return User{}, apperr.New(apperr.KindNotFound, op, "user not found")
		}
		return User{}, apperr.Store(op, err)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return User{}, apperr.Store(op, err)
	}
	out.Role = parsed
	return out, nil
}
