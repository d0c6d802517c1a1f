package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by Create when the store's uniqueness
	// constraint rejects the insert.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository defines the interface for user-related database operations.
// Create assigns ID and CreatedAt on success.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Ping(ctx context.Context) error
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	Insert(ctx context.Context, ev entity.AuthEvent) error
}
