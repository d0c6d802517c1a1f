package postgres

import (
	"context"
	"fmt"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	"github.com/oksasatya/invest-tracker/internal/domain/repository"
)

type AuthEventRepository struct {
	db DBTX
}

func NewAuthEventRepository(db DBTX) *AuthEventRepository {
	return &AuthEventRepository{db: db}
}

// Insert is idempotent on the event id so redelivered messages are harmless.
func (r *AuthEventRepository) Insert(ctx context.Context, ev entity.AuthEvent) error {
	var userID any
	if ev.UserID != "" {
		userID = ev.UserID
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_events (id, type, user_id, email, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, string(ev.Type), userID, ev.Email, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

var _ repository.AuthEventRepository = (*AuthEventRepository)(nil)
