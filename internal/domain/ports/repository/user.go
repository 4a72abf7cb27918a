package repository

import (
	"context"

	"telegram-broadcast-bot/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Save inserts the user if no record with the same Telegram id exists.
	// Concurrent duplicate saves must insert at most one record; saving an
	// already-registered user is a no-op, not an error.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	// ListAll returns every registered user in registration order. The
	// broadcast dispatcher relies on the order being stable for the single
	// pass it takes per run.
	ListAll(ctx context.Context, tx Tx) ([]*model.User, error)
}
