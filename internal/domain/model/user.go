package model

import (
	"time"

	"telegram-broadcast-bot/internal/domain"

	"github.com/google/uuid"
)

// User is a registered conversational endpoint eligible to receive broadcasts.
// A record is created on first private-chat contact and never mutated afterwards.
type User struct {
	ID           string
	TelegramID   int64
	Username     string
	RegisteredAt time.Time
}

func NewUser(id string, tgID int64, username string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		TelegramID:   tgID,
		Username:     username,
		RegisteredAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
