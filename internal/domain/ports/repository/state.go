package repository

import (
	"context"

	"telegram-broadcast-bot/internal/domain/model"
)

// ConversationState holds an operator's progress through a multi-step
// conversation. Message is set if and only if the step expects a markup
// for an already-captured message.
type ConversationState struct {
	Step    string            `json:"step"`
	Message *model.MessageRef `json:"message,omitempty"`
}

// StateRepository is the port for managing per-conversation state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	// GetState returns (nil, nil) when no state is stored, i.e. the
	// conversation is idle.
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
