package adapter

import (
	"context"

	"telegram-broadcast-bot/internal/domain/model"
)

// MessageSender is the domain-level port for outbound Telegram traffic.
// Keep it minimal so other layers can implement it.
type MessageSender interface {
	// SendText sends a plain text message; a non-empty markup attaches an
	// inline keyboard.
	SendText(ctx context.Context, chatID int64, text string, markup model.Markup) error
	// CopyMessage re-sends the referenced message's content to chatID with
	// the given markup, without a forward header.
	CopyMessage(ctx context.Context, chatID int64, ref model.MessageRef, markup model.Markup) error
	// SendDocument uploads data as a named file attachment.
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error
}
