package telegram

import (
	"context"
	"log"
	"time"

	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/domain/ports/adapter"
)

var _ adapter.MessageSender = (*NoopSender)(nil)

// NoopSender implements adapter.MessageSender for local/dev testing.
// It logs deliveries instead of calling the Bot API.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) SendText(ctx context.Context, chatID int64, text string, markup model.Markup) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To chat %d: %s [buttons: %v]\n", chatID, text, markup)
	return nil
}

func (s *NoopSender) CopyMessage(ctx context.Context, chatID int64, ref model.MessageRef, markup model.Markup) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] Copy %d/%d to chat %d [buttons: %v]\n", ref.ChatID, ref.MessageID, chatID, markup)
	return nil
}

func (s *NoopSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	log.Printf("[noop-telegram] Document %q (%d bytes) to chat %d\n", filename, len(data), chatID)
	return nil
}
