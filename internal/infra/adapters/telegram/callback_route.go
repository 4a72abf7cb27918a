package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/infra/logging"
)

type cbHandler func(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64) error

func (b *Bot) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cancel": b.handleCancelCallback,
		"start":  b.handleStartCallback,
	}
}

func (b *Bot) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop the telegram spinner when we return
	defer func() { _, _ = b.client.api.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}
	ctx = logging.WithTgID(ctx, chatID)

	data := strings.TrimSpace(query.Data)
	if fn, ok := b.cbRoutes()[data]; ok {
		return fn(ctx, query, chatID)
	}
	b.log.Debug().Str("data", data).Msg("unknown callback data ignored")
	return nil
}

// handleCancelCallback aborts an operator's compose conversation. The
// prompt carrying the button is edited in place so stale cancel buttons
// disappear from the chat history.
func (b *Bot) handleCancelCallback(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64) error {
	if !b.isAdmin(query.From.ID) {
		return nil
	}
	if err := b.facade.MailingUC.Cancel(ctx, chatID); err != nil {
		return b.sendError(ctx, chatID)
	}
	if query.Message != nil {
		edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, b.tr.T("cancelled"))
		if _, err := b.client.api.Send(edit); err == nil {
			return nil
		}
	}
	return b.client.SendText(ctx, chatID, b.tr.T("cancelled"), nil)
}

// handleStartCallback is the second funnel step. It pitches again and
// attaches the configured outreach link, or apologizes when none is set.
func (b *Bot) handleStartCallback(ctx context.Context, _ *tgbotapi.CallbackQuery, chatID int64) error {
	url := b.facade.Settings.OutreachURL()
	if url == "" {
		return b.client.SendText(ctx, chatID, b.tr.T("no_outreach_url"), nil)
	}
	return b.client.SendText(ctx, chatID, b.tr.T("funnel_follow_up"), model.Markup{
		{Label: b.tr.T("button_outreach"), URL: url},
	})
}
