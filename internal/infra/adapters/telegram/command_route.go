package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message) error

// commandRoutes maps slash commands (without the slash) to handlers.
// Operator commands are wrapped in adminOnly.
func (b *Bot) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":           b.handleStartCommand,
		"help":            b.handleHelpCommand,
		"cancel":          b.adminOnly(b.handleCancelCommand),
		"count":           b.adminOnly(b.handleCountCommand),
		"users":           b.adminOnly(b.handleCountCommand),
		"export":          b.adminOnly(b.handleExportCommand),
		"mail":            b.adminOnly(b.handleMailCommand),
		"mailing":         b.adminOnly(b.handleMailCommand),
		"add_url":         b.adminOnly(b.handleAddURLCommand),
		"remove_all_urls": b.adminOnly(b.handleRemoveURLsCommand),
	}
}

// adminOnly drops the command without a reply when the sender is not an
// operator. No reply means the commands stay undiscoverable.
func (b *Bot) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		command := "/" + msg.Command()
		if !b.isAdmin(msg.From.ID) {
			metrics.IncAdminCommand(command, "unauthorized")
			b.log.Warn().Int64("tg_id", msg.From.ID).Str("command", command).
				Msg("operator command from non-operator ignored")
			return nil
		}
		metrics.IncAdminCommand(command, "authorized")
		return next(ctx, msg)
	}
}

func (b *Bot) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	// Registration already happened in handleUpdate; /start only shows
	// the funnel pitch with its START button.
	return b.client.sendCallbackButton(msg.Chat.ID,
		b.tr.T("funnel_intro"), b.tr.T("button_start"), "start")
}

func (b *Bot) handleHelpCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("help_message"), nil)
}

func (b *Bot) handleCountCommand(ctx context.Context, msg *tgbotapi.Message) error {
	count, err := b.facade.UserUC.Count(ctx)
	if err != nil {
		return b.sendError(ctx, msg.Chat.ID)
	}
	return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("users_count", count), nil)
}

func (b *Bot) handleExportCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	if err := b.client.SendText(ctx, chatID, b.tr.T("please_wait"), nil); err != nil {
		b.log.Warn().Err(err).Msg("failed to ack export")
	}

	payload, err := b.facade.ExportPayload(ctx)
	if err != nil {
		return b.sendError(ctx, chatID)
	}
	if payload == "" {
		return b.client.SendText(ctx, chatID, b.tr.T("no_users"), nil)
	}
	if err := b.client.SendDocument(ctx, chatID, "users.txt", []byte(payload)); err != nil {
		b.log.Error().Err(err).Msg("export document send failed")
		return b.client.SendText(ctx, chatID, b.tr.T("no_users"), nil)
	}
	return nil
}

func (b *Bot) handleMailCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	err := b.facade.MailingUC.Begin(ctx, chatID)
	if errors.Is(err, domain.ErrBroadcastRunning) {
		return b.client.SendText(ctx, chatID, b.tr.T("broadcast_busy"), nil)
	}
	if err != nil {
		return b.sendError(ctx, chatID)
	}
	return b.sendWithCancel(chatID, b.tr.T("enter_mailing"))
}

func (b *Bot) handleCancelCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.facade.MailingUC.Cancel(ctx, msg.Chat.ID); err != nil {
		return b.sendError(ctx, msg.Chat.ID)
	}
	return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("cancelled"), nil)
}

func (b *Bot) handleAddURLCommand(ctx context.Context, msg *tgbotapi.Message) error {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("incorrect_value"), nil)
	}
	if err := b.facade.Settings.SetOutreachURL(arg); err != nil {
		b.log.Warn().Err(err).Str("url", arg).Msg("rejected outreach url")
		return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("incorrect_value"), nil)
	}
	return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("saved"), model.Markup{
		{Label: b.tr.T("button_outreach"), URL: b.facade.Settings.OutreachURL()},
	})
}

func (b *Bot) handleRemoveURLsCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.facade.Settings.ClearOutreachURL(); err != nil {
		return b.sendError(ctx, msg.Chat.ID)
	}
	return b.client.SendText(ctx, msg.Chat.ID, b.tr.T("saved"), nil)
}
