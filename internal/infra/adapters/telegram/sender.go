package telegram

import (
	"context"
	"fmt"

	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ adapter.MessageSender = (*Client)(nil)

// Client wraps the Bot API for outbound sends. It is split from the
// polling Bot so the delivery use case can depend on it without a cycle.
type Client struct {
	api *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewClient(token string, logger *zerolog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("telegram client authorized")
	return &Client{api: api, log: logger}, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, markup model.Markup) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if kb, ok := inlineKeyboard(markup); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send text to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) CopyMessage(ctx context.Context, chatID int64, ref model.MessageRef, markup model.Markup) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg := tgbotapi.NewCopyMessage(chatID, ref.ChatID, ref.MessageID)
	if kb, ok := inlineKeyboard(markup); ok {
		cfg.ReplyMarkup = kb
	}
	if _, err := c.api.CopyMessage(cfg); err != nil {
		return fmt.Errorf("copy message to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	if _, err := c.api.Send(doc); err != nil {
		return fmt.Errorf("send document to %d: %w", chatID, err)
	}
	return nil
}

// inlineKeyboard converts a domain markup into one URL button per row,
// mirroring the line-per-button compose format.
func inlineKeyboard(markup model.Markup) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(markup) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(markup))
	for _, btn := range markup {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// sendCallbackButton sends text with a single callback-data button.
// Used for adapter-level prompts such as the compose cancel control.
func (c *Client) sendCallbackButton(chatID int64, text, label, data string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		),
	)
	_, err := c.api.Send(msg)
	return err
}
