package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-broadcast-bot/internal/application"
	"telegram-broadcast-bot/internal/config"
	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/infra/i18n"
	"telegram-broadcast-bot/internal/infra/logging"
	red "telegram-broadcast-bot/internal/infra/redis"
	"telegram-broadcast-bot/internal/usecase"
)

// Bot polls updates and delegates to the BotFacade. Outbound traffic
// goes through the shared Client so the delivery loop and the polling
// loop use the same authorized session.
type Bot struct {
	client      *Client
	cfg         *config.BotConfig
	facade      *application.BotFacade
	tr          *i18n.Translator
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	adminIDs      map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewBot(
	cfg *config.BotConfig,
	client *Client,
	facade *application.BotFacade,
	tr *i18n.Translator,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if client == nil {
		return nil, errors.New("telegram client is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if tr == nil {
		return nil, errors.New("translator is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	return &Bot{
		client:        client,
		cfg:           cfg,
		facade:        facade,
		tr:            tr,
		rateLimiter:   rateLimiter,
		log:           logger,
		adminIDs:      adminMap,
		updateWorkers: workers,
	}, nil
}

func (b *Bot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.client.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := b.handleUpdate(ctx, up); err != nil {
						b.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (b *Bot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

func (b *Bot) isAdmin(tgID int64) bool {
	_, ok := b.adminIDs[tgID]
	return ok
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return b.handleQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}
	if !msg.Chat.IsPrivate() {
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithTgID(ctx, chatID)
	log := logging.With(ctx, b.log)

	// Every private contact lands in the registry before any routing,
	// including unknown commands and plain chatter.
	if _, err := b.facade.UserUC.RegisterOrFetch(ctx, chatID, msg.From.UserName); err != nil {
		log.Error().Err(err).Msg("user registration failed")
	}

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}
	if b.rateLimiter != nil {
		allowed, err := b.rateLimiter.Allow(ctx, red.UserCommandKey(chatID, command), 20, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter check failed")
		} else if !allowed {
			log.Debug().Str("command", command).Msg("rate limited, update dropped")
			return nil
		}
	}

	if msg.IsCommand() {
		if handler, ok := b.commandRoutes()[msg.Command()]; ok {
			return handler(ctx, msg)
		}
		// Unknown commands fall through so an operator can broadcast a
		// message that happens to start with a slash.
	}

	return b.handleComposeMessage(ctx, msg)
}

// handleComposeMessage advances the mailing conversation for operators.
// For everyone else, and for operators with no conversation open, the
// message has already been registered and needs no reply.
func (b *Bot) handleComposeMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(msg.From.ID) {
		return nil
	}
	chatID := msg.Chat.ID

	step, err := b.facade.MailingUC.Step(ctx, chatID)
	if err != nil {
		return b.sendError(ctx, chatID)
	}

	switch step {
	case usecase.StepAwaitingMessage:
		captured, err := b.facade.MailingUC.CaptureMessage(ctx, chatID, model.MessageRef{
			ChatID:    chatID,
			MessageID: msg.MessageID,
		})
		if err != nil {
			return b.sendError(ctx, chatID)
		}
		if !captured {
			return nil
		}
		return b.sendWithCancel(chatID, b.tr.T("enter_mailing_markup"))

	case usecase.StepAwaitingMarkup:
		mailing, err := b.facade.MailingUC.Finalize(ctx, chatID, msg.Text)
		if errors.Is(err, domain.ErrMalformedMarkup) {
			return b.sendWithCancel(chatID, b.tr.T("incorrect_mailing_markup"))
		}
		if err != nil {
			return b.sendError(ctx, chatID)
		}
		if mailing == nil {
			return nil
		}
		return b.runBroadcast(ctx, chatID, mailing)

	default:
		return nil
	}
}

// runBroadcast acknowledges the operator, runs the delivery pass and
// reports the aggregate outcome. The run is synchronous so the stats
// reply describes the finished pass.
func (b *Bot) runBroadcast(ctx context.Context, chatID int64, mailing *usecase.Mailing) error {
	if err := b.client.SendText(ctx, chatID, b.tr.T("start_mailing"), nil); err != nil {
		b.log.Warn().Err(err).Msg("failed to ack mailing start")
	}

	report, err := b.facade.BroadcastUC.Run(ctx, mailing.Ref, mailing.Markup)
	if err != nil && report == nil {
		return b.sendError(ctx, chatID)
	}
	return b.client.SendText(ctx, chatID, b.tr.T("mailing_stats",
		report.Total, report.Sent, report.Unsent, report.Elapsed.Seconds()), nil)
}

func (b *Bot) sendWithCancel(chatID int64, text string) error {
	return b.client.sendCallbackButton(chatID, text, b.tr.T("button_cancel"), "cancel")
}

func (b *Bot) sendError(ctx context.Context, chatID int64) error {
	return b.client.SendText(ctx, chatID, b.tr.T("error_generic"), nil)
}
