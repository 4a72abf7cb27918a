package application

import (
	"context"
	"strconv"
	"strings"

	"telegram-broadcast-bot/internal/config"
	"telegram-broadcast-bot/internal/usecase"
)

// BotFacade bundles the use cases behind a single dependency for the
// transport adapters. It owns no logic of its own beyond small
// composition helpers.
type BotFacade struct {
	UserUC      usecase.UserUseCase
	MailingUC   usecase.MailingUseCase
	BroadcastUC usecase.BroadcastUseCase
	Settings    *config.Settings
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	mailingUC usecase.MailingUseCase,
	broadcastUC usecase.BroadcastUseCase,
	settings *config.Settings,
) *BotFacade {
	return &BotFacade{
		UserUC:      userUC,
		MailingUC:   mailingUC,
		BroadcastUC: broadcastUC,
		Settings:    settings,
	}
}

// ExportPayload renders the registry as a space separated list of
// Telegram ids, the format the export document carries. Returns an
// empty string when no users are registered.
func (f *BotFacade) ExportPayload(ctx context.Context) (string, error) {
	ids, err := f.UserUC.ListIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, " "), nil
}
