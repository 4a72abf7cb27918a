package usecase

import (
	"context"

	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/domain/ports/repository"
	"telegram-broadcast-bot/internal/infra/logging"
	"telegram-broadcast-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes registry operations used by bot and admin flows.
type UserUseCase interface {
	// RegisterOrFetch returns the existing record for tgID or inserts a new
	// one. Idempotent under concurrent duplicate calls.
	RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error)
	Count(ctx context.Context) (int, error)
	// ListIDs returns every registered Telegram id in registration order.
	ListIDs(ctx context.Context) ([]int64, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var user *model.User
	// The read and the insert run as one atomic operation so that two
	// simultaneous first contacts from the same chat insert a single record.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err == nil {
			user = usr
			return nil
		}
		if err != domain.ErrNotFound {
			return err
		}

		nu, err := model.NewUser("", tgID, username)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to register user")
			return err
		}
		user = nu
		metrics.IncRegisteredUser()
		return nil
	})

	return user, err
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}

func (u *userUC) ListIDs(ctx context.Context) ([]int64, error) {
	defer logging.TraceDuration(u.log, "UserUC.ListIDs")()

	users, err := u.users.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(users))
	for _, usr := range users {
		ids = append(ids, usr.TelegramID)
	}
	return ids, nil
}
