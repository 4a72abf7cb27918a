package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/domain/ports/adapter"
	"telegram-broadcast-bot/internal/domain/ports/repository"
	"telegram-broadcast-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// BroadcastUseCase delivers one composed message to every registered user.
type BroadcastUseCase interface {
	// Run takes a single forward pass over the registry, sending a copy of
	// the referenced message to each user in scan order. A failed delivery
	// is counted and skipped; it never aborts the run. Run blocks until the
	// pass completes and at most one run is active at a time.
	Run(ctx context.Context, ref model.MessageRef, markup model.Markup) (*model.BroadcastReport, error)
	// Busy reports whether a run is currently in progress.
	Busy() bool
	// LastReport returns the report of the most recent completed run, or nil.
	LastReport() *model.BroadcastReport
}

type broadcastUC struct {
	users    repository.UserRepository
	sender   adapter.MessageSender
	interval time.Duration
	log      *zerolog.Logger

	running atomic.Bool
	mu      sync.Mutex
	last    *model.BroadcastReport
}

func NewBroadcastUseCase(
	users repository.UserRepository,
	sender adapter.MessageSender,
	interval time.Duration,
	logger *zerolog.Logger,
) BroadcastUseCase {
	return &broadcastUC{
		users:    users,
		sender:   sender,
		interval: interval,
		log:      logger,
	}
}

func (uc *broadcastUC) Run(ctx context.Context, ref model.MessageRef, markup model.Markup) (*model.BroadcastReport, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return nil, domain.ErrBroadcastRunning
	}
	defer uc.running.Store(false)

	users, err := uc.users.ListAll(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to list users for broadcast")
		return nil, err
	}

	uc.log.Info().Int("user_count", len(users)).Msg("starting broadcast run")

	// Fixed pacing between sends to respect Telegram's abuse limits. The
	// pass is strictly sequential so the configured interval stays exact.
	limiter := rate.NewLimiter(rate.Every(uc.interval), 1)
	start := time.Now()
	report := &model.BroadcastReport{}

	for _, usr := range users {
		if err := limiter.Wait(ctx); err != nil {
			// Process shutdown mid-run; report what was attempted.
			report.Elapsed = time.Since(start)
			uc.finish(report)
			return report, err
		}

		if err := uc.sender.CopyMessage(ctx, usr.TelegramID, ref, markup); err != nil {
			report.Unsent++
			metrics.IncBroadcastMessage("unsent")
			uc.log.Warn().Err(err).Int64("tg_id", usr.TelegramID).Msg("broadcast delivery failed")
		} else {
			report.Sent++
			metrics.IncBroadcastMessage("sent")
		}
		report.Total++
	}

	report.Elapsed = time.Since(start)
	uc.finish(report)
	uc.log.Info().
		Int("total", report.Total).
		Int("sent", report.Sent).
		Int("unsent", report.Unsent).
		Dur("elapsed", report.Elapsed).
		Msg("broadcast run finished")
	return report, nil
}

func (uc *broadcastUC) finish(report *model.BroadcastReport) {
	metrics.ObserveBroadcastRun(report.Elapsed)
	uc.mu.Lock()
	uc.last = report
	uc.mu.Unlock()
}

func (uc *broadcastUC) Busy() bool { return uc.running.Load() }

func (uc *broadcastUC) LastReport() *model.BroadcastReport {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.last == nil {
		return nil
	}
	cp := *uc.last
	return &cp
}
