package usecase

import (
	"context"

	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compose-flow steps, stored in the conversation-state repository. No
// stored state means the conversation is idle.
const (
	StepAwaitingMessage = "mailing_awaiting_message"
	StepAwaitingMarkup  = "mailing_awaiting_markup"
)

// Mailing is a finalized compose result: the captured source message and
// its validated button layout, ready for dispatch.
type Mailing struct {
	Ref    model.MessageRef
	Markup model.Markup
}

// MailingUseCase drives the per-operator compose conversation:
//
//	idle -> awaiting message -> awaiting markup -> idle
//
// Cancel returns to idle from any step. Transitions invoked in the wrong
// step are no-ops, signalled by a false/nil result rather than an error;
// the router simply moves on.
type MailingUseCase interface {
	// Begin starts the compose flow. Refused with ErrBroadcastRunning while
	// a broadcast run is active.
	Begin(ctx context.Context, tgID int64) error
	// Step reports the conversation's current step ("" when idle).
	Step(ctx context.Context, tgID int64) (string, error)
	// CaptureMessage stores the source message reference. Returns false
	// when the conversation is not awaiting a message.
	CaptureMessage(ctx context.Context, tgID int64, ref model.MessageRef) (bool, error)
	// Finalize validates the markup text and closes the flow. On
	// ErrMalformedMarkup the state is kept so the operator can retry.
	// Returns (nil, nil) when the conversation is not awaiting markup.
	Finalize(ctx context.Context, tgID int64, raw string) (*Mailing, error)
	// Cancel drops any stored state and returns the conversation to idle.
	Cancel(ctx context.Context, tgID int64) error
}

var _ MailingUseCase = (*mailingUC)(nil)

type mailingUC struct {
	states      repository.StateRepository
	broadcaster BroadcastUseCase
	log         *zerolog.Logger
}

func NewMailingUseCase(states repository.StateRepository, broadcaster BroadcastUseCase, logger *zerolog.Logger) *mailingUC {
	return &mailingUC{states: states, broadcaster: broadcaster, log: logger}
}

func (uc *mailingUC) Begin(ctx context.Context, tgID int64) error {
	if uc.broadcaster.Busy() {
		return domain.ErrBroadcastRunning
	}
	uc.log.Debug().Int64("tg_id", tgID).Msg("compose flow started")
	return uc.states.SetState(ctx, tgID, &repository.ConversationState{Step: StepAwaitingMessage})
}

func (uc *mailingUC) Step(ctx context.Context, tgID int64) (string, error) {
	st, err := uc.states.GetState(ctx, tgID)
	if err != nil {
		return "", err
	}
	if st == nil {
		return "", nil
	}
	return st.Step, nil
}

func (uc *mailingUC) CaptureMessage(ctx context.Context, tgID int64, ref model.MessageRef) (bool, error) {
	st, err := uc.states.GetState(ctx, tgID)
	if err != nil {
		return false, err
	}
	if st == nil || st.Step != StepAwaitingMessage {
		return false, nil
	}
	next := &repository.ConversationState{Step: StepAwaitingMarkup, Message: &ref}
	if err := uc.states.SetState(ctx, tgID, next); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *mailingUC) Finalize(ctx context.Context, tgID int64, raw string) (*Mailing, error) {
	st, err := uc.states.GetState(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.Step != StepAwaitingMarkup || st.Message == nil {
		return nil, nil
	}

	markup, err := model.ParseMarkup(raw)
	if err != nil {
		// The operator retries; the captured message stays put.
		return nil, err
	}

	if err := uc.states.ClearState(ctx, tgID); err != nil {
		return nil, err
	}
	uc.log.Debug().Int64("tg_id", tgID).Int("buttons", len(markup)).Msg("compose flow finalized")
	return &Mailing{Ref: *st.Message, Markup: markup}, nil
}

func (uc *mailingUC) Cancel(ctx context.Context, tgID int64) error {
	uc.log.Debug().Int64("tg_id", tgID).Msg("compose flow cancelled")
	return uc.states.ClearState(ctx, tgID)
}
