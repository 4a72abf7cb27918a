//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
)

const operatorID int64 = 42

func newMailingFixture() (*mailingUC, *memStateRepo, BroadcastUseCase, *mockSender) {
	states := newMemStateRepo()
	repo := newMemUserRepo()
	sender := newMockSender()
	broadcaster := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())
	uc := NewMailingUseCase(states, broadcaster, newTestLogger())
	return uc, states, broadcaster, sender
}

func TestMailingFlow(t *testing.T) {
	ctx := context.Background()
	ref := model.MessageRef{ChatID: operatorID, MessageID: 7}

	t.Run("happy path walks idle to finalized", func(t *testing.T) {
		uc, _, _, _ := newMailingFixture()

		if err := uc.Begin(ctx, operatorID); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if step, _ := uc.Step(ctx, operatorID); step != StepAwaitingMessage {
			t.Fatalf("step = %q, want %q", step, StepAwaitingMessage)
		}

		captured, err := uc.CaptureMessage(ctx, operatorID, ref)
		if err != nil || !captured {
			t.Fatalf("CaptureMessage = (%v, %v), want (true, nil)", captured, err)
		}
		if step, _ := uc.Step(ctx, operatorID); step != StepAwaitingMarkup {
			t.Fatalf("step = %q, want %q", step, StepAwaitingMarkup)
		}

		mailing, err := uc.Finalize(ctx, operatorID, "Shop - https://example.com")
		if err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if mailing == nil || mailing.Ref != ref {
			t.Fatalf("mailing = %+v, want ref %+v", mailing, ref)
		}
		if len(mailing.Markup) != 1 || mailing.Markup[0].URL != "https://example.com" {
			t.Fatalf("unexpected markup: %+v", mailing.Markup)
		}
		if step, _ := uc.Step(ctx, operatorID); step != "" {
			t.Fatalf("conversation not idle after finalize, step = %q", step)
		}
	})

	t.Run("markup sentinel finalizes with no buttons", func(t *testing.T) {
		uc, _, _, _ := newMailingFixture()
		_ = uc.Begin(ctx, operatorID)
		_, _ = uc.CaptureMessage(ctx, operatorID, ref)

		mailing, err := uc.Finalize(ctx, operatorID, "-")
		if err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if len(mailing.Markup) != 0 {
			t.Fatalf("expected empty markup, got %+v", mailing.Markup)
		}
	})

	t.Run("malformed markup keeps the conversation open", func(t *testing.T) {
		uc, _, _, _ := newMailingFixture()
		_ = uc.Begin(ctx, operatorID)
		_, _ = uc.CaptureMessage(ctx, operatorID, ref)

		mailing, err := uc.Finalize(ctx, operatorID, "no separator here")
		if !errors.Is(err, domain.ErrMalformedMarkup) {
			t.Fatalf("expected ErrMalformedMarkup, got %v", err)
		}
		if mailing != nil {
			t.Fatalf("expected nil mailing, got %+v", mailing)
		}
		if step, _ := uc.Step(ctx, operatorID); step != StepAwaitingMarkup {
			t.Fatalf("step = %q, retry should stay in %q", step, StepAwaitingMarkup)
		}

		// The retry with a valid layout still carries the captured message.
		mailing, err = uc.Finalize(ctx, operatorID, "Go - https://example.com")
		if err != nil || mailing == nil || mailing.Ref != ref {
			t.Fatalf("retry Finalize = (%+v, %v)", mailing, err)
		}
	})

	t.Run("blank markup submission never finalizes", func(t *testing.T) {
		// A non-text message in the markup step reaches Finalize as "";
		// that must re-prompt, not dispatch a buttonless mailing.
		uc, _, _, _ := newMailingFixture()
		_ = uc.Begin(ctx, operatorID)
		_, _ = uc.CaptureMessage(ctx, operatorID, ref)

		for _, raw := range []string{"", "\n", "   "} {
			mailing, err := uc.Finalize(ctx, operatorID, raw)
			if !errors.Is(err, domain.ErrMalformedMarkup) {
				t.Fatalf("Finalize(%q): expected ErrMalformedMarkup, got %v", raw, err)
			}
			if mailing != nil {
				t.Fatalf("Finalize(%q) produced a dispatchable mailing: %+v", raw, mailing)
			}
		}
		if step, _ := uc.Step(ctx, operatorID); step != StepAwaitingMarkup {
			t.Fatalf("step = %q, want %q", step, StepAwaitingMarkup)
		}
	})

	t.Run("capture without begin is a no-op", func(t *testing.T) {
		uc, _, _, _ := newMailingFixture()
		captured, err := uc.CaptureMessage(ctx, operatorID, ref)
		if err != nil || captured {
			t.Fatalf("CaptureMessage = (%v, %v), want (false, nil)", captured, err)
		}
	})

	t.Run("finalize without capture is a no-op", func(t *testing.T) {
		uc, _, _, _ := newMailingFixture()
		_ = uc.Begin(ctx, operatorID)
		mailing, err := uc.Finalize(ctx, operatorID, "-")
		if err != nil || mailing != nil {
			t.Fatalf("Finalize = (%+v, %v), want (nil, nil)", mailing, err)
		}
	})

	t.Run("cancel drops the captured message", func(t *testing.T) {
		uc, states, _, _ := newMailingFixture()
		_ = uc.Begin(ctx, operatorID)
		_, _ = uc.CaptureMessage(ctx, operatorID, ref)

		if err := uc.Cancel(ctx, operatorID); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
		if st, _ := states.GetState(ctx, operatorID); st != nil {
			t.Fatalf("state not cleared: %+v", st)
		}
		if mailing, err := uc.Finalize(ctx, operatorID, "-"); err != nil || mailing != nil {
			t.Fatalf("Finalize after cancel = (%+v, %v), want (nil, nil)", mailing, err)
		}
	})

	t.Run("cancel when idle succeeds", func(t *testing.T) {
		uc, _, _, _ := newMailingFixture()
		if err := uc.Cancel(ctx, operatorID); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
	})

	t.Run("begin is refused while a broadcast runs", func(t *testing.T) {
		states := newMemStateRepo()
		repo := newMemUserRepo()
		repo.seed(100)
		sender := newMockSender()
		sender.block = make(chan struct{})
		broadcaster := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())
		uc := NewMailingUseCase(states, broadcaster, newTestLogger())

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = broadcaster.Run(ctx, ref, nil)
		}()
		deadline := time.After(2 * time.Second)
		for !broadcaster.Busy() {
			select {
			case <-deadline:
				t.Fatal("broadcast never became busy")
			case <-time.After(time.Millisecond):
			}
		}

		if err := uc.Begin(ctx, operatorID); !errors.Is(err, domain.ErrBroadcastRunning) {
			t.Fatalf("expected ErrBroadcastRunning, got %v", err)
		}

		close(sender.block)
		<-done
		if err := uc.Begin(ctx, operatorID); err != nil {
			t.Fatalf("Begin after run failed: %v", err)
		}
	})
}
