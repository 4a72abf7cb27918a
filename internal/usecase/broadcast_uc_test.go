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

func TestBroadcastRun(t *testing.T) {
	ctx := context.Background()
	ref := model.MessageRef{ChatID: 1, MessageID: 10}

	t.Run("delivers to every user in registration order", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.seed(100, 200, 300)
		sender := newMockSender()
		uc := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())

		report, err := uc.Run(ctx, ref, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if report.Total != 3 || report.Sent != 3 || report.Unsent != 0 {
			t.Fatalf("unexpected report: %+v", report)
		}
		order := sender.copiedOrder()
		want := []int64{100, 200, 300}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("delivery order = %v, want %v", order, want)
			}
		}
	})

	t.Run("failed delivery is counted and skipped", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.seed(100, 200, 300, 400)
		sender := newMockSender()
		sender.failFor[200] = true
		sender.failFor[300] = true
		uc := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())

		report, err := uc.Run(ctx, ref, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if report.Total != 4 || report.Sent != 2 || report.Unsent != 2 {
			t.Fatalf("unexpected report: %+v", report)
		}
		if report.Total != report.Sent+report.Unsent {
			t.Fatalf("totals don't add up: %+v", report)
		}
		// Users after the failed ones still get their copy.
		if got := sender.copiedOrder(); got[len(got)-1] != 400 {
			t.Fatalf("last delivery = %d, want 400", got[len(got)-1])
		}
	})

	t.Run("empty registry finishes with a zero report", func(t *testing.T) {
		repo := newMemUserRepo()
		sender := newMockSender()
		uc := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())

		report, err := uc.Run(ctx, ref, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if report.Total != 0 || report.Sent != 0 || report.Unsent != 0 {
			t.Fatalf("unexpected report: %+v", report)
		}
	})

	t.Run("second run is refused while the first is active", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.seed(100)
		sender := newMockSender()
		sender.block = make(chan struct{})
		uc := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = uc.Run(ctx, ref, nil)
		}()

		// Wait until the first run is inside the delivery loop.
		deadline := time.After(2 * time.Second)
		for !uc.Busy() {
			select {
			case <-deadline:
				t.Fatal("first run never became busy")
			case <-time.After(time.Millisecond):
			}
		}

		if _, err := uc.Run(ctx, ref, nil); !errors.Is(err, domain.ErrBroadcastRunning) {
			t.Fatalf("expected ErrBroadcastRunning, got %v", err)
		}

		close(sender.block)
		<-done
		if uc.Busy() {
			t.Fatal("use case still busy after run finished")
		}
	})

	t.Run("list failure aborts before any delivery", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.errList = errors.New("db down")
		sender := newMockSender()
		uc := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())

		if _, err := uc.Run(ctx, ref, nil); err == nil {
			t.Fatal("expected error from Run")
		}
		if len(sender.copiedOrder()) != 0 {
			t.Fatal("no deliveries should have happened")
		}
	})

	t.Run("last report survives the run", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.seed(100, 200)
		sender := newMockSender()
		uc := NewBroadcastUseCase(repo, sender, time.Millisecond, newTestLogger())

		if got := uc.LastReport(); got != nil {
			t.Fatalf("expected no report before first run, got %+v", got)
		}
		want, err := uc.Run(ctx, ref, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		got := uc.LastReport()
		if got == nil || got.Total != want.Total || got.Sent != want.Sent {
			t.Fatalf("LastReport = %+v, want %+v", got, want)
		}
	})
}
