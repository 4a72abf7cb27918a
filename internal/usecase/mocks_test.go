//go:build !integration

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"telegram-broadcast-bot/internal/domain"
	"telegram-broadcast-bot/internal/domain/model"
	"telegram-broadcast-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---------------- in-memory user repository ----------------

// memUserRepo keeps users in insertion order, matching the registration
// order contract of ListAll.
type memUserRepo struct {
	mu    sync.Mutex
	users []*model.User

	errList error
	errSave error
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{} }

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errSave != nil {
		return m.errSave
	}
	for _, existing := range m.users {
		if existing.TelegramID == u.TelegramID {
			return nil
		}
	}
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memUserRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errList != nil {
		return nil, m.errList
	}
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) seed(tgIDs ...int64) {
	for _, id := range tgIDs {
		u, _ := model.NewUser("", id, "")
		u.RegisteredAt = time.Now()
		m.users = append(m.users, u)
	}
}

// ---------------- in-memory state repository ----------------

type memStateRepo struct {
	mu     sync.Mutex
	states map[int64]*repository.ConversationState

	errGet error
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: map[int64]*repository.ConversationState{}}
}

func (m *memStateRepo) SetState(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	m.states[tgID] = &cp
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return nil, m.errGet
	}
	st, ok := m.states[tgID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memStateRepo) ClearState(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, tgID)
	return nil
}

// ---------------- mock message sender ----------------

// mockSender records delivery order and fails for chat ids in failFor.
type mockSender struct {
	mu      sync.Mutex
	copied  []int64
	texts   []string
	failFor map[int64]bool

	block chan struct{} // when set, CopyMessage waits on it
}

func newMockSender() *mockSender {
	return &mockSender{failFor: map[int64]bool{}}
}

func (m *mockSender) SendText(ctx context.Context, chatID int64, text string, markup model.Markup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockSender) CopyMessage(ctx context.Context, chatID int64, ref model.MessageRef, markup model.Markup) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = append(m.copied, chatID)
	if m.failFor[chatID] {
		return errors.New("delivery refused")
	}
	return nil
}

func (m *mockSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	return nil
}

func (m *mockSender) copiedOrder() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.copied))
	copy(out, m.copied)
	return out
}

// ---------------- mock transaction manager ----------------

// mockTxManager runs the function inline with no real transaction.
type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
