package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Memory is an in-process AuditStore. It is the default backend when no
// database is configured and the fixture backend for core tests.
type Memory struct {
	mu        sync.RWMutex
	movements []models.Movement
	byAccount map[models.Account][]int
	messages  map[uint64]models.Message
	ordered   []uint64
	sent      map[models.Account][]uint64
	received  map[models.Account][]uint64
	refunds   map[models.Account]decimal.Decimal
	ids       map[string]struct{}
}

// Compile-time check: *Memory must satisfy AuditStore.
var _ AuditStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		byAccount: make(map[models.Account][]int),
		messages:  make(map[uint64]models.Message),
		sent:      make(map[models.Account][]uint64),
		received:  make(map[models.Account][]uint64),
		refunds:   make(map[models.Account]decimal.Decimal),
		ids:       make(map[string]struct{}),
	}
}

func (m *Memory) RecordMovement(_ context.Context, params MovementParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[params.Id]; ok {
		return fmt.Errorf("%w: movement %s", ErrDuplicateRecord, params.Id)
	}
	m.ids[params.Id] = struct{}{}

	mv := models.Movement{
		Id:            params.Id,
		Account:       params.Account,
		Kind:          params.Kind,
		Amount:        params.Amount,
		BalanceBefore: params.BalanceBefore,
		BalanceAfter:  params.BalanceAfter,
		Reference:     params.Reference,
	}
	m.byAccount[params.Account] = append(m.byAccount[params.Account], len(m.movements))
	m.movements = append(m.movements, mv)
	return nil
}

func (m *Memory) MovementHistory(_ context.Context, account models.Account, limit, offset int) ([]models.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idxs := m.byAccount[account]
	// newest first
	var out []models.Movement
	for i := len(idxs) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.movements[idxs[i]])
	}
	return out, nil
}

func (m *Memory) CalculatedBalance(_ context.Context, account models.Account) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := decimal.Zero
	for _, i := range m.byAccount[account] {
		sum = sum.Add(m.movements[i].Amount)
	}
	return sum, nil
}

func (m *Memory) Accounts(_ context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]models.Account, 0, len(m.byAccount))
	for a := range m.byAccount {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	return accounts, nil
}

func (m *Memory) RecordMessage(_ context.Context, msg models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.messages[msg.Id]; ok {
		return fmt.Errorf("%w: message %d", ErrDuplicateRecord, msg.Id)
	}
	m.messages[msg.Id] = msg
	m.ordered = append(m.ordered, msg.Id)
	m.sent[msg.Sender] = append(m.sent[msg.Sender], msg.Id)
	m.received[msg.Receiver] = append(m.received[msg.Receiver], msg.Id)
	return nil
}

func (m *Memory) RecordRefund(_ context.Context, account models.Account, delta decimal.Decimal, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.refunds[account].Add(delta)
	if next.IsZero() {
		delete(m.refunds, account)
	} else {
		m.refunds[account] = next
	}
	return nil
}

func (m *Memory) OutstandingRefunds(_ context.Context) (map[models.Account]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[models.Account]decimal.Decimal, len(m.refunds))
	for a, d := range m.refunds {
		out[a] = d
	}
	return out, nil
}

func (m *Memory) MessagesAfter(_ context.Context, afterId uint64, limit int) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Message
	for _, id := range m.ordered {
		if id <= afterId {
			continue
		}
		out = append(out, m.messages[id])
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) GetMessage(_ context.Context, id uint64) (*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	return &msg, nil
}

func (m *Memory) MessageHistory(_ context.Context, account models.Account, sent bool, limit, offset int) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index := m.received[account]
	if sent {
		index = m.sent[account]
	}
	var out []models.Message
	for i := len(index) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.messages[index[i]])
	}
	return out, nil
}

func (m *Memory) Close() {}
