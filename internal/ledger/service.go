// Package ledger implements the accounting and message-ledger state machine:
// prepaid balances, spender authorization, admission control, the append-only
// message log and the fee escrow. All mutating operations execute under a
// single mutual-exclusion domain; concurrent callers observe the complete
// effect of one operation before the next begins.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"message-ledger-go/internal/content"
	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Transferrer moves native value out of the ledger boundary. A transfer may
// fail; the calling operation then rolls back completely. Recipients may be
// programmable and call back into the ledger before Transfer returns; such
// nested mutating calls are rejected with ErrReentrantCall.
type Transferrer interface {
	Transfer(ctx context.Context, to models.Account, amount decimal.Decimal) error
}

// NoopTransferrer acknowledges outbound transfers without moving value.
// Used when the ledger runs without a native value environment.
type NoopTransferrer struct{}

func (NoopTransferrer) Transfer(context.Context, models.Account, decimal.Decimal) error {
	return nil
}

// Deps are the collaborators a Service needs. Nil fields get defaults
// (in-memory store, zap emitter, no-op transfers, wall clock).
type Deps struct {
	Store    store.AuditStore
	Emitter  events.Emitter
	Transfer Transferrer
	Now      func() time.Time
}

type rateCounter struct {
	count       int
	windowStart time.Time
}

type escrowState struct {
	totalHeld  decimal.Decimal
	committed  decimal.Decimal // sum of outstanding refundable entries
	refundable map[models.Account]decimal.Decimal
}

type pendingWithdrawal struct {
	id          string
	to          models.Account
	amount      decimal.Decimal
	reason      string
	submittedBy models.Account
	submittedAt time.Time
	confirmed   map[models.Account]bool
	order       []models.Account
	executed    bool
}

// Service is the single-writer ledger state machine.
type Service struct {
	mu sync.Mutex

	// transferring is set while control is outside the ledger boundary in
	// an external value transfer. Mutating entry points reject nested
	// invocation while it is held.
	transferring bool

	owner         models.Account
	ledgerAccount models.Account
	paused        bool
	blocked       map[models.Account]bool
	fee           decimal.Decimal
	minDeposit    decimal.Decimal

	maxPointerLen int
	validateCID   bool

	balances   map[models.Account]decimal.Decimal
	authorized map[models.Account]bool

	window       time.Duration
	maxPerWindow int
	counters     map[models.Account]*rateCounter

	nextMessageId uint64
	messages      map[uint64]*models.Message
	sentIdx       map[models.Account][]uint64
	recvIdx       map[models.Account][]uint64

	escrow   escrowState
	signers  map[models.Account]bool
	quorum   int
	pending  map[string]*pendingWithdrawal
	submitNo uint64

	now      func() time.Time
	transfer Transferrer
	emitter  events.Emitter
	store    store.AuditStore
}

// NewService validates the policy and builds an empty ledger.
func NewService(cfg models.LedgerConfig, deps Deps) (*Service, error) {
	if cfg.Owner == models.ZeroAccount {
		return nil, fmt.Errorf("%w: owner must be set", ErrInvalidAccount)
	}
	if cfg.MessageFee.IsNegative() {
		return nil, fmt.Errorf("%w: message fee cannot be negative", ErrInvalidAmount)
	}
	if cfg.MinimumDeposit.IsNegative() {
		return nil, fmt.Errorf("%w: minimum deposit cannot be negative", ErrInvalidAmount)
	}

	ledgerAccount := cfg.LedgerAccount
	if ledgerAccount == models.ZeroAccount {
		ledgerAccount = "message-ledger"
	}
	maxPointerLen := cfg.MaxPointerLen
	if maxPointerLen <= 0 {
		maxPointerLen = content.DefaultMaxPointerLen
	}
	window := cfg.WindowDuration
	if window <= 0 {
		window = time.Hour
	}
	maxPerWindow := cfg.MaxPerWindow
	if maxPerWindow <= 0 {
		maxPerWindow = 100
	}

	signers := make(map[models.Account]bool)
	for _, a := range cfg.EscrowSigners {
		if a == models.ZeroAccount {
			return nil, fmt.Errorf("%w: escrow signer must not be the zero account", ErrInvalidAccount)
		}
		signers[a] = true
	}
	if len(signers) == 0 {
		signers[cfg.Owner] = true
	}
	quorum := cfg.EscrowThreshold
	if quorum <= 0 {
		quorum = 1
	}
	if quorum > len(signers) {
		return nil, fmt.Errorf("%w: escrow threshold %d exceeds signer count %d", ErrInvalidAmount, quorum, len(signers))
	}

	if deps.Store == nil {
		deps.Store = store.NewMemory()
	}
	if deps.Emitter == nil {
		deps.Emitter = events.LogEmitter{}
	}
	if deps.Transfer == nil {
		deps.Transfer = NoopTransferrer{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		owner:         cfg.Owner,
		ledgerAccount: ledgerAccount,
		blocked:       make(map[models.Account]bool),
		fee:           cfg.MessageFee,
		minDeposit:    cfg.MinimumDeposit,
		maxPointerLen: maxPointerLen,
		validateCID:   cfg.ValidatePointerCID,
		balances:      make(map[models.Account]decimal.Decimal),
		authorized:    make(map[models.Account]bool),
		window:        window,
		maxPerWindow:  maxPerWindow,
		counters:      make(map[models.Account]*rateCounter),
		nextMessageId: 1,
		messages:      make(map[uint64]*models.Message),
		sentIdx:       make(map[models.Account][]uint64),
		recvIdx:       make(map[models.Account][]uint64),
		escrow: escrowState{
			totalHeld:  decimal.Zero,
			committed:  decimal.Zero,
			refundable: make(map[models.Account]decimal.Decimal),
		},
		signers:  signers,
		quorum:   quorum,
		pending:  make(map[string]*pendingWithdrawal),
		now:      deps.Now,
		transfer: deps.Transfer,
		emitter:  deps.Emitter,
		store:    deps.Store,
	}, nil
}

// LedgerAccount returns the identity fee debits are authorized under.
func (s *Service) LedgerAccount() models.Account {
	return s.ledgerAccount
}

func (s *Service) emit(name string, fields map[string]string) {
	s.emitter.Emit(events.Event{Name: name, At: s.now(), Fields: fields})
}

// audit writes a movement to the durable trail. The in-memory ledger is
// authoritative; a failed audit write is logged and reported by the
// reconciler, it does not fail the committed operation.
func (s *Service) audit(ctx context.Context, params store.MovementParams) {
	if err := s.store.RecordMovement(ctx, params); err != nil {
		zap.L().Error("audit write failed",
			zap.String("movement_id", params.Id),
			zap.String("kind", params.Kind),
			zap.String("account", string(params.Account)),
			zap.Error(err))
	}
}

// auditRefund writes a refundable delta to the durable trail, best effort
// like audit.
func (s *Service) auditRefund(ctx context.Context, account models.Account, delta decimal.Decimal, reference string) {
	if err := s.store.RecordRefund(ctx, account, delta, reference); err != nil {
		zap.L().Error("refund audit write failed",
			zap.String("account", string(account)),
			zap.String("delta", delta.String()),
			zap.Error(err))
	}
}

// beginTransfer releases the lock for the duration of an external value
// transfer while keeping the reentrancy guard held. Callers must hold the
// lock and must have applied all state effects before calling.
func (s *Service) beginTransfer(ctx context.Context, to models.Account, amount decimal.Decimal) error {
	s.transferring = true
	s.mu.Unlock()
	err := s.transfer.Transfer(ctx, to, amount)
	s.mu.Lock()
	s.transferring = false
	return err
}

// guardEntry is the common entry check for mutating operations.
func (s *Service) guardEntry() error {
	if s.transferring {
		return ErrReentrantCall
	}
	return nil
}
