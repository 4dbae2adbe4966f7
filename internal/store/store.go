package store

import (
	"context"
	"errors"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDuplicateRecord = errors.New("duplicate record")
	ErrNotFound        = errors.New("record not found")
)

// MovementParams contains the parameters for recording a balance movement.
type MovementParams struct {
	Id            string
	Account       models.Account
	Kind          string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reference     string
}

// AuditStore is the durable trail behind the in-memory ledger. Every
// committed mutation is written through; report tooling and the reconciler
// read from it. The ledger serializes writers, so backends need no locking
// of their own beyond what their engine provides.
type AuditStore interface {
	// --- Balance audit trail ---
	RecordMovement(ctx context.Context, params MovementParams) error
	MovementHistory(ctx context.Context, account models.Account, limit, offset int) ([]models.Movement, error)
	CalculatedBalance(ctx context.Context, account models.Account) (decimal.Decimal, error)
	Accounts(ctx context.Context) ([]models.Account, error)

	// --- Refund bookkeeping ---
	// RecordRefund tracks refundable deltas (positive on issue, negative
	// on claim) so outstanding entries survive a restart.
	RecordRefund(ctx context.Context, account models.Account, delta decimal.Decimal, reference string) error
	OutstandingRefunds(ctx context.Context) (map[models.Account]decimal.Decimal, error)

	// --- Messages ---
	RecordMessage(ctx context.Context, msg models.Message) error
	GetMessage(ctx context.Context, id uint64) (*models.Message, error)
	MessageHistory(ctx context.Context, account models.Account, sent bool, limit, offset int) ([]models.Message, error)
	// MessagesAfter scans records with id > afterId in id order, for
	// state recovery at startup.
	MessagesAfter(ctx context.Context, afterId uint64, limit int) ([]models.Message, error)

	// --- Lifecycle ---
	Close()
}
