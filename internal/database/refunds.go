package database

import (
	"context"
	"database/sql"
	"fmt"

	"message-ledger-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordRefund appends one refundable delta for an account.
func (s *Service) RecordRefund(ctx context.Context, account models.Account, delta decimal.Decimal, reference string) error {
	_, err := s.db.ExecContext(ctx, queryInsertRefund,
		uuid.New().String(), string(account), delta.String(), reference)
	if err != nil {
		return fmt.Errorf("failed to insert refund delta: %w", err)
	}
	return nil
}

// OutstandingRefunds sums refundable deltas per account, dropping entries
// that net to zero.
func (s *Service) OutstandingRefunds(ctx context.Context) (map[models.Account]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryRefundDeltas)
	if err != nil {
		return nil, fmt.Errorf("failed to get refund deltas: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	out := make(map[models.Account]decimal.Decimal)
	for rows.Next() {
		var account, deltaStr string
		if err := rows.Scan(&account, &deltaStr); err != nil {
			return nil, fmt.Errorf("failed to scan refund delta: %w", err)
		}
		delta, err := decimal.NewFromString(deltaStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse refund delta '%s': %w", deltaStr, err)
		}
		out[models.Account(account)] = out[models.Account(account)].Add(delta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refund rows: %w", err)
	}

	for a, d := range out {
		if d.IsZero() {
			delete(out, a)
		}
	}
	return out, nil
}
