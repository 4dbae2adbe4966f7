package database

import (
	"context"
	"database/sql"
	"fmt"

	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordMovement appends one balance movement to the audit trail.
func (s *Service) RecordMovement(ctx context.Context, params store.MovementParams) error {
	var existing string
	err := s.db.QueryRowContext(ctx, queryCheckDuplicateMovement, params.Id).Scan(&existing)
	if err == nil {
		zap.L().Warn("Duplicate movement id detected, skipping",
			zap.String("movement_id", params.Id))
		return fmt.Errorf("%w: movement %s", store.ErrDuplicateRecord, params.Id)
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate movement: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryInsertMovement,
		params.Id, string(params.Account), params.Kind,
		params.Amount.String(), params.BalanceBefore.String(), params.BalanceAfter.String(),
		params.Reference)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	zap.L().Debug("Movement recorded",
		zap.String("movement_id", params.Id),
		zap.String("account", string(params.Account)),
		zap.String("kind", params.Kind),
		zap.String("amount", params.Amount.String()))
	return nil
}

// MovementHistory returns the account's movements, newest first.
func (s *Service) MovementHistory(ctx context.Context, account models.Account, limit, offset int) ([]models.Movement, error) {
	rows, err := s.db.QueryContext(ctx, queryMovementHistory, string(account), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get movement history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var movements []models.Movement
	for rows.Next() {
		var m models.Movement
		var account, amountStr, beforeStr, afterStr string
		var reference sql.NullString
		err := rows.Scan(&m.Id, &account, &m.Kind, &amountStr, &beforeStr, &afterStr, &reference, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.Account = models.Account(account)
		m.Reference = reference.String

		if m.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		if m.BalanceBefore, err = decimal.NewFromString(beforeStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance before '%s': %w", beforeStr, err)
		}
		if m.BalanceAfter, err = decimal.NewFromString(afterStr); err != nil {
			return nil, fmt.Errorf("failed to parse balance after '%s': %w", afterStr, err)
		}

		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return movements, nil
}

// CalculatedBalance sums the account's movement amounts. Amounts are
// stored as decimal strings and summed exactly.
func (s *Service) CalculatedBalance(ctx context.Context, account models.Account) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryMovementAmounts, string(account))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get movement amounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	sum := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		sum = sum.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amount rows: %w", err)
	}
	return sum, nil
}

// Accounts lists every account that appears in the audit trail.
func (s *Service) Accounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, models.Account(a))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}
