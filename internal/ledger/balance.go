package ledger

import (
	"context"
	"fmt"

	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deposit credits a prepaid balance. The account is created implicitly on
// first deposit. Deposits remain allowed while the ledger is paused.
func (s *Service) Deposit(ctx context.Context, account models.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return decimal.Zero, err
	}
	if account == models.ZeroAccount {
		return decimal.Zero, fmt.Errorf("%w: cannot deposit to the zero account", ErrInvalidAccount)
	}
	if amount.LessThan(s.minDeposit) {
		return decimal.Zero, fmt.Errorf("%w: %s is below the %s floor", ErrBelowMinimumDeposit, amount.String(), s.minDeposit.String())
	}

	before := s.balances[account]
	after := before.Add(amount)
	s.balances[account] = after

	s.audit(ctx, store.MovementParams{
		Id:            uuid.New().String(),
		Account:       account,
		Kind:          models.MovementDeposit,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	})
	s.emit(events.Deposited, map[string]string{
		"account":     string(account),
		"amount":      amount.String(),
		"new_balance": after.String(),
	})

	zap.L().Info("deposit credited",
		zap.String("account", string(account)),
		zap.String("amount", amount.String()),
		zap.String("new_balance", after.String()))
	return after, nil
}

// Withdraw debits the caller's own balance and transfers the amount out.
// The balance is decremented before the external transfer runs; a transfer
// failure rolls the whole operation back. Blocked accounts may still
// withdraw, paused ledgers may not.
func (s *Service) Withdraw(ctx context.Context, caller models.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return decimal.Zero, err
	}
	if s.paused {
		return decimal.Zero, ErrPaused
	}
	if caller == models.ZeroAccount {
		return decimal.Zero, fmt.Errorf("%w: caller must not be the zero account", ErrInvalidAccount)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidAmount)
	}

	before := s.balances[caller]
	if amount.GreaterThan(before) {
		return decimal.Zero, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, before.String(), amount.String())
	}

	// Effects before transfer: debit first so a reentrant callback sees
	// the updated balance.
	after := before.Sub(amount)
	s.balances[caller] = after

	movementId := uuid.New().String()
	s.audit(ctx, store.MovementParams{
		Id:            movementId,
		Account:       caller,
		Kind:          models.MovementWithdrawal,
		Amount:        amount.Neg(),
		BalanceBefore: before,
		BalanceAfter:  after,
	})

	if err := s.beginTransfer(ctx, caller, amount); err != nil {
		s.balances[caller] = before
		s.audit(ctx, store.MovementParams{
			Id:            movementId + "-reversal",
			Account:       caller,
			Kind:          models.MovementWithdrawalReversal,
			Amount:        amount,
			BalanceBefore: after,
			BalanceAfter:  before,
			Reference:     "reversal of failed withdrawal " + movementId,
		})
		zap.L().Warn("withdrawal transfer failed, balance restored",
			zap.String("account", string(caller)),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	s.emit(events.Withdrawn, map[string]string{
		"account":     string(caller),
		"amount":      amount.String(),
		"new_balance": after.String(),
	})
	return after, nil
}

// Spend debits an arbitrary payer's balance on behalf of an authorized
// third-party caller. Authorization is global per spender: once granted by
// the owner the spender may debit any account with sufficient funds.
func (s *Service) Spend(ctx context.Context, caller, payer models.Account, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if s.paused {
		return ErrPaused
	}
	return s.spendLocked(ctx, caller, payer, amount, "")
}

// spendLocked is the debit core shared by Spend and SendMessage. Lock held.
func (s *Service) spendLocked(ctx context.Context, caller, payer models.Account, amount decimal.Decimal, reference string) error {
	if !s.authorized[caller] {
		return fmt.Errorf("%w: %s", ErrUnauthorizedSpender, caller)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: spend amount must be positive", ErrInvalidAmount)
	}

	before := s.balances[payer]
	if amount.GreaterThan(before) {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, before.String(), amount.String())
	}
	after := before.Sub(amount)
	s.balances[payer] = after

	s.audit(ctx, store.MovementParams{
		Id:            uuid.New().String(),
		Account:       payer,
		Kind:          models.MovementSpend,
		Amount:        amount.Neg(),
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     reference,
	})
	return nil
}

// Balance returns the account's prepaid balance. Unknown accounts hold zero.
func (s *Service) Balance(account models.Account) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[account]
}

// BalanceSnapshot returns every known account with its current balance.
// Used by the reconciler to compare live state against the audit trail.
func (s *Service) BalanceSnapshot() map[models.Account]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[models.Account]decimal.Decimal, len(s.balances))
	for a, b := range s.balances {
		out[a] = b
	}
	return out
}

// CanAfford reports whether the account's balance covers amount.
func (s *Service) CanAfford(account models.Account, amount decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !amount.GreaterThan(s.balances[account])
}
