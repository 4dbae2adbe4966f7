package ledger

import (
	"context"
	"fmt"

	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// receiveFeeLocked books a collected message fee into escrow. Lock held.
func (s *Service) receiveFeeLocked(ctx context.Context, from models.Account, amount decimal.Decimal) {
	before := s.escrow.totalHeld
	s.escrow.totalHeld = before.Add(amount)

	s.audit(ctx, store.MovementParams{
		Id:            uuid.New().String(),
		Account:       models.EscrowAccount,
		Kind:          models.MovementFee,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  s.escrow.totalHeld,
		Reference:     "fee from " + string(from),
	})
}

// TotalHeld returns the escrow balance: all fees received minus
// withdrawals and claimed refunds.
func (s *Service) TotalHeld() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.escrow.totalHeld
}

// RefundAmount returns the amount owed back to an account pending claim.
func (s *Service) RefundAmount(account models.Account) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.escrow.refundable[account]
}

// IssueRefund earmarks escrowed funds for an account to claim. Owner-only.
// The sum of all outstanding refundables never exceeds totalHeld.
func (s *Service) IssueRefund(ctx context.Context, caller, account models.Account, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	if account == models.ZeroAccount {
		return fmt.Errorf("%w: cannot refund the zero account", ErrInvalidAccount)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: refund amount must be positive", ErrInvalidAmount)
	}

	uncommitted := s.escrow.totalHeld.Sub(s.escrow.committed)
	if amount.GreaterThan(uncommitted) {
		return fmt.Errorf("%w: uncommitted %s, requested %s", ErrInsufficientEscrow, uncommitted.String(), amount.String())
	}

	s.escrow.refundable[account] = s.escrow.refundable[account].Add(amount)
	s.escrow.committed = s.escrow.committed.Add(amount)

	s.auditRefund(ctx, account, amount, "issued by "+string(caller))
	s.emit(events.RefundIssued, map[string]string{
		"account": string(account),
		"amount":  amount.String(),
	})
	return nil
}

// ClaimRefund pays out the caller's refundable entry. The entry is zeroed
// and totalHeld reduced before the external transfer runs, so a reentrant
// claim finds nothing left; a failed transfer rolls everything back.
func (s *Service) ClaimRefund(ctx context.Context, caller models.Account) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return decimal.Zero, err
	}
	amount := s.escrow.refundable[caller]
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: account %s", ErrNoRefundAvailable, caller)
	}

	heldBefore := s.escrow.totalHeld
	delete(s.escrow.refundable, caller)
	s.escrow.committed = s.escrow.committed.Sub(amount)
	s.escrow.totalHeld = heldBefore.Sub(amount)

	movementId := uuid.New().String()
	s.audit(ctx, store.MovementParams{
		Id:            movementId,
		Account:       models.EscrowAccount,
		Kind:          models.MovementRefundClaimed,
		Amount:        amount.Neg(),
		BalanceBefore: heldBefore,
		BalanceAfter:  s.escrow.totalHeld,
		Reference:     "refund claimed by " + string(caller),
	})
	s.auditRefund(ctx, caller, amount.Neg(), "claimed")

	if err := s.beginTransfer(ctx, caller, amount); err != nil {
		s.escrow.refundable[caller] = amount
		s.escrow.committed = s.escrow.committed.Add(amount)
		s.escrow.totalHeld = heldBefore
		s.audit(ctx, store.MovementParams{
			Id:            movementId + "-reversal",
			Account:       models.EscrowAccount,
			Kind:          models.MovementFee,
			Amount:        amount,
			BalanceBefore: heldBefore.Sub(amount),
			BalanceAfter:  heldBefore,
			Reference:     "reversal of failed refund claim " + movementId,
		})
		s.auditRefund(ctx, caller, amount, "reinstated after failed claim transfer")
		return decimal.Zero, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	s.emit(events.RefundClaimed, map[string]string{
		"account": string(caller),
		"amount":  amount.String(),
	})
	return amount, nil
}
