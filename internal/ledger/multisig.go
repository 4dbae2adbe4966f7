package ledger

import (
	"context"
	"fmt"
	"strconv"

	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Escrow withdrawals run through a submit/confirm state machine. A
// submitted withdrawal starts with its submitter's confirmation and
// executes as soon as confirmations reach the configured threshold; with a
// threshold of one it executes on submit. Executed is terminal.

// SubmitEscrowWithdrawal proposes moving escrowed funds out. Signer-only.
func (s *Service) SubmitEscrowWithdrawal(ctx context.Context, caller, to models.Account, amount decimal.Decimal, reason string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return "", err
	}
	if !s.signers[caller] {
		return "", fmt.Errorf("%w: %s", ErrNotSigner, caller)
	}
	if to == models.ZeroAccount {
		return "", fmt.Errorf("%w: destination must not be the zero account", ErrInvalidAccount)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidAmount)
	}
	if amount.GreaterThan(s.escrow.totalHeld.Sub(s.escrow.committed)) {
		return "", fmt.Errorf("%w: held %s, committed to refunds %s, requested %s",
			ErrInsufficientEscrow, s.escrow.totalHeld.String(), s.escrow.committed.String(), amount.String())
	}

	s.submitNo++
	id := uuid.New().String()
	pw := &pendingWithdrawal{
		id:          id,
		to:          to,
		amount:      amount,
		reason:      reason,
		submittedBy: caller,
		submittedAt: s.now(),
		confirmed:   map[models.Account]bool{caller: true},
		order:       []models.Account{caller},
	}
	s.pending[id] = pw

	s.emit(events.WithdrawalSubmitted, map[string]string{
		"withdrawal_id": id,
		"to":            string(to),
		"amount":        amount.String(),
		"reason":        reason,
		"submitted_by":  string(caller),
	})

	if len(pw.confirmed) >= s.quorum {
		if err := s.executeWithdrawalLocked(ctx, pw); err != nil {
			return "", err
		}
	}
	return id, nil
}

// ConfirmEscrowWithdrawal adds a signer confirmation; the withdrawal
// executes when the threshold is met.
func (s *Service) ConfirmEscrowWithdrawal(ctx context.Context, caller models.Account, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if !s.signers[caller] {
		return fmt.Errorf("%w: %s", ErrNotSigner, caller)
	}
	pw, ok := s.pending[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWithdrawal, id)
	}
	if pw.executed {
		return fmt.Errorf("%w: %s", ErrAlreadyExecuted, id)
	}
	if pw.confirmed[caller] {
		return fmt.Errorf("%w: %s by %s", ErrAlreadyConfirmed, id, caller)
	}

	pw.confirmed[caller] = true
	pw.order = append(pw.order, caller)

	s.emit(events.WithdrawalConfirmed, map[string]string{
		"withdrawal_id": id,
		"confirmed_by":  string(caller),
		"confirmations": strconv.Itoa(len(pw.confirmed)),
	})

	if len(pw.confirmed) >= s.quorum {
		return s.executeWithdrawalLocked(ctx, pw)
	}
	return nil
}

// executeWithdrawalLocked applies the escrow debit, then performs the
// external transfer. Transfer failure unwinds both the debit and the
// executed flag, leaving the withdrawal pending with its confirmations
// intact. Lock held.
func (s *Service) executeWithdrawalLocked(ctx context.Context, pw *pendingWithdrawal) error {
	if pw.executed {
		return fmt.Errorf("%w: %s", ErrAlreadyExecuted, pw.id)
	}
	uncommitted := s.escrow.totalHeld.Sub(s.escrow.committed)
	if pw.amount.GreaterThan(uncommitted) {
		return fmt.Errorf("%w: uncommitted %s, requested %s", ErrInsufficientEscrow, uncommitted.String(), pw.amount.String())
	}

	heldBefore := s.escrow.totalHeld
	s.escrow.totalHeld = heldBefore.Sub(pw.amount)
	pw.executed = true

	s.audit(ctx, store.MovementParams{
		Id:            pw.id + "-executed",
		Account:       models.EscrowAccount,
		Kind:          models.MovementEscrowWithdrawal,
		Amount:        pw.amount.Neg(),
		BalanceBefore: heldBefore,
		BalanceAfter:  s.escrow.totalHeld,
		Reference:     pw.reason,
	})

	if err := s.beginTransfer(ctx, pw.to, pw.amount); err != nil {
		pw.executed = false
		s.escrow.totalHeld = heldBefore
		s.audit(ctx, store.MovementParams{
			Id:            pw.id + "-execute-reversal",
			Account:       models.EscrowAccount,
			Kind:          models.MovementFee,
			Amount:        pw.amount,
			BalanceBefore: heldBefore.Sub(pw.amount),
			BalanceAfter:  heldBefore,
			Reference:     "reversal of failed escrow withdrawal " + pw.id,
		})
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	s.emit(events.WithdrawalExecuted, map[string]string{
		"withdrawal_id": pw.id,
		"to":            string(pw.to),
		"amount":        pw.amount.String(),
		"reason":        pw.reason,
	})
	return nil
}

// PendingWithdrawal returns a snapshot of a submitted withdrawal.
func (s *Service) PendingWithdrawal(id string) (models.PendingWithdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pw, ok := s.pending[id]
	if !ok {
		return models.PendingWithdrawal{}, fmt.Errorf("%w: %s", ErrUnknownWithdrawal, id)
	}
	confirmed := make([]models.Account, len(pw.order))
	copy(confirmed, pw.order)
	return models.PendingWithdrawal{
		Id:          pw.id,
		To:          pw.to,
		Amount:      pw.amount,
		Reason:      pw.reason,
		SubmittedBy: pw.submittedBy,
		SubmittedAt: pw.submittedAt,
		Confirmed:   confirmed,
		Executed:    pw.executed,
	}, nil
}
