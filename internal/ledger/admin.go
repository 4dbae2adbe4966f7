package ledger

import (
	"fmt"
	"strconv"

	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pause refuses all sends, withdrawals and third-party spends until
// Unpause. Deposits stay allowed so users can keep funding their accounts.
func (s *Service) Pause(caller models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	s.paused = true
	s.emit(events.Paused, map[string]string{"by": string(caller)})
	zap.L().Warn("ledger paused", zap.String("by", string(caller)))
	return nil
}

// Unpause clears the global pause flag.
func (s *Service) Unpause(caller models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	s.paused = false
	s.emit(events.Unpaused, map[string]string{"by": string(caller)})
	return nil
}

// Paused reports the global pause flag.
func (s *Service) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetUserBlocked blocks or unblocks an account from sending messages.
// Blocked accounts can still withdraw their own balance.
func (s *Service) SetUserBlocked(caller, account models.Account, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	if account == models.ZeroAccount {
		return fmt.Errorf("%w: cannot block the zero account", ErrInvalidAccount)
	}

	if blocked {
		s.blocked[account] = true
	} else {
		delete(s.blocked, account)
	}
	s.emit(events.UserBlocked, map[string]string{
		"account": string(account),
		"blocked": strconv.FormatBool(blocked),
	})
	return nil
}

// IsBlocked reports whether the account is on the block list.
func (s *Service) IsBlocked(account models.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked[account]
}

// SetMessageFee changes the per-message fee. Takes effect on the next send.
func (s *Service) SetMessageFee(caller models.Account, fee decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	if fee.IsNegative() {
		return fmt.Errorf("%w: message fee cannot be negative", ErrInvalidAmount)
	}

	old := s.fee
	s.fee = fee
	s.emit(events.MessageFeeChanged, map[string]string{
		"old_fee": old.String(),
		"new_fee": fee.String(),
	})
	return nil
}

// MessageFee returns the current per-message fee.
func (s *Service) MessageFee() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fee
}

// TransferOwnership hands administrative control to a new owner.
func (s *Service) TransferOwnership(caller, newOwner models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	if newOwner == models.ZeroAccount {
		return fmt.Errorf("%w: new owner must not be the zero account", ErrInvalidAccount)
	}

	old := s.owner
	s.owner = newOwner
	s.emit(events.OwnershipTransferred, map[string]string{
		"old_owner": string(old),
		"new_owner": string(newOwner),
	})
	return nil
}

// Owner returns the current administrator.
func (s *Service) Owner() models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}
