package ledger

import (
	"fmt"
	"strconv"

	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"
)

// SetAuthorizedSpender grants or revokes a spender's right to debit
// arbitrary balances. Owner-only.
func (s *Service) SetAuthorizedSpender(caller, spender models.Account, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return err
	}
	if caller != s.owner {
		return ErrNotOwner
	}
	if spender == models.ZeroAccount {
		return fmt.Errorf("%w: spender must not be the zero account", ErrInvalidAccount)
	}

	if authorized {
		s.authorized[spender] = true
	} else {
		delete(s.authorized, spender)
	}

	s.emit(events.SpenderAuthorized, map[string]string{
		"spender":    string(spender),
		"authorized": strconv.FormatBool(authorized),
	})
	return nil
}

// IsAuthorizedSpender reports whether the spender may debit balances.
func (s *Service) IsAuthorizedSpender(spender models.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorized[spender]
}
