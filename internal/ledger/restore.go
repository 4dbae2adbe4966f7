package ledger

import (
	"context"
	"fmt"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Restore seeds a fresh ledger from previously audited state: balances,
// the escrow total, outstanding refundables and the message log. Rate
// counters and pending multisig withdrawals are ephemeral and start empty.
// Restore must run before any other mutation.
func (s *Service) Restore(balances map[models.Account]decimal.Decimal, escrowHeld decimal.Decimal, refundables map[models.Account]decimal.Decimal, messages []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextMessageId != 1 || len(s.balances) != 0 {
		return fmt.Errorf("restore requires a fresh ledger")
	}
	if escrowHeld.IsNegative() {
		return fmt.Errorf("%w: audited escrow total %s is negative", ErrInvalidAmount, escrowHeld.String())
	}

	committed := decimal.Zero
	for account, amount := range refundables {
		if amount.IsNegative() {
			return fmt.Errorf("%w: audited refundable for %s is negative", ErrInvalidAmount, account)
		}
		committed = committed.Add(amount)
	}
	if committed.GreaterThan(escrowHeld) {
		return fmt.Errorf("%w: refundables %s exceed escrow total %s", ErrInvalidAmount, committed.String(), escrowHeld.String())
	}

	for account, balance := range balances {
		if account == models.ZeroAccount || account == models.EscrowAccount {
			continue
		}
		if balance.IsNegative() {
			return fmt.Errorf("%w: audited balance for %s is negative", ErrInvalidAmount, account)
		}
		s.balances[account] = balance
	}

	s.escrow.totalHeld = escrowHeld
	s.escrow.committed = committed
	for account, amount := range refundables {
		if amount.IsPositive() {
			s.escrow.refundable[account] = amount
		}
	}

	var maxId uint64
	for i := range messages {
		msg := messages[i]
		if msg.Id == 0 {
			return fmt.Errorf("restore: message with zero id")
		}
		if _, ok := s.messages[msg.Id]; ok {
			return fmt.Errorf("restore: duplicate message id %d", msg.Id)
		}
		s.messages[msg.Id] = &msg
		s.sentIdx[msg.Sender] = append(s.sentIdx[msg.Sender], msg.Id)
		s.recvIdx[msg.Receiver] = append(s.recvIdx[msg.Receiver], msg.Id)
		if msg.Id > maxId {
			maxId = msg.Id
		}
	}
	s.nextMessageId = maxId + 1

	zap.L().Info("ledger state restored from audit trail",
		zap.Int("accounts", len(s.balances)),
		zap.Int("messages", len(s.messages)),
		zap.String("escrow_held", escrowHeld.String()),
		zap.Uint64("next_message_id", s.nextMessageId))
	return nil
}

// RestoreFromStore rebuilds ledger state by replaying the configured audit
// store.
func (s *Service) RestoreFromStore(ctx context.Context) error {
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list audited accounts: %w", err)
	}

	balances := make(map[models.Account]decimal.Decimal, len(accounts))
	escrowHeld := decimal.Zero
	for _, account := range accounts {
		sum, err := s.store.CalculatedBalance(ctx, account)
		if err != nil {
			return fmt.Errorf("failed to calculate audited balance for %s: %w", account, err)
		}
		if account == models.EscrowAccount {
			escrowHeld = sum
			continue
		}
		balances[account] = sum
	}

	refundables, err := s.store.OutstandingRefunds(ctx)
	if err != nil {
		return fmt.Errorf("failed to load outstanding refunds: %w", err)
	}

	var messages []models.Message
	var afterId uint64
	for {
		page, err := s.store.MessagesAfter(ctx, afterId, 500)
		if err != nil {
			return fmt.Errorf("failed to scan messages after %d: %w", afterId, err)
		}
		if len(page) == 0 {
			break
		}
		messages = append(messages, page...)
		afterId = page[len(page)-1].Id
	}

	return s.Restore(balances, escrowHeld, refundables, messages)
}
