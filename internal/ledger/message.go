package ledger

import (
	"context"
	"fmt"
	"strconv"

	"message-ledger-go/internal/content"
	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"

	"go.uber.org/zap"
)

// MaxPageLimit bounds the page size of all paginated queries.
const MaxPageLimit = 100

// SendMessage runs the full admission pipeline and appends a message
// record. Admission checks (pause/block/shape) run before economic checks
// (rate/balance) before any state mutation, so a failed send never
// partially mutates counters or balances.
func (s *Service) SendMessage(ctx context.Context, sender, receiver models.Account, contentPointer string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardEntry(); err != nil {
		return 0, err
	}

	// 1. shape guards
	if s.paused {
		return 0, ErrPaused
	}
	if s.blocked[sender] {
		return 0, fmt.Errorf("%w: %s", ErrUserBlocked, sender)
	}
	if sender == models.ZeroAccount {
		return 0, fmt.Errorf("%w: sender must not be the zero account", ErrInvalidAccount)
	}
	if receiver == models.ZeroAccount {
		return 0, fmt.Errorf("%w: receiver must not be the zero account", ErrInvalidReceiver)
	}
	if receiver == sender {
		return 0, fmt.Errorf("%w: receiver equals sender", ErrInvalidReceiver)
	}
	if err := content.ValidateLength(contentPointer, s.maxPointerLen); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidContentPointer, err)
	}
	if s.validateCID {
		if err := content.ValidateCID(contentPointer); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidContentPointer, err)
		}
	}

	// 2. admission quota
	if !s.canSendLocked(sender) {
		return 0, fmt.Errorf("%w: sender %s", ErrRateLimitExceeded, sender)
	}

	// 3. affordability
	if s.fee.GreaterThan(s.balances[sender]) {
		return 0, fmt.Errorf("%w: balance %s, message fee %s", ErrInsufficientBalance, s.balances[sender].String(), s.fee.String())
	}

	// 4. collect the fee and forward it to escrow
	fee := s.fee
	if fee.IsPositive() {
		ref := "message fee, ledger " + string(s.ledgerAccount)
		if err := s.spendLocked(ctx, s.ledgerAccount, sender, fee, ref); err != nil {
			return 0, err
		}
		s.receiveFeeLocked(ctx, sender, fee)
	}

	// 5. count the admitted send
	s.recordSendLocked(sender)

	// 6. append the record
	id := s.nextMessageId
	s.nextMessageId++
	msg := &models.Message{
		Id:             id,
		Sender:         sender,
		Receiver:       receiver,
		ContentPointer: contentPointer,
		FeePaid:        fee,
		CreatedAt:      s.now(),
	}
	s.messages[id] = msg
	s.sentIdx[sender] = append(s.sentIdx[sender], id)
	s.recvIdx[receiver] = append(s.recvIdx[receiver], id)

	if err := s.store.RecordMessage(ctx, *msg); err != nil {
		zap.L().Error("audit write failed for message",
			zap.Uint64("message_id", id),
			zap.Error(err))
	}

	s.emit(events.MessageSent, map[string]string{
		"message_id":      strconv.FormatUint(id, 10),
		"sender":          string(sender),
		"receiver":        string(receiver),
		"content_pointer": contentPointer,
		"timestamp":       msg.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		"fee_paid":        fee.String(),
	})
	return id, nil
}

// Message returns the record for a message id.
func (s *Service) Message(id uint64) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return models.Message{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return *msg, nil
}

// MessagesByUser returns the user's sent or received message ids in
// insertion order.
func (s *Service) MessagesByUser(user models.Account, sent bool) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.recvIdx[user]
	if sent {
		index = s.sentIdx[user]
	}
	out := make([]uint64, len(index))
	copy(out, index)
	return out
}

// MessagesPaginated returns one page of the user's sent or received ids
// plus whether more pages follow. An offset beyond the index yields an
// empty page.
func (s *Service) MessagesPaginated(user models.Account, offset, limit int, sent bool) ([]uint64, bool, error) {
	if limit < 1 || limit > MaxPageLimit {
		return nil, false, fmt.Errorf("%w: limit %d outside 1..%d", ErrInvalidLimit, limit, MaxPageLimit)
	}
	if offset < 0 {
		return nil, false, fmt.Errorf("%w: offset %d is negative", ErrInvalidLimit, offset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.recvIdx[user]
	if sent {
		index = s.sentIdx[user]
	}
	if offset >= len(index) {
		return []uint64{}, false, nil
	}
	end := offset + limit
	if end > len(index) {
		end = len(index)
	}
	out := make([]uint64, end-offset)
	copy(out, index[offset:end])
	return out, end < len(index), nil
}

// Conversation merges the messages A sent to B and B sent to A, most
// recent first, truncated to limit. Symmetric in its arguments.
func (s *Service) Conversation(a, b models.Account, limit int) ([]uint64, error) {
	if limit < 1 || limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit %d outside 1..%d", ErrInvalidLimit, limit, MaxPageLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Ids are assigned in send order, so recency order is id order.
	aIdx, bIdx := s.sentIdx[a], s.sentIdx[b]
	i, j := len(aIdx)-1, len(bIdx)-1
	out := make([]uint64, 0, limit)
	for len(out) < limit && (i >= 0 || j >= 0) {
		for i >= 0 && s.messages[aIdx[i]].Receiver != b {
			i--
		}
		for j >= 0 && s.messages[bIdx[j]].Receiver != a {
			j--
		}
		switch {
		case i >= 0 && (j < 0 || aIdx[i] > bIdx[j]):
			out = append(out, aIdx[i])
			i--
		case j >= 0:
			out = append(out, bIdx[j])
			j--
		default:
			return out, nil
		}
	}
	return out, nil
}
