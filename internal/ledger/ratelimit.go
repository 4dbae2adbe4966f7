package ledger

import "message-ledger-go/internal/models"

// Admission control uses a fixed window per sender: up to maxPerWindow
// sends per windowDuration, counted from the first send of the window. An
// elapsed window is treated as empty on the next evaluation; counters are
// never deleted.

// RateLimitReason is the reason code returned by CanSend when a send would
// be refused.
const RateLimitReason = "rate_limit_exceeded"

// CanSend reports whether the sender is inside their admission quota. The
// check is read-only; counters are only mutated by an admitted send.
func (s *Service) CanSend(sender models.Account) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canSendLocked(sender) {
		return true, ""
	}
	return false, RateLimitReason
}

func (s *Service) canSendLocked(sender models.Account) bool {
	rc, ok := s.counters[sender]
	if !ok {
		return true
	}
	if s.now().Sub(rc.windowStart) >= s.window {
		// window elapsed; evaluate as if the count were zero
		return true
	}
	return rc.count < s.maxPerWindow
}

// recordSendLocked counts an admitted send. Called only after every other
// admission guard has passed. Lock held.
func (s *Service) recordSendLocked(sender models.Account) {
	now := s.now()
	rc, ok := s.counters[sender]
	if !ok {
		s.counters[sender] = &rateCounter{count: 1, windowStart: now}
		return
	}
	if now.Sub(rc.windowStart) >= s.window {
		rc.windowStart = now
		rc.count = 1
		return
	}
	rc.count++
}
