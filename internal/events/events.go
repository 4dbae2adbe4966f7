// Package events carries the structured events every mutating ledger
// operation emits. Events are fire-and-forget observability for external
// indexers; the ledger never consumes them itself.
package events

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event names emitted by the ledger.
const (
	Deposited            = "Deposited"
	Withdrawn            = "Withdrawn"
	SpenderAuthorized    = "SpenderAuthorized"
	MessageSent          = "MessageSent"
	MessageFeeChanged    = "MessageFeeChanged"
	Paused               = "Paused"
	Unpaused             = "Unpaused"
	UserBlocked          = "UserBlocked"
	RefundIssued         = "RefundIssued"
	RefundClaimed        = "RefundClaimed"
	WithdrawalSubmitted  = "WithdrawalSubmitted"
	WithdrawalConfirmed  = "WithdrawalConfirmed"
	WithdrawalExecuted   = "WithdrawalExecuted"
	OwnershipTransferred = "OwnershipTransferred"
)

// Event is a named occurrence with flat string fields.
type Event struct {
	Name   string
	At     time.Time
	Fields map[string]string
}

// Emitter receives events. Implementations must not block; emission happens
// inside the ledger's serialization domain.
type Emitter interface {
	Emit(e Event)
}

// LogEmitter writes events to the global zap logger.
type LogEmitter struct{}

func (LogEmitter) Emit(e Event) {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys)+1)
	fields = append(fields, zap.Time("at", e.At))
	for _, k := range keys {
		fields = append(fields, zap.String(k, e.Fields[k]))
	}
	zap.L().Info("event: "+e.Name, fields...)
}

// Recorder captures events for inspection in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// MultiEmitter fans events out to several emitters.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(e Event) {
	for _, em := range m {
		em.Emit(e)
	}
}
