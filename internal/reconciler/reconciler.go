/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package reconciler periodically replays the audit trail and compares it
// against the live ledger. The in-memory ledger is authoritative; a
// divergence means audit writes were lost and is reported, not repaired.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"message-ledger-go/internal/ledger"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"go.uber.org/zap"
)

// Divergence describes one account whose audited sum does not match the
// live balance.
type Divergence struct {
	Account models.Account
	Live    string
	Audited string
}

type Reconciler struct {
	ledger   *ledger.Service
	store    store.AuditStore
	interval time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
}

func New(svc *ledger.Service, st store.AuditStore, interval time.Duration) *Reconciler {
	return &Reconciler{
		ledger:   svc,
		store:    st,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the periodic reconciliation loop.
func (r *Reconciler) Start(ctx context.Context) {
	zap.L().Info("Starting audit reconciler", zap.Duration("interval", r.interval))
	go r.loop(ctx)
}

// Stop gracefully stops the reconciliation loop.
func (r *Reconciler) Stop() {
	zap.L().Info("Stopping audit reconciler")
	close(r.stopChan)
	<-r.doneChan
	zap.L().Info("Audit reconciler stopped")
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	divergences, err := r.Reconcile(ctx)
	if err != nil {
		zap.L().Error("Reconciliation run failed", zap.Error(err))
		return
	}
	if len(divergences) == 0 {
		zap.L().Info("Reconciliation successful, audit trail matches ledger")
	}
}

// Reconcile compares every live account balance against the sum of its
// audited movements and returns the divergences found.
func (r *Reconciler) Reconcile(ctx context.Context) ([]Divergence, error) {
	snapshot := r.ledger.BalanceSnapshot()
	// escrow is audited like any account; its sum must equal totalHeld
	snapshot[models.EscrowAccount] = r.ledger.TotalHeld()

	var divergences []Divergence
	for account, live := range snapshot {
		audited, err := r.store.CalculatedBalance(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate audited balance for %s: %w", account, err)
		}
		if !live.Equal(audited) {
			zap.L().Error("Balance divergence detected",
				zap.String("account", string(account)),
				zap.String("live_balance", live.String()),
				zap.String("audited_balance", audited.String()),
				zap.String("difference", live.Sub(audited).String()))
			divergences = append(divergences, Divergence{
				Account: account,
				Live:    live.String(),
				Audited: audited.String(),
			})
		}
	}
	return divergences, nil
}
