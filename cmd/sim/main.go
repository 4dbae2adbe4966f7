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

// Scripted end-to-end scenario against an in-memory ledger: deposits,
// admitted and rejected sends, a refund round trip, a multisig escrow
// withdrawal and a reconciliation pass.
package main

import (
	"context"
	"errors"
	"fmt"

	"message-ledger-go/internal/common"
	"message-ledger-go/internal/config"
	"message-ledger-go/internal/content"
	"message-ledger-go/internal/events"
	"message-ledger-go/internal/ledger"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/reconciler"
	"message-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	alice = models.Account("alice")
	bob   = models.Account("bob")
)

func mustPointer(logger *zap.Logger, body string) string {
	pointer, err := content.Build([]byte(body))
	if err != nil {
		logger.Fatal("Failed to build content pointer", zap.Error(err))
	}
	return pointer
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	cfg.Ledger.MaxPerWindow = 5 // small quota so the demo hits the limit

	st := store.NewMemory()
	recorder := &events.Recorder{}
	svc, err := ledger.NewService(cfg.Ledger, ledger.Deps{
		Store:   st,
		Emitter: events.MultiEmitter{events.LogEmitter{}, recorder},
	})
	if err != nil {
		logger.Fatal("Failed to build ledger", zap.Error(err))
	}

	owner := cfg.Ledger.Owner
	if err := svc.SetAuthorizedSpender(owner, svc.LedgerAccount(), true); err != nil {
		logger.Fatal("Failed to authorize ledger spender", zap.Error(err))
	}

	common.PrintHeader("LEDGER SIMULATION", common.DefaultWidth)

	// fund both parties
	for _, account := range []models.Account{alice, bob} {
		balance, err := svc.Deposit(ctx, account, decimal.RequireFromString("0.1"))
		if err != nil {
			logger.Fatal("Deposit failed", zap.Error(err))
		}
		fmt.Printf("funded %-6s balance %s\n", account, balance.String())
	}

	// conversation
	for i := 0; i < 3; i++ {
		pointer := mustPointer(logger, fmt.Sprintf("hello bob %d", i))
		id, err := svc.SendMessage(ctx, alice, bob, pointer)
		if err != nil {
			logger.Fatal("Send failed", zap.Error(err))
		}
		fmt.Printf("message %d  alice -> bob  %s\n", id, pointer)
	}
	pointer := mustPointer(logger, "hi alice")
	id, err := svc.SendMessage(ctx, bob, alice, pointer)
	if err != nil {
		logger.Fatal("Send failed", zap.Error(err))
	}
	fmt.Printf("message %d  bob -> alice  %s\n", id, pointer)

	// push alice over the admission quota
	var rejected bool
	for i := 0; i < 5; i++ {
		_, err := svc.SendMessage(ctx, alice, bob, mustPointer(logger, fmt.Sprintf("spam %d", i)))
		if errors.Is(err, ledger.ErrRateLimitExceeded) {
			fmt.Printf("send rejected as expected: %v\n", err)
			rejected = true
			break
		}
		if err != nil {
			logger.Fatal("Unexpected send failure", zap.Error(err))
		}
	}
	if !rejected {
		logger.Fatal("Rate limit never triggered")
	}

	// conversation view
	conv, err := svc.Conversation(alice, bob, 10)
	if err != nil {
		logger.Fatal("Conversation query failed", zap.Error(err))
	}
	fmt.Printf("conversation(alice,bob): %v\n", conv)

	// refund round trip
	refund := decimal.RequireFromString("0.001")
	if err := svc.IssueRefund(ctx, owner, bob, refund); err != nil {
		logger.Fatal("Refund issue failed", zap.Error(err))
	}
	claimed, err := svc.ClaimRefund(ctx, bob)
	if err != nil {
		logger.Fatal("Refund claim failed", zap.Error(err))
	}
	fmt.Printf("bob claimed refund %s, escrow now holds %s\n", claimed.String(), svc.TotalHeld().String())

	// escrow withdrawal (threshold 1 executes on submit)
	wid, err := svc.SubmitEscrowWithdrawal(ctx, owner, owner, svc.TotalHeld(), "operator revenue")
	if err != nil {
		logger.Fatal("Escrow withdrawal failed", zap.Error(err))
	}
	fmt.Printf("escrow withdrawal %s executed, escrow now holds %s\n",
		common.TruncateId(wid), svc.TotalHeld().String())

	// audit reconciliation
	rec := reconciler.New(svc, st, cfg.Reconciler.Interval)
	divergences, err := rec.Reconcile(ctx)
	if err != nil {
		logger.Fatal("Reconciliation failed", zap.Error(err))
	}

	summary := fmt.Sprintf("SUMMARY: %d events emitted, %d balance divergences",
		len(recorder.Events()), len(divergences))
	common.PrintFooter(summary, common.DefaultWidth)
}
