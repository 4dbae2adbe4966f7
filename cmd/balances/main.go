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

package main

import (
	"context"
	"flag"
	"fmt"

	"message-ledger-go/internal/common"
	"message-ledger-go/internal/config"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalAccounts int
	withFunds     int
}

func printAccount(ctx context.Context, st store.AuditStore, account models.Account, stats *balanceStats, logger *zap.Logger) {
	stats.totalAccounts++

	balance, err := st.CalculatedBalance(ctx, account)
	if err != nil {
		logger.Error("Failed to calculate balance",
			zap.String("account", string(account)),
			zap.Error(err))
		return
	}
	if !balance.IsZero() {
		stats.withFunds++
	}

	movements, err := st.MovementHistory(ctx, account, 1, 0)
	if err != nil {
		logger.Error("Failed to get movement history",
			zap.String("account", string(account)),
			zap.Error(err))
		return
	}

	lastMovement := "none"
	if len(movements) > 0 {
		lastMovement = fmt.Sprintf("%s (%s)", common.TruncateId(movements[0].Id), movements[0].Kind)
	}

	fmt.Printf("┌─ Account: %s\n", account)
	fmt.Printf("│  Balance: %s\n", balance.String())
	fmt.Printf("└  Last movement: %s\n", lastMovement)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Filter by specific account (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	st, err := common.InitializeStoreOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	var accounts []models.Account
	if *accountFlag != "" {
		accounts = []models.Account{models.Account(*accountFlag)}
	} else {
		accounts, err = st.Accounts(ctx)
		if err != nil {
			logger.Fatal("Failed to list accounts", zap.Error(err))
		}
	}

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	stats := balanceStats{}
	for _, account := range accounts {
		printAccount(ctx, st, account, &stats, logger)
	}

	summary := fmt.Sprintf("SUMMARY: %d accounts audited, %d with funds",
		stats.totalAccounts, stats.withFunds)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("accounts", stats.totalAccounts),
		zap.Int("with_funds", stats.withFunds))
}
