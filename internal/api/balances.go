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

package api

import (
	"context"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deposit credits a prepaid balance and reports the outcome.
func (s *LedgerService) Deposit(ctx context.Context, account models.Account, amount decimal.Decimal) *models.DepositResult {
	zap.L().Info("Processing deposit",
		zap.String("account", string(account)),
		zap.String("amount", amount.String()))

	newBalance, err := s.ledger.Deposit(ctx, account, amount)
	if err != nil {
		zap.L().Warn("Deposit rejected",
			zap.String("account", string(account)),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return &models.DepositResult{Success: false, Error: errorCode(err)}
	}
	return &models.DepositResult{Success: true, NewBalance: newBalance}
}

// Withdraw debits the caller's balance and reports the outcome.
func (s *LedgerService) Withdraw(ctx context.Context, caller models.Account, amount decimal.Decimal) *models.WithdrawalResult {
	zap.L().Info("Processing withdrawal",
		zap.String("account", string(caller)),
		zap.String("amount", amount.String()))

	newBalance, err := s.ledger.Withdraw(ctx, caller, amount)
	if err != nil {
		zap.L().Warn("Withdrawal rejected",
			zap.String("account", string(caller)),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return &models.WithdrawalResult{Success: false, Error: errorCode(err)}
	}
	return &models.WithdrawalResult{Success: true, NewBalance: newBalance}
}

// Balance returns the account's current prepaid balance.
func (s *LedgerService) Balance(account models.Account) decimal.Decimal {
	return s.ledger.Balance(account)
}
