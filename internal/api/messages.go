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

	"go.uber.org/zap"
)

// SendMessage runs the admission pipeline and reports the outcome.
func (s *LedgerService) SendMessage(ctx context.Context, sender, receiver models.Account, contentPointer string) *models.SendResult {
	zap.L().Info("Processing send",
		zap.String("sender", string(sender)),
		zap.String("receiver", string(receiver)),
		zap.String("content_pointer", contentPointer))

	fee := s.ledger.MessageFee()
	id, err := s.ledger.SendMessage(ctx, sender, receiver, contentPointer)
	if err != nil {
		zap.L().Warn("Send rejected",
			zap.String("sender", string(sender)),
			zap.String("receiver", string(receiver)),
			zap.Error(err))
		return &models.SendResult{Success: false, Error: errorCode(err)}
	}
	return &models.SendResult{Success: true, MessageId: id, FeePaid: fee}
}

// ClaimRefund pays out the caller's pending refund and reports the outcome.
func (s *LedgerService) ClaimRefund(ctx context.Context, caller models.Account) *models.RefundResult {
	amount, err := s.ledger.ClaimRefund(ctx, caller)
	if err != nil {
		zap.L().Warn("Refund claim rejected",
			zap.String("account", string(caller)),
			zap.Error(err))
		return &models.RefundResult{Success: false, Error: errorCode(err)}
	}
	return &models.RefundResult{Success: true, Amount: amount}
}
