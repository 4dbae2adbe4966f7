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

// Package api is the thin result-oriented facade callers outside the core
// consume: sentinel errors become result codes suitable for a frontend or
// CLI, with structured logging on the way through.
package api

import (
	"errors"

	"message-ledger-go/internal/ledger"
)

// LedgerService provides minimal API
type LedgerService struct {
	ledger *ledger.Service
}

func NewLedgerService(svc *ledger.Service) *LedgerService {
	return &LedgerService{
		ledger: svc,
	}
}

// errorCode maps core sentinel errors to stable result codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ledger.ErrBelowMinimumDeposit):
		return "BelowMinimumDeposit"
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return "InsufficientBalance"
	case errors.Is(err, ledger.ErrUnauthorizedSpender):
		return "UnauthorizedSpender"
	case errors.Is(err, ledger.ErrNotOwner):
		return "NotOwner"
	case errors.Is(err, ledger.ErrRateLimitExceeded):
		return "RateLimitExceeded"
	case errors.Is(err, ledger.ErrUserBlocked):
		return "UserBlocked"
	case errors.Is(err, ledger.ErrPaused):
		return "ContractPaused"
	case errors.Is(err, ledger.ErrInvalidReceiver):
		return "InvalidReceiver"
	case errors.Is(err, ledger.ErrInvalidContentPointer):
		return "InvalidContentPointer"
	case errors.Is(err, ledger.ErrNotFound):
		return "NotFound"
	case errors.Is(err, ledger.ErrNoRefundAvailable):
		return "NoRefundAvailable"
	case errors.Is(err, ledger.ErrInvalidLimit):
		return "InvalidLimit"
	case errors.Is(err, ledger.ErrTransferFailed):
		return "TransferFailed"
	case errors.Is(err, ledger.ErrReentrantCall):
		return "ReentrantCall"
	default:
		return "Unknown"
	}
}
