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

package database

const (
	// Movement queries
	queryCheckDuplicateMovement = `
		SELECT id FROM account_movements WHERE id = ? LIMIT 1`

	queryInsertMovement = `
		INSERT INTO account_movements (
			id, account, kind, amount, balance_before, balance_after, reference
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryMovementHistory = `
		SELECT id, account, kind, amount, balance_before, balance_after, reference, created_at
		FROM account_movements
		WHERE account = ?
		ORDER BY rowid DESC
		LIMIT ? OFFSET ?`

	// Amounts are decimal strings; summed in Go to avoid REAL rounding.
	queryMovementAmounts = `
		SELECT amount
		FROM account_movements
		WHERE account = ?
		ORDER BY rowid`

	queryAccounts = `
		SELECT DISTINCT account
		FROM account_movements
		ORDER BY account`

	// Message queries
	queryCheckDuplicateMessage = `
		SELECT id FROM messages WHERE id = ? LIMIT 1`

	queryInsertMessage = `
		INSERT INTO messages (id, sender, receiver, content_pointer, fee_paid, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetMessage = `
		SELECT id, sender, receiver, content_pointer, fee_paid, created_at
		FROM messages
		WHERE id = ?`

	queryMessagesBySender = `
		SELECT id, sender, receiver, content_pointer, fee_paid, created_at
		FROM messages
		WHERE sender = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`

	queryMessagesByReceiver = `
		SELECT id, sender, receiver, content_pointer, fee_paid, created_at
		FROM messages
		WHERE receiver = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`

	queryMessagesAfter = `
		SELECT id, sender, receiver, content_pointer, fee_paid, created_at
		FROM messages
		WHERE id > ?
		ORDER BY id
		LIMIT ?`

	// Refund queries
	queryInsertRefund = `
		INSERT INTO refunds (id, account, delta, reference)
		VALUES (?, ?, ?, ?)`

	queryRefundDeltas = `
		SELECT account, delta
		FROM refunds
		ORDER BY rowid`
)
