package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is an opaque participant identifier. The ledger never interprets
// it beyond equality comparison.
type Account string

// ZeroAccount is the null identifier. It is never a valid sender, receiver
// or owner.
const ZeroAccount Account = ""

// Message is an immutable ledger record. ContentPointer references
// off-ledger ciphertext (an IPFS CID in the reference deployment); the
// ledger only bounds its length.
type Message struct {
	Id             uint64
	Sender         Account
	Receiver       Account
	ContentPointer string
	FeePaid        decimal.Decimal
	CreatedAt      time.Time
}

// Movement is one entry in the balance audit trail.
type Movement struct {
	Id            string
	Account       Account
	Kind          string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reference     string
	CreatedAt     time.Time
}

// Movement kinds recorded in the audit trail.
const (
	MovementDeposit            = "deposit"
	MovementWithdrawal         = "withdrawal"
	MovementWithdrawalReversal = "withdrawal_reversal"
	MovementSpend              = "spend"
	MovementFee                = "fee"
	MovementRefundIssued       = "refund_issued"
	MovementRefundClaimed      = "refund_claimed"
	MovementEscrowWithdrawal   = "escrow_withdrawal"
)

// EscrowAccount is the reserved identifier movements against the fee escrow
// are booked under.
const EscrowAccount Account = "escrow"

// AccountBalance is a point-in-time balance snapshot derived from the audit
// trail.
type AccountBalance struct {
	Account   Account
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

// PendingWithdrawal is a submitted escrow withdrawal awaiting signer
// confirmations. Executed is terminal: a withdrawal never runs twice.
type PendingWithdrawal struct {
	Id          string
	To          Account
	Amount      decimal.Decimal
	Reason      string
	SubmittedBy Account
	SubmittedAt time.Time
	Confirmed   []Account
	Executed    bool
}
