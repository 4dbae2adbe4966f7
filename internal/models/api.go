package models

import "github.com/shopspring/decimal"

// DepositResult represents the outcome of a deposit operation
type DepositResult struct {
	Success    bool
	NewBalance decimal.Decimal
	Error      string
}

// WithdrawalResult represents the outcome of a withdrawal operation
type WithdrawalResult struct {
	Success    bool
	NewBalance decimal.Decimal
	Error      string
}

// SendResult represents the outcome of a send-message operation
type SendResult struct {
	Success   bool
	MessageId uint64
	FeePaid   decimal.Decimal
	Error     string
}

// RefundResult represents the outcome of a refund claim
type RefundResult struct {
	Success bool
	Amount  decimal.Decimal
	Error   string
}
