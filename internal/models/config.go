package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Ledger     LedgerConfig
	Reconciler ReconcilerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// LedgerConfig holds the ledger policy: fees, deposit floor, admission
// limits and the escrow signer set.
type LedgerConfig struct {
	// Owner administers pause/block/fee/authorization state.
	Owner Account

	// LedgerAccount is the identity the message ledger debits fees under.
	// It must be granted spender authorization before sends can succeed.
	LedgerAccount Account

	MessageFee     decimal.Decimal
	MinimumDeposit decimal.Decimal

	// Content pointers are opaque; only their length is bounded. CID
	// decoding is an optional stricter policy.
	MaxPointerLen      int
	ValidatePointerCID bool

	// Fixed-window admission control per sender.
	WindowDuration time.Duration
	MaxPerWindow   int

	// Escrow withdrawal signer set. Threshold confirmations execute.
	EscrowSigners   []Account
	EscrowThreshold int
}

// ReconcilerConfig holds audit reconciliation loop settings
type ReconcilerConfig struct {
	Interval time.Duration
}
