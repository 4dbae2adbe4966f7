package api

import (
	"context"
	"testing"

	"message-ledger-go/internal/ledger"
	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *LedgerService {
	t.Helper()

	svc, err := ledger.NewService(models.LedgerConfig{
		Owner:          "owner",
		MessageFee:     decimal.RequireFromString("0.001"),
		MinimumDeposit: decimal.RequireFromString("0.01"),
	}, ledger.Deps{})
	require.NoError(t, err)
	require.NoError(t, svc.SetAuthorizedSpender("owner", svc.LedgerAccount(), true))
	return NewLedgerService(svc)
}

func TestDepositResultCodes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result := svc.Deposit(ctx, "alice", decimal.RequireFromString("0.1"))
	require.True(t, result.Success)
	assert.True(t, result.NewBalance.Equal(decimal.RequireFromString("0.1")))

	result = svc.Deposit(ctx, "alice", decimal.RequireFromString("0.001"))
	require.False(t, result.Success)
	assert.Equal(t, "BelowMinimumDeposit", result.Error)
}

func TestWithdrawResultCodes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result := svc.Withdraw(ctx, "alice", decimal.RequireFromString("1"))
	require.False(t, result.Success)
	assert.Equal(t, "InsufficientBalance", result.Error)

	require.True(t, svc.Deposit(ctx, "alice", decimal.RequireFromString("0.5")).Success)
	wr := svc.Withdraw(ctx, "alice", decimal.RequireFromString("0.2"))
	require.True(t, wr.Success)
	assert.True(t, wr.NewBalance.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, svc.Balance("alice").Equal(decimal.RequireFromString("0.3")))
}

func TestSendMessageResultCodes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result := svc.SendMessage(ctx, "alice", "bob", "pointer")
	require.False(t, result.Success)
	assert.Equal(t, "InsufficientBalance", result.Error)

	require.True(t, svc.Deposit(ctx, "alice", decimal.RequireFromString("0.1")).Success)

	result = svc.SendMessage(ctx, "alice", "alice", "pointer")
	require.False(t, result.Success)
	assert.Equal(t, "InvalidReceiver", result.Error)

	result = svc.SendMessage(ctx, "alice", "bob", "")
	require.False(t, result.Success)
	assert.Equal(t, "InvalidContentPointer", result.Error)

	result = svc.SendMessage(ctx, "alice", "bob", "pointer")
	require.True(t, result.Success)
	assert.Equal(t, uint64(1), result.MessageId)
	assert.True(t, result.FeePaid.Equal(decimal.RequireFromString("0.001")))
}

func TestClaimRefundResultCodes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result := svc.ClaimRefund(ctx, "alice")
	require.False(t, result.Success)
	assert.Equal(t, "NoRefundAvailable", result.Error)
}
