package ledger

import (
	"context"
	"errors"
	"testing"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositCreditsAndCreatesAccount(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()

	assert.True(t, l.svc.Balance(alice).IsZero())

	balance, err := l.svc.Deposit(ctx, alice, dec("0.1"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("0.1")))

	balance, err = l.svc.Deposit(ctx, alice, dec("0.05"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("0.15")))
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.15")))
}

func TestDepositBelowMinimumRejected(t *testing.T) {
	l := newTestLedger(t, nil)

	_, err := l.svc.Deposit(context.Background(), alice, dec("0.009"))
	require.ErrorIs(t, err, ErrBelowMinimumDeposit)
	assert.True(t, l.svc.Balance(alice).IsZero())
}

func TestDepositZeroAccountRejected(t *testing.T) {
	l := newTestLedger(t, nil)

	_, err := l.svc.Deposit(context.Background(), models.ZeroAccount, dec("1"))
	require.ErrorIs(t, err, ErrInvalidAccount)
}

func TestDepositAllowedWhilePaused(t *testing.T) {
	l := newTestLedger(t, nil)
	require.NoError(t, l.svc.Pause(testOwner))

	balance, err := l.svc.Deposit(context.Background(), alice, dec("0.5"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("0.5")))
}

func TestWithdrawDebitsAndTransfers(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")

	var transferredTo models.Account
	var transferredAmount decimal.Decimal
	l.transfer.fn = func(ctx context.Context, to models.Account, amount decimal.Decimal) error {
		transferredTo = to
		transferredAmount = amount
		return nil
	}

	balance, err := l.svc.Withdraw(ctx, alice, dec("0.4"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("0.6")))
	assert.Equal(t, alice, transferredTo)
	assert.True(t, transferredAmount.Equal(dec("0.4")))
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "0.1")

	_, err := l.svc.Withdraw(context.Background(), alice, dec("0.11"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.1")))
}

func TestWithdrawRejectedWhilePaused(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "1")
	require.NoError(t, l.svc.Pause(testOwner))

	_, err := l.svc.Withdraw(context.Background(), alice, dec("0.5"))
	require.ErrorIs(t, err, ErrPaused)
	assert.True(t, l.svc.Balance(alice).Equal(dec("1")))
}

func TestBlockedUserCanStillWithdraw(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "1")
	require.NoError(t, l.svc.SetUserBlocked(testOwner, alice, true))

	balance, err := l.svc.Withdraw(context.Background(), alice, dec("1"))
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestWithdrawTransferFailureRollsBack(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "1")

	l.transfer.fn = func(context.Context, models.Account, decimal.Decimal) error {
		return errors.New("recipient rejected the transfer")
	}

	_, err := l.svc.Withdraw(context.Background(), alice, dec("0.3"))
	require.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, l.svc.Balance(alice).Equal(dec("1")))
}

func TestWithdrawReentrantCallRejected(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")

	var nestedErr error
	var observedDuringTransfer decimal.Decimal
	l.transfer.fn = func(ctx context.Context, to models.Account, amount decimal.Decimal) error {
		// the debit is already applied when the recipient runs
		observedDuringTransfer = l.svc.Balance(alice)
		_, nestedErr = l.svc.Withdraw(ctx, alice, dec("0.1"))
		return nil
	}

	balance, err := l.svc.Withdraw(ctx, alice, dec("0.4"))
	require.NoError(t, err)
	require.ErrorIs(t, nestedErr, ErrReentrantCall)
	assert.True(t, observedDuringTransfer.Equal(dec("0.6")))
	assert.True(t, balance.Equal(dec("0.6")))
}

func TestSpendRequiresAuthorization(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")

	err := l.svc.Spend(ctx, carol, alice, dec("0.1"))
	require.ErrorIs(t, err, ErrUnauthorizedSpender)
	assert.True(t, l.svc.Balance(alice).Equal(dec("1")))

	require.NoError(t, l.svc.SetAuthorizedSpender(testOwner, carol, true))
	require.NoError(t, l.svc.Spend(ctx, carol, alice, dec("0.1")))
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.9")))

	require.NoError(t, l.svc.SetAuthorizedSpender(testOwner, carol, false))
	err = l.svc.Spend(ctx, carol, alice, dec("0.1"))
	require.ErrorIs(t, err, ErrUnauthorizedSpender)
}

func TestSpendInsufficientBalance(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "0.05")

	err := l.svc.Spend(context.Background(), l.svc.LedgerAccount(), alice, dec("0.06"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.05")))
}

func TestCanAfford(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "0.05")

	assert.True(t, l.svc.CanAfford(alice, dec("0.05")))
	assert.False(t, l.svc.CanAfford(alice, dec("0.050001")))
	assert.False(t, l.svc.CanAfford(bob, dec("0.000001")))
}
