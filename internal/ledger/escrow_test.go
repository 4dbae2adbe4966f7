package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowAccumulatesFees(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")

	for i := 0; i < 3; i++ {
		_, err := l.svc.SendMessage(ctx, alice, bob, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	assert.True(t, l.svc.TotalHeld().Equal(dec("0.003")))
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.997")))
}

func TestRefundRoundTrip(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")

	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)

	require.NoError(t, l.svc.IssueRefund(ctx, testOwner, alice, dec("0.001")))
	assert.True(t, l.svc.RefundAmount(alice).Equal(dec("0.001")))
	assert.True(t, l.svc.TotalHeld().Equal(dec("0.001")))

	var paidOut decimal.Decimal
	l.transfer.fn = func(ctx context.Context, to models.Account, amount decimal.Decimal) error {
		paidOut = amount
		return nil
	}

	claimed, err := l.svc.ClaimRefund(ctx, alice)
	require.NoError(t, err)
	assert.True(t, claimed.Equal(dec("0.001")))
	assert.True(t, paidOut.Equal(dec("0.001")))
	assert.True(t, l.svc.RefundAmount(alice).IsZero())
	assert.True(t, l.svc.TotalHeld().IsZero())

	// a second claim finds nothing
	_, err = l.svc.ClaimRefund(ctx, alice)
	require.ErrorIs(t, err, ErrNoRefundAvailable)
}

func TestIssueRefundGuards(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)

	err = l.svc.IssueRefund(ctx, alice, alice, dec("0.001"))
	require.ErrorIs(t, err, ErrNotOwner)

	err = l.svc.IssueRefund(ctx, testOwner, models.ZeroAccount, dec("0.001"))
	require.ErrorIs(t, err, ErrInvalidAccount)

	err = l.svc.IssueRefund(ctx, testOwner, alice, dec("-0.001"))
	require.ErrorIs(t, err, ErrInvalidAmount)

	// more than escrow holds
	err = l.svc.IssueRefund(ctx, testOwner, alice, dec("0.002"))
	require.ErrorIs(t, err, ErrInsufficientEscrow)
}

func TestRefundsNeverExceedHeld(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m1")
	require.NoError(t, err)
	_, err = l.svc.SendMessage(ctx, alice, bob, "m2")
	require.NoError(t, err)

	// held 0.002; commit all of it to refunds in two pieces
	require.NoError(t, l.svc.IssueRefund(ctx, testOwner, alice, dec("0.001")))
	require.NoError(t, l.svc.IssueRefund(ctx, testOwner, bob, dec("0.001")))

	// fully committed now
	err = l.svc.IssueRefund(ctx, testOwner, carol, dec("0.001"))
	require.ErrorIs(t, err, ErrInsufficientEscrow)

	// and committed funds cannot leave through a withdrawal
	_, err = l.svc.SubmitEscrowWithdrawal(ctx, testOwner, testOwner, dec("0.001"), "revenue")
	require.ErrorIs(t, err, ErrInsufficientEscrow)
}

func TestClaimRefundTransferFailureReinstates(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)
	require.NoError(t, l.svc.IssueRefund(ctx, testOwner, alice, dec("0.001")))

	l.transfer.fn = func(context.Context, models.Account, decimal.Decimal) error {
		return errors.New("no value environment")
	}

	_, err = l.svc.ClaimRefund(ctx, alice)
	require.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, l.svc.RefundAmount(alice).Equal(dec("0.001")))
	assert.True(t, l.svc.TotalHeld().Equal(dec("0.001")))

	// the entry survives for a later successful claim
	l.transfer.fn = nil
	claimed, err := l.svc.ClaimRefund(ctx, alice)
	require.NoError(t, err)
	assert.True(t, claimed.Equal(dec("0.001")))
}

func TestClaimRefundReentrantClaimFindsNothing(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)
	require.NoError(t, l.svc.IssueRefund(ctx, testOwner, alice, dec("0.001")))

	var nestedErr error
	l.transfer.fn = func(ctx context.Context, to models.Account, amount decimal.Decimal) error {
		_, nestedErr = l.svc.ClaimRefund(ctx, alice)
		return nil
	}

	claimed, err := l.svc.ClaimRefund(ctx, alice)
	require.NoError(t, err)
	assert.True(t, claimed.Equal(dec("0.001")))
	require.ErrorIs(t, nestedErr, ErrReentrantCall)
	assert.True(t, l.svc.TotalHeld().IsZero())
}

func TestEscrowWithdrawalThresholdOne(t *testing.T) {
	l := newTestLedger(t, nil) // default signers [owner], threshold 1
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)

	id, err := l.svc.SubmitEscrowWithdrawal(ctx, testOwner, carol, dec("0.001"), "revenue")
	require.NoError(t, err)

	pw, err := l.svc.PendingWithdrawal(id)
	require.NoError(t, err)
	assert.True(t, pw.Executed)
	assert.Equal(t, carol, pw.To)
	assert.Equal(t, []models.Account{testOwner}, pw.Confirmed)
	assert.True(t, l.svc.TotalHeld().IsZero())
}

func TestEscrowWithdrawalThresholdTwo(t *testing.T) {
	l := newTestLedger(t, func(cfg *models.LedgerConfig) {
		cfg.EscrowSigners = []models.Account{testOwner, alice, bob}
		cfg.EscrowThreshold = 2
	})
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)

	id, err := l.svc.SubmitEscrowWithdrawal(ctx, testOwner, carol, dec("0.001"), "revenue")
	require.NoError(t, err)

	pw, err := l.svc.PendingWithdrawal(id)
	require.NoError(t, err)
	assert.False(t, pw.Executed)
	assert.True(t, l.svc.TotalHeld().Equal(dec("0.001")))

	// non-signer cannot confirm
	err = l.svc.ConfirmEscrowWithdrawal(ctx, carol, id)
	require.ErrorIs(t, err, ErrNotSigner)

	// the submitter already confirmed
	err = l.svc.ConfirmEscrowWithdrawal(ctx, testOwner, id)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)

	// second signer reaches the threshold and executes
	require.NoError(t, l.svc.ConfirmEscrowWithdrawal(ctx, alice, id))
	pw, err = l.svc.PendingWithdrawal(id)
	require.NoError(t, err)
	assert.True(t, pw.Executed)
	assert.Equal(t, []models.Account{testOwner, alice}, pw.Confirmed)
	assert.True(t, l.svc.TotalHeld().IsZero())

	// executed is terminal
	err = l.svc.ConfirmEscrowWithdrawal(ctx, bob, id)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestEscrowWithdrawalGuards(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()

	_, err := l.svc.SubmitEscrowWithdrawal(ctx, alice, carol, dec("0.001"), "")
	require.ErrorIs(t, err, ErrNotSigner)

	_, err = l.svc.SubmitEscrowWithdrawal(ctx, testOwner, models.ZeroAccount, dec("0.001"), "")
	require.ErrorIs(t, err, ErrInvalidAccount)

	_, err = l.svc.SubmitEscrowWithdrawal(ctx, testOwner, carol, decimal.Zero, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	// nothing held yet
	_, err = l.svc.SubmitEscrowWithdrawal(ctx, testOwner, carol, dec("0.001"), "")
	require.ErrorIs(t, err, ErrInsufficientEscrow)

	err = l.svc.ConfirmEscrowWithdrawal(ctx, testOwner, "no-such-id")
	require.ErrorIs(t, err, ErrUnknownWithdrawal)
}

func TestEscrowWithdrawalTransferFailureKeepsConfirmations(t *testing.T) {
	l := newTestLedger(t, func(cfg *models.LedgerConfig) {
		cfg.EscrowSigners = []models.Account{testOwner, alice}
		cfg.EscrowThreshold = 2
	})
	ctx := context.Background()
	l.fund(t, alice, "1")
	_, err := l.svc.SendMessage(ctx, alice, bob, "m")
	require.NoError(t, err)

	id, err := l.svc.SubmitEscrowWithdrawal(ctx, testOwner, carol, dec("0.001"), "revenue")
	require.NoError(t, err)

	l.transfer.fn = func(context.Context, models.Account, decimal.Decimal) error {
		return errors.New("transfer rejected")
	}
	err = l.svc.ConfirmEscrowWithdrawal(ctx, alice, id)
	require.ErrorIs(t, err, ErrTransferFailed)

	pw, err := l.svc.PendingWithdrawal(id)
	require.NoError(t, err)
	assert.False(t, pw.Executed)
	assert.Equal(t, []models.Account{testOwner, alice}, pw.Confirmed)
	assert.True(t, l.svc.TotalHeld().Equal(dec("0.001")))
}
