package ledger

import (
	"context"
	"testing"
	"time"

	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() models.LedgerConfig {
	return models.LedgerConfig{
		Owner:          testOwner,
		MessageFee:     dec("0.001"),
		MinimumDeposit: dec("0.01"),
		WindowDuration: time.Hour,
		MaxPerWindow:   10,
	}
}

func TestRestoreFromStoreRebuildsState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	svc, err := NewService(baseConfig(), Deps{Store: mem})
	require.NoError(t, err)
	require.NoError(t, svc.SetAuthorizedSpender(testOwner, svc.LedgerAccount(), true))

	_, err = svc.Deposit(ctx, alice, dec("0.5"))
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, bob, dec("0.2"))
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, alice, bob, "m1")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, bob, alice, "m2")
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, bob, dec("0.1"))
	require.NoError(t, err)
	require.NoError(t, svc.IssueRefund(ctx, testOwner, alice, dec("0.001")))

	// a fresh process over the same audit trail
	restored, err := NewService(baseConfig(), Deps{Store: mem})
	require.NoError(t, err)
	require.NoError(t, restored.RestoreFromStore(ctx))

	assert.True(t, restored.Balance(alice).Equal(svc.Balance(alice)))
	assert.True(t, restored.Balance(bob).Equal(svc.Balance(bob)))
	assert.True(t, restored.TotalHeld().Equal(svc.TotalHeld()))
	assert.True(t, restored.RefundAmount(alice).Equal(dec("0.001")))

	msg, err := restored.Message(1)
	require.NoError(t, err)
	assert.Equal(t, alice, msg.Sender)
	assert.Equal(t, "m1", msg.ContentPointer)
	assert.Equal(t, []uint64{2}, restored.MessagesByUser(alice, false))

	// ids continue past the restored log
	require.NoError(t, restored.SetAuthorizedSpender(testOwner, restored.LedgerAccount(), true))
	id, err := restored.SendMessage(ctx, alice, bob, "m3")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
}

func TestRestoreRequiresFreshLedger(t *testing.T) {
	l := newTestLedger(t, nil)
	l.fund(t, alice, "1")

	err := l.svc.Restore(nil, decimal.Zero, nil, nil)
	require.Error(t, err)
}

func TestRestoreRejectsInconsistentState(t *testing.T) {
	mk := func() *Service {
		svc, err := NewService(baseConfig(), Deps{})
		require.NoError(t, err)
		return svc
	}

	err := mk().Restore(nil, dec("-1"), nil, nil)
	require.ErrorIs(t, err, ErrInvalidAmount)

	err = mk().Restore(map[models.Account]decimal.Decimal{alice: dec("-0.1")}, decimal.Zero, nil, nil)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// refundables beyond what escrow holds
	err = mk().Restore(nil, dec("0.001"), map[models.Account]decimal.Decimal{alice: dec("0.002")}, nil)
	require.ErrorIs(t, err, ErrInvalidAmount)

	err = mk().Restore(nil, decimal.Zero, nil, []models.Message{{Id: 0, Sender: alice, Receiver: bob}})
	require.Error(t, err)
}
