package ledger

import (
	"context"
	"testing"

	"message-ledger-go/internal/events"
	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOperationsAreOwnerOnly(t *testing.T) {
	l := newTestLedger(t, nil)

	require.ErrorIs(t, l.svc.Pause(alice), ErrNotOwner)
	require.ErrorIs(t, l.svc.Unpause(alice), ErrNotOwner)
	require.ErrorIs(t, l.svc.SetUserBlocked(alice, bob, true), ErrNotOwner)
	require.ErrorIs(t, l.svc.SetMessageFee(alice, dec("0.002")), ErrNotOwner)
	require.ErrorIs(t, l.svc.TransferOwnership(alice, bob), ErrNotOwner)
	require.ErrorIs(t, l.svc.SetAuthorizedSpender(alice, bob, true), ErrNotOwner)
}

func TestPauseUnpause(t *testing.T) {
	l := newTestLedger(t, nil)

	assert.False(t, l.svc.Paused())
	require.NoError(t, l.svc.Pause(testOwner))
	assert.True(t, l.svc.Paused())
	require.NoError(t, l.svc.Unpause(testOwner))
	assert.False(t, l.svc.Paused())

	assert.Len(t, l.recorder.Named(events.Paused), 1)
	assert.Len(t, l.recorder.Named(events.Unpaused), 1)
}

func TestBlockUnblock(t *testing.T) {
	l := newTestLedger(t, nil)

	assert.False(t, l.svc.IsBlocked(alice))
	require.NoError(t, l.svc.SetUserBlocked(testOwner, alice, true))
	assert.True(t, l.svc.IsBlocked(alice))
	require.NoError(t, l.svc.SetUserBlocked(testOwner, alice, false))
	assert.False(t, l.svc.IsBlocked(alice))

	require.ErrorIs(t, l.svc.SetUserBlocked(testOwner, models.ZeroAccount, true), ErrInvalidAccount)
}

func TestSetMessageFeeTakesEffectOnNextSend(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	l.fund(t, alice, "1")

	_, err := l.svc.SendMessage(ctx, alice, bob, "m1")
	require.NoError(t, err)
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.999")))

	require.NoError(t, l.svc.SetMessageFee(testOwner, dec("0.005")))
	assert.True(t, l.svc.MessageFee().Equal(dec("0.005")))

	_, err = l.svc.SendMessage(ctx, alice, bob, "m2")
	require.NoError(t, err)
	assert.True(t, l.svc.Balance(alice).Equal(dec("0.994")))
	assert.True(t, l.svc.TotalHeld().Equal(dec("0.006")))

	require.ErrorIs(t, l.svc.SetMessageFee(testOwner, dec("-1")), ErrInvalidAmount)
	require.NoError(t, l.svc.SetMessageFee(testOwner, decimal.Zero))
}

func TestTransferOwnership(t *testing.T) {
	l := newTestLedger(t, nil)

	require.ErrorIs(t, l.svc.TransferOwnership(testOwner, models.ZeroAccount), ErrInvalidAccount)

	require.NoError(t, l.svc.TransferOwnership(testOwner, carol))
	assert.Equal(t, carol, l.svc.Owner())

	// the old owner has no rights left
	require.ErrorIs(t, l.svc.Pause(testOwner), ErrNotOwner)
	require.NoError(t, l.svc.Pause(carol))

	evts := l.recorder.Named(events.OwnershipTransferred)
	require.Len(t, evts, 1)
	assert.Equal(t, "owner", evts[0].Fields["old_owner"])
	assert.Equal(t, "carol", evts[0].Fields["new_owner"])
}
