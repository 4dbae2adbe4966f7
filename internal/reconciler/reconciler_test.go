package reconciler

import (
	"context"
	"testing"
	"time"

	"message-ledger-go/internal/ledger"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSetup(t *testing.T) (*ledger.Service, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	svc, err := ledger.NewService(models.LedgerConfig{
		Owner:          "owner",
		MessageFee:     decimal.RequireFromString("0.001"),
		MinimumDeposit: decimal.RequireFromString("0.01"),
	}, ledger.Deps{Store: mem})
	require.NoError(t, err)
	require.NoError(t, svc.SetAuthorizedSpender("owner", svc.LedgerAccount(), true))
	return svc, mem
}

func TestReconcileCleanTrail(t *testing.T) {
	svc, mem := newTestSetup(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "alice", decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "alice", "bob", "pointer")
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, "alice", decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	divergences, err := New(svc, mem, time.Minute).Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, divergences)
}

func TestReconcileDetectsLostAuditWrite(t *testing.T) {
	svc, mem := newTestSetup(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "alice", decimal.RequireFromString("0.5"))
	require.NoError(t, err)

	// a stray movement the ledger never applied
	require.NoError(t, mem.RecordMovement(ctx, store.MovementParams{
		Id:      "stray",
		Account: "alice",
		Kind:    models.MovementDeposit,
		Amount:  decimal.RequireFromString("0.25"),
	}))

	divergences, err := New(svc, mem, time.Minute).Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Equal(t, models.Account("alice"), divergences[0].Account)
	assert.Equal(t, "0.5", divergences[0].Live)
	assert.Equal(t, "0.75", divergences[0].Audited)
}

func TestReconcileCoversEscrow(t *testing.T) {
	svc, mem := newTestSetup(t)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, "alice", decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "alice", "bob", "pointer")
	require.NoError(t, err)

	// lose an escrow audit record
	require.NoError(t, mem.RecordMovement(ctx, store.MovementParams{
		Id:      "stray-escrow",
		Account: models.EscrowAccount,
		Kind:    models.MovementFee,
		Amount:  decimal.RequireFromString("0.001"),
	}))

	divergences, err := New(svc, mem, time.Minute).Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Equal(t, models.EscrowAccount, divergences[0].Account)
}

func TestStartStop(t *testing.T) {
	svc, mem := newTestSetup(t)

	r := New(svc, mem, 10*time.Millisecond)
	r.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	r.Stop()
}
