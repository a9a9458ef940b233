package memory

import (
	"context"
	"testing"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRepoOptimisticVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewSaveRepo(NewStore())

	_, err := repo.GetByPlayerID(ctx, "p1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, repo.SaveWithVersion(ctx, ports.SaveRecord{PlayerID: "p1", Version: 1}, 0))
	assert.ErrorIs(t, repo.SaveWithVersion(ctx, ports.SaveRecord{PlayerID: "p1", Version: 1}, 0), ports.ErrConflict)
	require.NoError(t, repo.SaveWithVersion(ctx, ports.SaveRecord{PlayerID: "p1", Version: 2}, 1))

	got, err := repo.GetByPlayerID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.ErrorIs(t, repo.SaveWithVersion(ctx, ports.SaveRecord{PlayerID: "p2", Version: 4}, 3), ports.ErrConflict)
}

func TestEventRepoListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepo(NewStore())
	base := time.Unix(1700000000, 0).UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, "p1", []economy.DomainEvent{{
			Type:       economy.EventPurchaseCompleted,
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		}}))
	}

	got, err := repo.ListByPlayerID(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, base.Add(2*time.Second), got[0].OccurredAt)

	all, err := repo.ListByPlayerID(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCredentialAndExecutionReposRejectDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	creds := NewCredentialRepo(store)
	require.NoError(t, creds.Create(ctx, ports.CredentialRecord{PlayerID: "p1"}))
	assert.ErrorIs(t, creds.Create(ctx, ports.CredentialRecord{PlayerID: "p1"}), ports.ErrConflict)

	execs := NewPurchaseExecutionRepo(store)
	rec := ports.PurchaseExecutionRecord{PlayerID: "p1", IdempotencyKey: "k1", Upgrade: "straw"}
	require.NoError(t, execs.SaveExecution(ctx, rec))
	assert.ErrorIs(t, execs.SaveExecution(ctx, rec), ports.ErrConflict)
	got, err := execs.GetByIdempotencyKey(ctx, "p1", "k1")
	require.NoError(t, err)
	assert.Equal(t, "straw", got.Upgrade)
	_, err = execs.GetByIdempotencyKey(ctx, "p2", "k1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestTxManagerRunsFunction(t *testing.T) {
	ran := false
	err := NewTxManager(NewStore()).RunInTx(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}
