package repository

import (
	"context"
	"testing"
	"time"

	"coffer/models"
	"coffer/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	guildID := int64(123456789)

	repo := NewTransactionRepository(testDB.DB)

	t.Run("create fills id and timestamp", func(t *testing.T) {
		transaction := testutil.CreateTestTransaction(guildID, 1, 2, "gold", 25)
		require.NoError(t, repo.Create(ctx, transaction))

		assert.NotZero(t, transaction.ID)
		assert.WithinDuration(t, time.Now(), transaction.CreatedAt, time.Minute)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		transaction := testutil.CreateTestTransaction(guildID, 1, 2, "gold", 0)
		err := repo.Create(ctx, transaction)
		require.Error(t, err)

		transaction.Amount = -10
		err = repo.Create(ctx, transaction)
		require.Error(t, err)
	})

	t.Run("list returns newest first and respects limit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			tx := testutil.CreateTestTransaction(guildID, 1, 2, "gold", i)
			tx.Kind = models.TransactionKindDeposit
			require.NoError(t, repo.Create(ctx, tx))
		}

		all, err := repo.ListByGuild(ctx, guildID, 0)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, int64(3), all[0].Amount)

		limited, err := repo.ListByGuild(ctx, guildID, 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, all[0].ID, limited[0].ID)
	})

	t.Run("list is scoped per guild", func(t *testing.T) {
		other, err := repo.ListByGuild(ctx, guildID+1, 0)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("list since filters by time", func(t *testing.T) {
		recent, err := repo.ListByGuildSince(ctx, guildID, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, recent, 4)

		none, err := repo.ListByGuildSince(ctx, guildID, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
