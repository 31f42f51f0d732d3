package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"coffer/events"
	"coffer/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	guildID := int64(123456789)

	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	t.Run("commit persists work across repositories", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.CurrencyRepository().Create(ctx, guildID, "gold", "g")
		require.NoError(t, err)

		wallet, err := uow.WalletRepository().Create(ctx, guildID, 1)
		require.NoError(t, err)
		require.NoError(t, uow.WalletRepository().Credit(ctx, wallet.ID, "gold", 100))

		require.NoError(t, uow.Commit())

		fetched, err := NewWalletRepository(testDB.DB).GetByUser(ctx, guildID, 1)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, int64(100), fetched.Balance("gold"))
	})

	t.Run("rollback discards work", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		wallet, err := uow.WalletRepository().Create(ctx, guildID, 2)
		require.NoError(t, err)
		require.NoError(t, uow.WalletRepository().Credit(ctx, wallet.ID, "gold", 100))

		require.NoError(t, uow.Rollback())

		fetched, err := NewWalletRepository(testDB.DB).GetByUser(ctx, guildID, 2)
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("events flush only after commit", func(t *testing.T) {
		var mu sync.Mutex
		var received []events.Event
		bus.Subscribe(events.EventTypeCurrencyDeleted, func(ctx context.Context, event events.Event) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, event)
		})

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		deleted, err := uow.CurrencyRepository().Delete(ctx, guildID, "gold")
		require.NoError(t, err)
		require.True(t, deleted)

		uow.EventBus().Publish(events.CurrencyDeletedEvent{GuildID: guildID, CurrencyName: "gold"})

		mu.Lock()
		assert.Empty(t, received, "nothing may reach subscribers before commit")
		mu.Unlock()

		require.NoError(t, uow.Commit())

		// Handlers run async
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(received) == 1
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("events are discarded on rollback", func(t *testing.T) {
		var mu sync.Mutex
		var count int
		bus.Subscribe(events.EventTypeTransactionLogged, func(ctx context.Context, event events.Event) {
			mu.Lock()
			defer mu.Unlock()
			count++
		})

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		uow.EventBus().Publish(events.TransactionLoggedEvent{GuildID: guildID, Amount: 5, Kind: "deposit"})
		require.NoError(t, uow.Rollback())

		time.Sleep(100 * time.Millisecond)
		mu.Lock()
		assert.Zero(t, count)
		mu.Unlock()
	})

	t.Run("double begin fails", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})
}

func TestGuildSettingsRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	guildID := int64(123456789)

	repo := NewGuildSettingsRepository(testDB.DB)

	t.Run("first access creates defaults", func(t *testing.T) {
		settings, err := repo.GetOrCreateGuildSettings(ctx, guildID)
		require.NoError(t, err)
		assert.Equal(t, guildID, settings.GuildID)
		assert.Nil(t, settings.TransactionLogChannel)
	})

	t.Run("concurrent first access does not conflict", func(t *testing.T) {
		freshGuildID := int64(987654321)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.GetOrCreateGuildSettings(ctx, freshGuildID)
			}(i)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
	})

	t.Run("update persists the log channel", func(t *testing.T) {
		settings, err := repo.GetOrCreateGuildSettings(ctx, guildID)
		require.NoError(t, err)

		channelID := int64(4242)
		settings.TransactionLogChannel = &channelID
		require.NoError(t, repo.UpdateGuildSettings(ctx, settings))

		fetched, err := repo.GetOrCreateGuildSettings(ctx, guildID)
		require.NoError(t, err)
		require.NotNil(t, fetched.TransactionLogChannel)
		assert.Equal(t, channelID, *fetched.TransactionLogChannel)
	})
}
