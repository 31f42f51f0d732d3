package repository

import (
	"context"
	"testing"

	"coffer/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	guildID := int64(123456789)
	userID := int64(987654321)

	repo := NewCharacterRepository(testDB.DB)

	t.Run("create and fetch round-trips all fields", func(t *testing.T) {
		character := testutil.CreateTestCharacter(guildID, userID, "Theren")
		character.Languages = []string{"Common", "Elvish", "Draconic"}
		imageURL := "https://img.example/theren.png"
		character.ImageURL = &imageURL

		require.NoError(t, repo.Create(ctx, character))
		assert.NotZero(t, character.ID)

		fetched, err := repo.GetByID(ctx, character.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "Theren", fetched.Name)
		assert.Equal(t, "Rango E", fetched.Rank)
		assert.Equal(t, []string{"Common", "Elvish", "Draconic"}, fetched.Languages)
		require.NotNil(t, fetched.ImageURL)
		assert.Equal(t, imageURL, *fetched.ImageURL)
		assert.Nil(t, fetched.N20URL)
	})

	t.Run("get by user returns the oldest character", func(t *testing.T) {
		second := testutil.CreateTestCharacter(guildID, userID, "Mira")
		require.NoError(t, repo.Create(ctx, second))

		character, err := repo.GetByUser(ctx, guildID, userID)
		require.NoError(t, err)
		require.NotNil(t, character)
		assert.Equal(t, "Theren", character.Name)
	})

	t.Run("get by user and name", func(t *testing.T) {
		character, err := repo.GetByUserAndName(ctx, guildID, userID, "Mira")
		require.NoError(t, err)
		require.NotNil(t, character)
		assert.Equal(t, "Mira", character.Name)

		missing, err := repo.GetByUserAndName(ctx, guildID, userID, "Nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update merges only the provided fields", func(t *testing.T) {
		existing, err := repo.GetByUserAndName(ctx, guildID, userID, "Mira")
		require.NoError(t, err)

		level := 7
		updated, err := repo.Update(ctx, existing.ID, &level, nil)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, 7, updated.Level)
		assert.Equal(t, existing.Rank, updated.Rank)

		rank := "Rango B"
		updated, err = repo.Update(ctx, existing.ID, nil, &rank)
		require.NoError(t, err)
		assert.Equal(t, 7, updated.Level)
		assert.Equal(t, "Rango B", updated.Rank)
	})

	t.Run("update of missing character returns nil", func(t *testing.T) {
		level := 5
		updated, err := repo.Update(ctx, 999999, &level, nil)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("list by guild and by user", func(t *testing.T) {
		other := testutil.CreateTestCharacter(guildID, userID+1, "Borin")
		require.NoError(t, repo.Create(ctx, other))

		all, err := repo.ListByGuild(ctx, guildID)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := repo.ListByUser(ctx, guildID, userID)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("delete removes the character", func(t *testing.T) {
		existing, err := repo.GetByUserAndName(ctx, guildID, userID, "Mira")
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, existing.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		gone, err := repo.GetByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		again, err := repo.Delete(ctx, existing.ID)
		require.NoError(t, err)
		assert.False(t, again)
	})
}
