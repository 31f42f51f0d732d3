package service

import (
	"context"
	"errors"
	"testing"

	"coffer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCharacterService_CreateCharacter(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	m.characters.On("Create", ctx, mock.MatchedBy(func(c *models.Character) bool {
		return c.GuildID == 100 &&
			c.UserID == 200 &&
			c.Name == "Theren" &&
			c.Level == 5 &&
			c.Rank == "Rango C"
	})).Return(nil)

	character, err := service.CreateCharacter(ctx, CreateCharacterInput{
		GuildID:   100,
		UserID:    200,
		Name:      "Theren",
		Level:     5,
		Class:     "Wizard",
		Race:      "Elf",
		Alignment: "Neutral Good",
		Rank:      "Rango C",
		Languages: []string{"Common", "Elvish"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Theren", character.Name)
}

func TestCharacterService_CreateCharacter_DefaultsRank(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	m.characters.On("Create", ctx, mock.MatchedBy(func(c *models.Character) bool {
		return c.Rank == models.DefaultRank
	})).Return(nil)

	character, err := service.CreateCharacter(ctx, CreateCharacterInput{
		GuildID: 100,
		UserID:  200,
		Name:    "Theren",
		Level:   1,
		Class:   "Wizard",
		Race:    "Elf",
	})

	require.NoError(t, err)
	assert.Equal(t, "Rango E", character.Rank)
}

func TestCharacterService_CreateCharacter_InvalidLevel(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)

	for _, level := range []int{0, -1, 21} {
		_, err := service.CreateCharacter(context.Background(), CreateCharacterInput{
			GuildID: 100,
			UserID:  200,
			Name:    "Theren",
			Level:   level,
		})
		require.Error(t, err)
	}
	m.factory.AssertNotCalled(t, "Create")
}

func TestCharacterService_GetCharacter_NotFound(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	m.characters.On("GetByUser", ctx, int64(100), int64(200)).Return(nil, nil)

	character, err := service.GetCharacter(ctx, 100, 200)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCharacterNotFound))
	assert.Nil(t, character)
}

func TestCharacterService_GetCharacterByName(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	expected := &models.Character{ID: 3, GuildID: 100, UserID: 200, Name: "Theren", Level: 5}
	m.characters.On("GetByUserAndName", ctx, int64(100), int64(200), "Theren").Return(expected, nil)

	character, err := service.GetCharacterByName(ctx, 100, 200, "Theren")

	require.NoError(t, err)
	assert.Equal(t, expected, character)
}

func TestCharacterService_UpdateCharacter(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	updated := &models.Character{ID: 3, Level: 6, Rank: "Rango D"}
	m.characters.On("Update", ctx, int64(3), intPtr(6), strPtr("Rango D")).Return(updated, nil)

	character, err := service.UpdateCharacter(ctx, 3, intPtr(6), strPtr("Rango D"))

	require.NoError(t, err)
	assert.Equal(t, 6, character.Level)
	assert.Equal(t, "Rango D", character.Rank)
}

func TestCharacterService_UpdateCharacter_NothingToUpdate(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)

	character, err := service.UpdateCharacter(context.Background(), 3, nil, nil)

	require.Error(t, err)
	assert.Nil(t, character)
	m.factory.AssertNotCalled(t, "Create")
}

func TestCharacterService_UpdateCharacter_NotFound(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	m.characters.On("Update", ctx, int64(3), intPtr(6), (*string)(nil)).Return(nil, nil)

	character, err := service.UpdateCharacter(ctx, 3, intPtr(6), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCharacterNotFound))
	assert.Nil(t, character)
}

func TestCharacterService_DeleteCharacter_NotFound(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	m.characters.On("Delete", ctx, int64(3)).Return(false, nil)

	err := service.DeleteCharacter(ctx, 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCharacterNotFound))
}

func TestCharacterService_ListCharacters(t *testing.T) {
	m := newServiceMocks(t)
	service := NewCharacterService(m.factory)
	ctx := context.Background()

	expected := []*models.Character{
		{ID: 2, GuildID: 100, Name: "Mira"},
		{ID: 1, GuildID: 100, Name: "Theren"},
	}
	m.characters.On("ListByGuild", ctx, int64(100)).Return(expected, nil)

	characters, err := service.ListCharacters(ctx, 100)

	require.NoError(t, err)
	assert.Equal(t, expected, characters)
}
