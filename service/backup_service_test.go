package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"coffer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBackupService_Export(t *testing.T) {
	m := newServiceMocks(t)
	service := NewBackupService(m.factory)
	ctx := context.Background()

	currencies := []*models.Currency{
		{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"},
		{ID: 2, GuildID: 100, Name: "gems", Symbol: "*"},
	}
	created := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	characters := []*models.Character{
		{
			ID: 1, GuildID: 100, UserID: 200, Name: "Theren", Level: 5,
			Class: "Wizard", Race: "Elf", Alignment: "Neutral Good",
			Rank: "Rango C", Languages: []string{"Common", "Elvish"},
			CreatedAt: created,
		},
	}
	wallets := []*models.Wallet{
		{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{"gold": 80, "gems": 0}},
		{ID: 11, GuildID: 100, UserID: 300, Balances: map[string]int64{"gold": 5}},
	}

	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
	m.characters.On("ListByGuild", ctx, int64(100)).Return(characters, nil)
	m.wallets.On("ListByGuild", ctx, int64(100)).Return(wallets, nil)

	export, err := service.Export(ctx, 100)

	require.NoError(t, err)

	currencyLines := strings.Split(strings.TrimSpace(string(export.Currencies)), "\n")
	require.Len(t, currencyLines, 3)
	assert.Equal(t, "name,symbol", currencyLines[0])
	assert.Equal(t, "gold,g", currencyLines[1])
	assert.Equal(t, "gems,*", currencyLines[2])

	characterLines := strings.Split(strings.TrimSpace(string(export.Characters)), "\n")
	require.Len(t, characterLines, 2)
	assert.Contains(t, characterLines[1], "200,Theren,5,Wizard,Elf,Neutral Good,Rango C,Common|Elvish")
	assert.Contains(t, characterLines[1], "2026-03-15T12:00:00Z")

	balanceLines := strings.Split(strings.TrimSpace(string(export.Balances)), "\n")
	require.Len(t, balanceLines, 3)
	assert.Equal(t, "user_id,currency,balance", balanceLines[0])
	// Zero holdings are omitted
	assert.Contains(t, balanceLines, "200,gold,80")
	assert.Contains(t, balanceLines, "300,gold,5")
	assert.NotContains(t, string(export.Balances), "gems")
}

func TestBackupService_ImportCurrencies(t *testing.T) {
	m := newServiceMocks(t)
	service := NewBackupService(m.factory)
	ctx := context.Background()

	data := []byte("name,symbol\ngold,g\n,missing\ngems,*\n")

	m.currencies.On("GetByName", ctx, int64(100), "gold").Return(nil, nil)
	m.currencies.On("GetByName", ctx, int64(100), "gems").Return(nil, nil)
	m.currencies.On("Create", ctx, int64(100), "gold", "g").
		Return(&models.Currency{ID: 1, Name: "gold"}, nil)
	m.currencies.On("Create", ctx, int64(100), "gems", "*").
		Return(&models.Currency{ID: 2, Name: "gems"}, nil)

	imported, rowErrors, err := service.ImportCurrencies(ctx, 100, data)

	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	require.Len(t, rowErrors, 1)
	assert.Contains(t, rowErrors[0], "row 2")
}

func TestBackupService_ImportCurrencies_SkipsExisting(t *testing.T) {
	m := newServiceMocks(t)
	service := NewBackupService(m.factory)
	ctx := context.Background()

	data := []byte("name,symbol\ngold,g\n")

	m.currencies.On("GetByName", ctx, int64(100), "gold").
		Return(&models.Currency{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}, nil)

	imported, rowErrors, err := service.ImportCurrencies(ctx, 100, data)

	require.NoError(t, err)
	assert.Equal(t, 0, imported)
	require.Len(t, rowErrors, 1)
	assert.Contains(t, rowErrors[0], "already exists")
	m.currencies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBackupService_ImportCharacters(t *testing.T) {
	m := newServiceMocks(t)
	service := NewBackupService(m.factory)
	ctx := context.Background()

	data := []byte(strings.Join([]string{
		"user_id,name,level,class,race,alignment,rank,languages,image_url,n20_url,created_at",
		"200,Theren,5,Wizard,Elf,Neutral Good,Rango C,Common|Elvish,,",
		"300,Mira,3,Rogue,Human,Chaotic Neutral,,Common,https://img.example/mira.png,",
		"bad,NoUser,1,Fighter,Dwarf,Lawful Good,Rango E,Common",
	}, "\n"))

	m.characters.On("Create", ctx, mock.MatchedBy(func(c *models.Character) bool {
		return c.UserID == 200 && c.Name == "Theren" && len(c.Languages) == 2
	})).Return(nil)
	m.characters.On("Create", ctx, mock.MatchedBy(func(c *models.Character) bool {
		// Blank rank falls back to the default
		return c.UserID == 300 && c.Rank == models.DefaultRank && c.ImageURL != nil
	})).Return(nil)

	imported, rowErrors, err := service.ImportCharacters(ctx, 100, data)

	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	require.Len(t, rowErrors, 1)
	assert.Contains(t, rowErrors[0], "invalid user_id")
}

func TestBackupService_ImportBalances(t *testing.T) {
	m := newServiceMocks(t)
	service := NewBackupService(m.factory)
	ctx := context.Background()

	data := []byte(strings.Join([]string{
		"user_id,currency,balance",
		"200,gold,80",
		"200,gems,3",
		"300,gold,-5",
		"300,gold,5",
	}, "\n"))

	wallet200 := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{}}
	wallet300 := &models.Wallet{ID: 11, GuildID: 100, UserID: 300, Balances: map[string]int64{}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(wallet200, nil)
	m.wallets.On("GetByUser", ctx, int64(100), int64(300)).Return(wallet300, nil)
	m.wallets.On("ReplaceBalances", ctx, int64(10), map[string]int64{"gold": 80, "gems": 3}).Return(nil)
	m.wallets.On("ReplaceBalances", ctx, int64(11), map[string]int64{"gold": 5}).Return(nil)

	imported, rowErrors, err := service.ImportBalances(ctx, 100, data)

	require.NoError(t, err)
	assert.Equal(t, 3, imported)
	require.Len(t, rowErrors, 1)
	assert.Contains(t, rowErrors[0], "invalid balance")
	m.wallets.AssertNumberOfCalls(t, "ReplaceBalances", 2)
}

func TestBackupService_ImportBalances_MalformedCSV(t *testing.T) {
	m := newServiceMocks(t)
	service := NewBackupService(m.factory)

	imported, rowErrors, err := service.ImportBalances(context.Background(), 100, []byte("\"unterminated"))

	require.Error(t, err)
	assert.Zero(t, imported)
	assert.Empty(t, rowErrors)
	m.factory.AssertNotCalled(t, "Create")
}
