package testutil

import (
	"coffer/models"
)

// CreateTestCurrency builds an unsaved currency with default values
func CreateTestCurrency(guildID int64, name string) *models.Currency {
	return &models.Currency{
		GuildID: guildID,
		Name:    name,
		Symbol:  "¤",
	}
}

// CreateTestCharacter builds an unsaved character with default values
func CreateTestCharacter(guildID, userID int64, name string) *models.Character {
	return &models.Character{
		GuildID:   guildID,
		UserID:    userID,
		Name:      name,
		Level:     1,
		Class:     "Fighter",
		Race:      "Human",
		Alignment: "True Neutral",
		Rank:      models.DefaultRank,
		Languages: []string{"Common"},
	}
}

// CreateTestTransaction builds an unsaved transfer record between two users
func CreateTestTransaction(guildID, fromUserID, toUserID int64, currencyName string, amount int64) *models.Transaction {
	return &models.Transaction{
		GuildID:      guildID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		CurrencyName: currencyName,
		Amount:       amount,
		Kind:         models.TransactionKindTransfer,
	}
}
