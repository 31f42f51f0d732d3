package bot

import (
	"strings"
	"testing"

	"coffer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDigestMessage(t *testing.T) {
	transactions := []*models.Transaction{
		{CurrencyName: "silver", Amount: 40, Kind: models.TransactionKindTransfer},
		{CurrencyName: "gold", Amount: 25, Kind: models.TransactionKindWork},
		{CurrencyName: "amber", Amount: 10, Kind: models.TransactionKindSteal},
		{CurrencyName: "gold", Amount: 75, Kind: models.TransactionKindTransfer},
	}

	message := buildDigestMessage(transactions)

	assert.Contains(t, message, "4 transaction(s)")
	assert.Contains(t, message, "• transfer: 2")
	assert.Contains(t, message, "• work: 1")
	assert.Contains(t, message, "• steal: 1")
	assert.Contains(t, message, "• **gold**: 100")

	// Volume lines come out in currency name order regardless of input order
	amber := strings.Index(message, "**amber**")
	gold := strings.Index(message, "**gold**")
	silver := strings.Index(message, "**silver**")
	require.NotEqual(t, -1, amber)
	require.NotEqual(t, -1, gold)
	require.NotEqual(t, -1, silver)
	assert.Less(t, amber, gold)
	assert.Less(t, gold, silver)
}

func TestBuildDigestMessageStableAcrossRuns(t *testing.T) {
	transactions := []*models.Transaction{
		{CurrencyName: "gold", Amount: 5, Kind: models.TransactionKindDeposit},
		{CurrencyName: "silver", Amount: 5, Kind: models.TransactionKindDeposit},
		{CurrencyName: "copper", Amount: 5, Kind: models.TransactionKindDeposit},
	}

	first := buildDigestMessage(transactions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, buildDigestMessage(transactions))
	}
}
