package common

import (
	"fmt"
	"strings"
	"time"

	"coffer/models"
)

// FormatAmount formats an amount with thousand separators
func FormatAmount(amount int64) string {
	str := fmt.Sprintf("%d", amount)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatCurrencyAmount renders an amount with its currency symbol
func FormatCurrencyAmount(amount int64, currency *models.Currency) string {
	return fmt.Sprintf("%s %s", FormatAmount(amount), currency.Symbol)
}

// FormatCooldownWait renders the remaining wait as whole days and hours
func FormatCooldownWait(days, hours int) string {
	switch {
	case days == 0:
		return fmt.Sprintf("%d hour(s)", hours)
	case hours == 0:
		return fmt.Sprintf("%d day(s)", days)
	default:
		return fmt.Sprintf("%d day(s) and %d hour(s)", days, hours)
	}
}

// FormatTransactionLine renders one audit log entry as a message line
func FormatTransactionLine(tx *models.Transaction) string {
	when := FormatDiscordTimestamp(tx.CreatedAt, "f")
	switch tx.Kind {
	case models.TransactionKindTransfer:
		return fmt.Sprintf("%s <@%d> sent **%s %s** to <@%d>", when, tx.FromUserID, FormatAmount(tx.Amount), tx.CurrencyName, tx.ToUserID)
	case models.TransactionKindDeposit:
		return fmt.Sprintf("%s <@%d> deposited **%s %s** to <@%d>", when, tx.FromUserID, FormatAmount(tx.Amount), tx.CurrencyName, tx.ToUserID)
	case models.TransactionKindDeduction:
		return fmt.Sprintf("%s <@%d> deducted **%s %s**", when, tx.FromUserID, FormatAmount(tx.Amount), tx.CurrencyName)
	case models.TransactionKindWork:
		return fmt.Sprintf("%s <@%d> earned **%s %s** working", when, tx.ToUserID, FormatAmount(tx.Amount), tx.CurrencyName)
	case models.TransactionKindSteal:
		return fmt.Sprintf("%s <@%d> stole **%s %s** from <@%d>", when, tx.ToUserID, FormatAmount(tx.Amount), tx.CurrencyName, tx.FromUserID)
	default:
		return fmt.Sprintf("%s <@%d> -> <@%d>: %s %s (%s)", when, tx.FromUserID, tx.ToUserID, FormatAmount(tx.Amount), tx.CurrencyName, tx.Kind)
	}
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
