package service

import (
	"errors"
	"fmt"
	"time"
)

// Domain failure kinds. Handlers match these with errors.Is to pick
// user-facing messages; everything else is reported generically.
var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCurrencyNotFound  = errors.New("currency not found")
	ErrCurrencyExists    = errors.New("currency already exists")
	ErrCharacterNotFound = errors.New("character not found")
	ErrNoCurrencies      = errors.New("no currencies configured")
	ErrNothingToSteal    = errors.New("nothing to steal")
	ErrSelfTarget        = errors.New("cannot target yourself")
	ErrOnCooldown        = errors.New("action on cooldown")
)

// CooldownError reports how long until a reward action may be used again.
// It matches ErrOnCooldown under errors.Is.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	days, hours := SplitCooldown(e.Remaining)
	return fmt.Sprintf("%s available in %dd %dh", e.Action, days, hours)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrOnCooldown
}

// SplitCooldown breaks a remaining cooldown into whole days and hours,
// rounding the total up to the next full hour.
func SplitCooldown(remaining time.Duration) (days, hours int) {
	totalHours := int((remaining + time.Hour - 1) / time.Hour)
	return totalHours / 24, totalHours % 24
}
