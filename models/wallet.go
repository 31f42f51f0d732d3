package models

import (
	"time"
)

// Wallet represents a user's per-guild currency holdings.
// Balances maps currency name to a non-negative amount; an absent key means zero.
type Wallet struct {
	ID         int64            `db:"id"`
	GuildID    int64            `db:"guild_id"`
	UserID     int64            `db:"user_id"`
	Balances   map[string]int64 `db:"-"`
	LastWorked *time.Time       `db:"last_worked"`
	LastStolen *time.Time       `db:"last_stolen"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
}

// Balance returns the wallet's balance for a currency, zero if absent.
func (w *Wallet) Balance(currencyName string) int64 {
	if w.Balances == nil {
		return 0
	}
	return w.Balances[currencyName]
}
