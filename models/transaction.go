package models

import (
	"time"
)

// TransactionKind classifies a balance movement for the audit log
type TransactionKind string

const (
	TransactionKindTransfer  TransactionKind = "transfer"
	TransactionKindDeposit   TransactionKind = "deposit"
	TransactionKindDeduction TransactionKind = "deduction"
	TransactionKindWork      TransactionKind = "work"
	TransactionKindSteal     TransactionKind = "steal"
)

// Transaction is an immutable audit record of a balance movement.
// FromUserID == ToUserID represents a self-adjustment.
type Transaction struct {
	ID           int64           `db:"id"`
	GuildID      int64           `db:"guild_id"`
	FromUserID   int64           `db:"from_user_id"`
	ToUserID     int64           `db:"to_user_id"`
	CurrencyName string          `db:"currency_name"`
	Amount       int64           `db:"amount"`
	Kind         TransactionKind `db:"kind"`
	CreatedAt    time.Time       `db:"created_at"`
}
