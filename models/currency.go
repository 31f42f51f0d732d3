package models

// Currency represents a guild-defined currency
type Currency struct {
	ID      int64  `db:"id"`
	GuildID int64  `db:"guild_id"`
	Name    string `db:"name"`
	Symbol  string `db:"symbol"`
}
