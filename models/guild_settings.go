package models

// GuildSettings represents per-guild bot configuration
type GuildSettings struct {
	GuildID               int64  `db:"guild_id"`
	TransactionLogChannel *int64 `db:"transaction_log_channel_id"`
}
