package models

import (
	"time"
)

// DefaultRank is assigned to characters created without an explicit rank.
const DefaultRank = "Rango E"

// Character represents a member's character sheet in a guild.
// A user may own multiple characters, distinguished by name.
type Character struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Name      string    `db:"name"`
	Level     int       `db:"level"`
	Class     string    `db:"class"`
	Race      string    `db:"race"`
	Alignment string    `db:"alignment"`
	Rank      string    `db:"rank"`
	Languages []string  `db:"languages"`
	ImageURL  *string   `db:"image_url"`
	N20URL    *string   `db:"n20_url"`
	CreatedAt time.Time `db:"created_at"`
}
