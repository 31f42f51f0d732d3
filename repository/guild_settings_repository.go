package repository

import (
	"context"
	"fmt"

	"coffer/database"
	"coffer/models"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// newGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func newGuildSettingsRepositoryWithTx(tx Queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `
		SELECT guild_id, transaction_log_channel_id
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings models.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.TransactionLogChannel,
	)

	if err == nil {
		return &settings, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	// Not found: insert defaults, tolerating a concurrent first touch of
	// the same guild, then read back whichever row won
	insertQuery := `
		INSERT INTO guild_settings (guild_id, transaction_log_channel_id)
		VALUES ($1, NULL)
		ON CONFLICT (guild_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, insertQuery, guildID); err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}

	err = r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.TransactionLogChannel,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET transaction_log_channel_id = $2
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query, settings.GuildID, settings.TransactionLogChannel)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %d not found", settings.GuildID)
	}

	return nil
}
