package repository

import (
	"context"
	"fmt"

	"coffer/database"
	"coffer/models"

	"github.com/jackc/pgx/v5"
)

// CharacterRepository implements the CharacterRepository interface
type CharacterRepository struct {
	q Queryable
}

// NewCharacterRepository creates a new character repository
func NewCharacterRepository(db *database.DB) *CharacterRepository {
	return &CharacterRepository{q: db.Pool}
}

// newCharacterRepositoryWithTx creates a new character repository with a transaction
func newCharacterRepositoryWithTx(tx Queryable) *CharacterRepository {
	return &CharacterRepository{q: tx}
}

const characterColumns = `id, guild_id, user_id, name, level, class, race, alignment, rank, languages, image_url, n20_url, created_at`

func scanCharacter(row pgx.Row) (*models.Character, error) {
	var character models.Character
	err := row.Scan(
		&character.ID,
		&character.GuildID,
		&character.UserID,
		&character.Name,
		&character.Level,
		&character.Class,
		&character.Race,
		&character.Alignment,
		&character.Rank,
		&character.Languages,
		&character.ImageURL,
		&character.N20URL,
		&character.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &character, nil
}

// GetByID retrieves a character by id, nil if absent
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`

	character, err := scanCharacter(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character %d: %w", id, err)
	}

	return character, nil
}

// GetByUser returns a user's oldest character in a guild, nil if absent
func (r *CharacterRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.Character, error) {
	query := `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	character, err := scanCharacter(r.q.QueryRow(ctx, query, guildID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character for user %d in guild %d: %w", userID, guildID, err)
	}

	return character, nil
}

// GetByUserAndName retrieves a user's character by name, nil if absent
func (r *CharacterRepository) GetByUserAndName(ctx context.Context, guildID, userID int64, name string) (*models.Character, error) {
	query := `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE guild_id = $1 AND user_id = $2 AND name = $3
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	character, err := scanCharacter(r.q.QueryRow(ctx, query, guildID, userID, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character %q for user %d in guild %d: %w", name, userID, guildID, err)
	}

	return character, nil
}

// ListByGuild returns all characters in a guild, newest first
func (r *CharacterRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.Character, error) {
	query := `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE guild_id = $1
		ORDER BY created_at DESC, id DESC
	`

	return r.list(ctx, query, guildID)
}

// ListByUser returns a user's characters in a guild, newest first
func (r *CharacterRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Character, error) {
	query := `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
	`

	return r.list(ctx, query, guildID, userID)
}

func (r *CharacterRepository) list(ctx context.Context, query string, args ...any) ([]*models.Character, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var characters []*models.Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, character)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate characters: %w", err)
	}

	return characters, nil
}

// Create inserts a new character, filling ID and CreatedAt
func (r *CharacterRepository) Create(ctx context.Context, character *models.Character) error {
	query := `
		INSERT INTO characters (guild_id, user_id, name, level, class, race, alignment, rank, languages, image_url, n20_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		character.GuildID,
		character.UserID,
		character.Name,
		character.Level,
		character.Class,
		character.Race,
		character.Alignment,
		character.Rank,
		character.Languages,
		character.ImageURL,
		character.N20URL,
	).Scan(&character.ID, &character.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create character %q for user %d: %w", character.Name, character.UserID, err)
	}

	return nil
}

// Update merges the supplied fields; nil parameters are left unchanged
func (r *CharacterRepository) Update(ctx context.Context, id int64, level *int, rank *string) (*models.Character, error) {
	query := `
		UPDATE characters
		SET level = COALESCE($2, level),
		    rank = COALESCE($3, rank)
		WHERE id = $1
		RETURNING ` + characterColumns

	character, err := scanCharacter(r.q.QueryRow(ctx, query, id, level, rank))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update character %d: %w", id, err)
	}

	return character, nil
}

// Delete removes a character by id; returns false if none matched
func (r *CharacterRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM characters WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete character %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
