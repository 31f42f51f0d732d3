package repository

import (
	"context"
	"errors"
	"fmt"

	"coffer/database"
	"coffer/models"
	"coffer/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CurrencyRepository implements the CurrencyRepository interface
type CurrencyRepository struct {
	q Queryable
}

// NewCurrencyRepository creates a new currency repository
func NewCurrencyRepository(db *database.DB) *CurrencyRepository {
	return &CurrencyRepository{q: db.Pool}
}

// newCurrencyRepositoryWithTx creates a new currency repository with a transaction
func newCurrencyRepositoryWithTx(tx Queryable) *CurrencyRepository {
	return &CurrencyRepository{q: tx}
}

// List returns all currencies defined for a guild
func (r *CurrencyRepository) List(ctx context.Context, guildID int64) ([]*models.Currency, error) {
	query := `
		SELECT id, guild_id, name, symbol
		FROM currencies
		WHERE guild_id = $1
		ORDER BY name ASC
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var currencies []*models.Currency
	for rows.Next() {
		var currency models.Currency
		if err := rows.Scan(&currency.ID, &currency.GuildID, &currency.Name, &currency.Symbol); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, &currency)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}

	return currencies, nil
}

// GetByName retrieves a currency by name, nil if absent
func (r *CurrencyRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.Currency, error) {
	query := `
		SELECT id, guild_id, name, symbol
		FROM currencies
		WHERE guild_id = $1 AND name = $2
	`

	var currency models.Currency
	err := r.q.QueryRow(ctx, query, guildID, name).Scan(
		&currency.ID,
		&currency.GuildID,
		&currency.Name,
		&currency.Symbol,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %q for guild %d: %w", name, guildID, err)
	}

	return &currency, nil
}

// Create inserts a new currency; returns ErrCurrencyExists on a name collision
func (r *CurrencyRepository) Create(ctx context.Context, guildID int64, name, symbol string) (*models.Currency, error) {
	query := `
		INSERT INTO currencies (guild_id, name, symbol)
		VALUES ($1, $2, $3)
		RETURNING id, guild_id, name, symbol
	`

	var currency models.Currency
	err := r.q.QueryRow(ctx, query, guildID, name, symbol).Scan(
		&currency.ID,
		&currency.GuildID,
		&currency.Name,
		&currency.Symbol,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("currency %q in guild %d: %w", name, guildID, service.ErrCurrencyExists)
		}
		return nil, fmt.Errorf("failed to create currency %q for guild %d: %w", name, guildID, err)
	}

	return &currency, nil
}

// Delete removes a currency by name; returns false if none matched.
// Wallet balance rows referencing the name are intentionally left behind:
// every read path filters against the current directory.
func (r *CurrencyRepository) Delete(ctx context.Context, guildID int64, name string) (bool, error) {
	query := `
		DELETE FROM currencies
		WHERE guild_id = $1 AND name = $2
	`

	result, err := r.q.Exec(ctx, query, guildID, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete currency %q for guild %d: %w", name, guildID, err)
	}

	return result.RowsAffected() > 0, nil
}
