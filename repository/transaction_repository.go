package repository

import (
	"context"
	"fmt"
	"time"

	"coffer/database"
	"coffer/models"
)

// TransactionRepository implements the TransactionRepository interface.
// Transaction rows are append-only; there is no update or delete path.
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx Queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create appends a transaction record, filling ID and CreatedAt server-side
func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.Amount <= 0 {
		return fmt.Errorf("transaction amount must be positive")
	}

	query := `
		INSERT INTO transactions (guild_id, from_user_id, to_user_id, currency_name, amount, kind)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		transaction.GuildID,
		transaction.FromUserID,
		transaction.ToUserID,
		transaction.CurrencyName,
		transaction.Amount,
		transaction.Kind,
	).Scan(&transaction.ID, &transaction.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create transaction for guild %d: %w", transaction.GuildID, err)
	}

	return nil
}

// ListByGuild returns a guild's transactions, newest first; limit <= 0 means all
func (r *TransactionRepository) ListByGuild(ctx context.Context, guildID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, guild_id, from_user_id, to_user_id, currency_name, amount, kind, created_at
		FROM transactions
		WHERE guild_id = $1
		ORDER BY created_at DESC, id DESC
	`

	args := []any{guildID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.list(ctx, query, args...)
}

// ListByGuildSince returns a guild's transactions at or after the given time, newest first
func (r *TransactionRepository) ListByGuildSince(ctx context.Context, guildID int64, since time.Time) ([]*models.Transaction, error) {
	query := `
		SELECT id, guild_id, from_user_id, to_user_id, currency_name, amount, kind, created_at
		FROM transactions
		WHERE guild_id = $1 AND created_at >= $2
		ORDER BY created_at DESC, id DESC
	`

	return r.list(ctx, query, guildID, since)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var transaction models.Transaction
		err := rows.Scan(
			&transaction.ID,
			&transaction.GuildID,
			&transaction.FromUserID,
			&transaction.ToUserID,
			&transaction.CurrencyName,
			&transaction.Amount,
			&transaction.Kind,
			&transaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
