package repository

import (
	"context"
	"fmt"
	"time"

	"coffer/database"
	"coffer/models"
	"coffer/service"

	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUser retrieves a user's wallet with its balances, nil if absent
func (r *WalletRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	query := `
		SELECT id, guild_id, user_id, last_worked, last_stolen, created_at, updated_at
		FROM wallets
		WHERE guild_id = $1 AND user_id = $2
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&wallet.ID,
		&wallet.GuildID,
		&wallet.UserID,
		&wallet.LastWorked,
		&wallet.LastStolen,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	balances, err := r.loadBalances(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}
	wallet.Balances = balances

	return &wallet, nil
}

// ListByGuild returns every wallet in a guild with balances loaded.
// Balances are fetched in one query and bucketed in memory to avoid a
// per-wallet round trip on the export path.
func (r *WalletRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.Wallet, error) {
	query := `
		SELECT id, guild_id, user_id, last_worked, last_stolen, created_at, updated_at
		FROM wallets
		WHERE guild_id = $1
		ORDER BY user_id ASC
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	byID := map[int64]*models.Wallet{}
	for rows.Next() {
		var wallet models.Wallet
		err := rows.Scan(
			&wallet.ID,
			&wallet.GuildID,
			&wallet.UserID,
			&wallet.LastWorked,
			&wallet.LastStolen,
			&wallet.CreatedAt,
			&wallet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallet.Balances = map[string]int64{}
		wallets = append(wallets, &wallet)
		byID[wallet.ID] = &wallet
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}
	rows.Close()

	balanceQuery := `
		SELECT wb.wallet_id, wb.currency_name, wb.balance
		FROM wallet_balances wb
		JOIN wallets w ON w.id = wb.wallet_id
		WHERE w.guild_id = $1
	`

	balanceRows, err := r.q.Query(ctx, balanceQuery, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances for guild %d: %w", guildID, err)
	}
	defer balanceRows.Close()

	for balanceRows.Next() {
		var walletID int64
		var currencyName string
		var balance int64
		if err := balanceRows.Scan(&walletID, &currencyName, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		if wallet, ok := byID[walletID]; ok {
			wallet.Balances[currencyName] = balance
		}
	}
	if err := balanceRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return wallets, nil
}

// Create initializes an empty wallet for a user
func (r *WalletRepository) Create(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (guild_id, user_id)
		VALUES ($1, $2)
		RETURNING id, guild_id, user_id, last_worked, last_stolen, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&wallet.ID,
		&wallet.GuildID,
		&wallet.UserID,
		&wallet.LastWorked,
		&wallet.LastStolen,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	wallet.Balances = map[string]int64{}

	return &wallet, nil
}

// Credit adds amount to a wallet's balance for a currency, creating the row if needed
func (r *WalletRepository) Credit(ctx context.Context, walletID int64, currencyName string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		INSERT INTO wallet_balances (wallet_id, currency_name, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_id, currency_name)
		DO UPDATE SET balance = wallet_balances.balance + EXCLUDED.balance
	`

	if _, err := r.q.Exec(ctx, query, walletID, currencyName, amount); err != nil {
		return fmt.Errorf("failed to credit %d %s to wallet %d: %w", amount, currencyName, walletID, err)
	}

	return nil
}

// Debit subtracts amount atomically. The conditional update is what rules out
// two concurrent debits both passing a stale sufficient-funds check: a missing
// row or one below the requested amount affects zero rows.
func (r *WalletRepository) Debit(ctx context.Context, walletID int64, currencyName string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallet_balances
		SET balance = balance - $3
		WHERE wallet_id = $1 AND currency_name = $2 AND balance >= $3
	`

	result, err := r.q.Exec(ctx, query, walletID, currencyName, amount)
	if err != nil {
		return fmt.Errorf("failed to debit %d %s from wallet %d: %w", amount, currencyName, walletID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d has less than %d %s: %w", walletID, amount, currencyName, service.ErrInsufficientFunds)
	}

	return nil
}

// UpdateCooldowns sets the reward-action timestamps; a nil parameter leaves
// the stored value unchanged.
func (r *WalletRepository) UpdateCooldowns(ctx context.Context, walletID int64, lastWorked, lastStolen *time.Time) error {
	query := `
		UPDATE wallets
		SET last_worked = COALESCE($2, last_worked),
		    last_stolen = COALESCE($3, last_stolen),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, walletID, lastWorked, lastStolen)
	if err != nil {
		return fmt.Errorf("failed to update cooldowns for wallet %d: %w", walletID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %d: %w", walletID, service.ErrWalletNotFound)
	}

	return nil
}

// ReplaceBalances overwrites the wallet's balance map wholesale (import path)
func (r *WalletRepository) ReplaceBalances(ctx context.Context, walletID int64, balances map[string]int64) error {
	deleteQuery := `DELETE FROM wallet_balances WHERE wallet_id = $1`
	if _, err := r.q.Exec(ctx, deleteQuery, walletID); err != nil {
		return fmt.Errorf("failed to clear balances for wallet %d: %w", walletID, err)
	}

	insertQuery := `
		INSERT INTO wallet_balances (wallet_id, currency_name, balance)
		VALUES ($1, $2, $3)
	`
	for currencyName, balance := range balances {
		if balance < 0 {
			return fmt.Errorf("negative balance %d for %s in wallet %d", balance, currencyName, walletID)
		}
		if balance == 0 {
			continue
		}
		if _, err := r.q.Exec(ctx, insertQuery, walletID, currencyName, balance); err != nil {
			return fmt.Errorf("failed to set balance of %s for wallet %d: %w", currencyName, walletID, err)
		}
	}

	touchQuery := `UPDATE wallets SET updated_at = NOW() WHERE id = $1`
	if _, err := r.q.Exec(ctx, touchQuery, walletID); err != nil {
		return fmt.Errorf("failed to touch wallet %d: %w", walletID, err)
	}

	return nil
}

func (r *WalletRepository) loadBalances(ctx context.Context, walletID int64) (map[string]int64, error) {
	query := `
		SELECT currency_name, balance
		FROM wallet_balances
		WHERE wallet_id = $1
	`

	rows, err := r.q.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances for wallet %d: %w", walletID, err)
	}
	defer rows.Close()

	balances := map[string]int64{}
	for rows.Next() {
		var currencyName string
		var balance int64
		if err := rows.Scan(&currencyName, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances[currencyName] = balance
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return balances, nil
}
