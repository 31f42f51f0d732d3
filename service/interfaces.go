package service

import (
	"context"
	"time"

	"coffer/events"
	"coffer/models"
)

// CurrencyRepository defines the interface for currency directory data access
type CurrencyRepository interface {
	// List returns all currencies defined for a guild
	List(ctx context.Context, guildID int64) ([]*models.Currency, error)

	// GetByName retrieves a currency by name, nil if absent
	GetByName(ctx context.Context, guildID int64, name string) (*models.Currency, error)

	// Create inserts a new currency; returns ErrCurrencyExists on a name collision
	Create(ctx context.Context, guildID int64, name, symbol string) (*models.Currency, error)

	// Delete removes a currency by name; returns false if none matched
	Delete(ctx context.Context, guildID int64, name string) (bool, error)
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUser retrieves a user's wallet with its balances, nil if absent
	GetByUser(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// ListByGuild returns every wallet in a guild with balances loaded
	ListByGuild(ctx context.Context, guildID int64) ([]*models.Wallet, error)

	// Create initializes an empty wallet for a user
	Create(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// Credit adds amount to a wallet's balance for a currency, creating the row if needed
	Credit(ctx context.Context, walletID int64, currencyName string, amount int64) error

	// Debit subtracts amount atomically, failing with ErrInsufficientFunds
	// if the balance would go negative
	Debit(ctx context.Context, walletID int64, currencyName string, amount int64) error

	// UpdateCooldowns sets the reward-action timestamps; a nil parameter
	// leaves the stored value unchanged
	UpdateCooldowns(ctx context.Context, walletID int64, lastWorked, lastStolen *time.Time) error

	// ReplaceBalances overwrites the wallet's balance map wholesale (import path)
	ReplaceBalances(ctx context.Context, walletID int64, balances map[string]int64) error
}

// CharacterRepository defines the interface for character sheet data access
type CharacterRepository interface {
	// GetByID retrieves a character by id, nil if absent
	GetByID(ctx context.Context, id int64) (*models.Character, error)

	// GetByUser returns a user's oldest character in a guild, nil if absent
	GetByUser(ctx context.Context, guildID, userID int64) (*models.Character, error)

	// GetByUserAndName retrieves a user's character by name, nil if absent
	GetByUserAndName(ctx context.Context, guildID, userID int64, name string) (*models.Character, error)

	// ListByGuild returns all characters in a guild, newest first
	ListByGuild(ctx context.Context, guildID int64) ([]*models.Character, error)

	// ListByUser returns a user's characters in a guild, newest first
	ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Character, error)

	// Create inserts a new character, filling ID and CreatedAt
	Create(ctx context.Context, character *models.Character) error

	// Update merges the supplied fields; nil parameters are left unchanged
	Update(ctx context.Context, id int64, level *int, rank *string) (*models.Character, error)

	// Delete removes a character by id; returns false if none matched
	Delete(ctx context.Context, id int64) (bool, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// UpdateGuildSettings updates guild settings
	UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error
}

// TransactionRepository defines the interface for the append-only audit log
type TransactionRepository interface {
	// Create appends a transaction record, filling ID and CreatedAt server-side
	Create(ctx context.Context, transaction *models.Transaction) error

	// ListByGuild returns a guild's transactions, newest first; limit <= 0 means all
	ListByGuild(ctx context.Context, guildID int64, limit int) ([]*models.Transaction, error)

	// ListByGuildSince returns a guild's transactions at or after the given time, newest first
	ListByGuildSince(ctx context.Context, guildID int64, since time.Time) ([]*models.Transaction, error)
}

// CurrencyService defines the interface for currency directory operations
type CurrencyService interface {
	// ListCurrencies returns all currencies for a guild
	ListCurrencies(ctx context.Context, guildID int64) ([]*models.Currency, error)

	// FindCurrency retrieves a currency by name, failing with ErrCurrencyNotFound
	FindCurrency(ctx context.Context, guildID int64, name string) (*models.Currency, error)

	// CreateCurrency defines a new currency; duplicate names fail with ErrCurrencyExists
	CreateCurrency(ctx context.Context, guildID int64, name, symbol string) (*models.Currency, error)

	// DeleteCurrency removes a currency; fails with ErrCurrencyNotFound if absent.
	// Wallet balances referencing the name are left in place.
	DeleteCurrency(ctx context.Context, guildID int64, name string) error
}

// LedgerService defines the interface for wallet balance operations
type LedgerService interface {
	// GetOrCreateWallet retrieves a user's wallet, creating an empty one on first use
	GetOrCreateWallet(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// Transfer moves amount of a currency between two users' wallets and
	// appends exactly one transaction record. Both wallets must already
	// exist; either side absent fails with ErrWalletNotFound.
	Transfer(ctx context.Context, guildID, fromUserID, toUserID int64, currencyName string, amount int64) (*models.TransferResult, error)

	// Deposit credits a user's wallet (administrative grant)
	Deposit(ctx context.Context, guildID, adminUserID, toUserID int64, currencyName string, amount int64) (*models.Transaction, error)

	// Deduct debits the user's own wallet (self-adjustment)
	Deduct(ctx context.Context, guildID, userID int64, currencyName string, amount int64) (*models.Transaction, error)

	// ListTransactions returns a guild's audit log, newest first
	ListTransactions(ctx context.Context, guildID int64, limit int) ([]*models.Transaction, error)

	// ListTransactionsSince returns the audit entries at or after the given time
	ListTransactionsSince(ctx context.Context, guildID int64, since time.Time) ([]*models.Transaction, error)
}

// RewardService defines the interface for cooldown-gated reward actions
type RewardService interface {
	// Work credits a random amount of a random guild currency, once per cooldown window
	Work(ctx context.Context, guildID, userID int64) (*models.WorkResult, error)

	// Steal moves a random cut of a victim's holdings to the actor,
	// keyed on the actor's own cooldown
	Steal(ctx context.Context, guildID, actorID, victimID int64) (*models.StealResult, error)
}

// CharacterService defines the interface for character sheet operations
type CharacterService interface {
	// CreateCharacter registers a new character sheet for a user
	CreateCharacter(ctx context.Context, input CreateCharacterInput) (*models.Character, error)

	// GetCharacter returns a user's oldest character, failing with ErrCharacterNotFound
	GetCharacter(ctx context.Context, guildID, userID int64) (*models.Character, error)

	// GetCharacterByName returns a user's character by name, failing with ErrCharacterNotFound
	GetCharacterByName(ctx context.Context, guildID, userID int64, name string) (*models.Character, error)

	// ListCharacters returns all characters in a guild, newest first
	ListCharacters(ctx context.Context, guildID int64) ([]*models.Character, error)

	// ListUserCharacters returns a user's characters in a guild, newest first
	ListUserCharacters(ctx context.Context, guildID, userID int64) ([]*models.Character, error)

	// UpdateCharacter merges level and/or rank; nil leaves a field unchanged
	UpdateCharacter(ctx context.Context, id int64, level *int, rank *string) (*models.Character, error)

	// DeleteCharacter removes a character, failing with ErrCharacterNotFound if absent
	DeleteCharacter(ctx context.Context, id int64) error
}

// CreateCharacterInput carries the validated fields for a new character.
// Rank defaults to models.DefaultRank when empty.
type CreateCharacterInput struct {
	GuildID   int64
	UserID    int64
	Name      string
	Level     int
	Class     string
	Race      string
	Alignment string
	Rank      string
	Languages []string
	ImageURL  *string
	N20URL    *string
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings or creates default ones if not found
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// SetTransactionLogChannel upserts the channel transactions are mirrored to
	SetTransactionLogChannel(ctx context.Context, guildID, channelID int64) (*models.GuildSettings, error)
}

// BackupService defines the interface for CSV export/import of guild data
type BackupService interface {
	// Export serializes the guild's currencies, characters and balances to CSV
	Export(ctx context.Context, guildID int64) (*GuildExport, error)

	// ImportCurrencies loads currency rows; returns the imported count and
	// per-row error descriptions
	ImportCurrencies(ctx context.Context, guildID int64, data []byte) (int, []string, error)

	// ImportCharacters loads character rows
	ImportCharacters(ctx context.Context, guildID int64, data []byte) (int, []string, error)

	// ImportBalances loads balance rows, replacing each user's wallet wholesale
	ImportBalances(ctx context.Context, guildID int64, data []byte) (int, []string, error)
}

// GuildExport holds the serialized CSV datasets of a guild backup
type GuildExport struct {
	Currencies []byte
	Characters []byte
	Balances   []byte
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	CurrencyRepository() CurrencyRepository
	WalletRepository() WalletRepository
	CharacterRepository() CharacterRepository
	GuildSettingsRepository() GuildSettingsRepository
	TransactionRepository() TransactionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a new UnitOfWork
	Create() UnitOfWork
}
