package service

import (
	"context"
	"time"

	"coffer/events"
	"coffer/models"

	"github.com/stretchr/testify/mock"
)

// MockCurrencyRepository is a mock implementation of CurrencyRepository
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) List(ctx context.Context, guildID int64) ([]*models.Currency, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.Currency, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Create(ctx context.Context, guildID int64, name, symbol string) (*models.Currency, error) {
	args := m.Called(ctx, guildID, name, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, guildID int64, name string) (bool, error) {
	args := m.Called(ctx, guildID, name)
	return args.Bool(0), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.Wallet, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, walletID int64, currencyName string, amount int64) error {
	args := m.Called(ctx, walletID, currencyName, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, walletID int64, currencyName string, amount int64) error {
	args := m.Called(ctx, walletID, currencyName, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) UpdateCooldowns(ctx context.Context, walletID int64, lastWorked, lastStolen *time.Time) error {
	args := m.Called(ctx, walletID, lastWorked, lastStolen)
	return args.Error(0)
}

func (m *MockWalletRepository) ReplaceBalances(ctx context.Context, walletID int64, balances map[string]int64) error {
	args := m.Called(ctx, walletID, balances)
	return args.Error(0)
}

// MockCharacterRepository is a mock implementation of CharacterRepository
type MockCharacterRepository struct {
	mock.Mock
}

func (m *MockCharacterRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.Character, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) GetByUserAndName(ctx context.Context, guildID, userID int64, name string) (*models.Character, error) {
	args := m.Called(ctx, guildID, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.Character, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Character, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) Create(ctx context.Context, character *models.Character) error {
	args := m.Called(ctx, character)
	return args.Error(0)
}

func (m *MockCharacterRepository) Update(ctx context.Context, id int64, level *int, rank *string) (*models.Character, error) {
	args := m.Called(ctx, id, level, rank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByGuild(ctx context.Context, guildID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByGuildSince(ctx context.Context, guildID int64, since time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, guildID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher that
// records published events for assertions
type MockEventPublisher struct {
	mock.Mock
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
	m.Events = append(m.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	currencyRepo    CurrencyRepository
	walletRepo      WalletRepository
	characterRepo   CharacterRepository
	settingsRepo    GuildSettingsRepository
	transactionRepo TransactionRepository
	eventBus        EventPublisher
}

// SetRepositories wires the mocks the unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	currencyRepo CurrencyRepository,
	walletRepo WalletRepository,
	characterRepo CharacterRepository,
	settingsRepo GuildSettingsRepository,
	transactionRepo TransactionRepository,
	eventBus EventPublisher,
) {
	m.currencyRepo = currencyRepo
	m.walletRepo = walletRepo
	m.characterRepo = characterRepo
	m.settingsRepo = settingsRepo
	m.transactionRepo = transactionRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) CurrencyRepository() CurrencyRepository {
	return m.currencyRepo
}

func (m *MockUnitOfWork) WalletRepository() WalletRepository {
	return m.walletRepo
}

func (m *MockUnitOfWork) CharacterRepository() CharacterRepository {
	return m.characterRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
