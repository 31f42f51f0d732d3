package service

import (
	"context"
	"fmt"
	"time"

	"coffer/events"
	"coffer/models"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateWallet retrieves a user's wallet, creating an empty one on first use
func (s *ledgerService) GetOrCreateWallet(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := getOrCreateWallet(ctx, uow.WalletRepository(), guildID, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallet, nil
}

// getOrCreateWallet is the shared lookup used by every balance-touching path
func getOrCreateWallet(ctx context.Context, repo WalletRepository, guildID, userID int64) (*models.Wallet, error) {
	wallet, err := repo.GetByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet, err = repo.Create(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return wallet, nil
}

// Transfer moves amount of a currency between two users' wallets and
// appends exactly one transaction record
func (s *ledgerService) Transfer(ctx context.Context, guildID, fromUserID, toUserID int64, currencyName string, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("transfer from user %d: %w", fromUserID, ErrSelfTarget)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	currency, err := uow.CurrencyRepository().GetByName(ctx, guildID, currencyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	if currency == nil {
		return nil, fmt.Errorf("currency %q in guild %d: %w", currencyName, guildID, ErrCurrencyNotFound)
	}

	// A transfer never creates wallets: both parties must already be in the
	// economy, so an absent side is a distinct failure from a short balance
	fromWallet, err := uow.WalletRepository().GetByUser(ctx, guildID, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if fromWallet == nil {
		return nil, fmt.Errorf("user %d in guild %d: %w", fromUserID, guildID, ErrWalletNotFound)
	}
	toWallet, err := uow.WalletRepository().GetByUser(ctx, guildID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if toWallet == nil {
		return nil, fmt.Errorf("user %d in guild %d: %w", toUserID, guildID, ErrWalletNotFound)
	}

	// The conditional debit is the only balance check. A stale read here
	// cannot overdraw: two racing transfers both reach Debit, one wins the
	// row update, the other sees zero rows affected and fails.
	if err := uow.WalletRepository().Debit(ctx, fromWallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}
	if err := uow.WalletRepository().Credit(ctx, toWallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		GuildID:      guildID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindTransfer,
	}
	if err := uow.TransactionRepository().Create(ctx, transaction); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionLoggedEvent{
		GuildID:      guildID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindTransfer,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TransferResult{
		Transaction: transaction,
		Currency:    currency,
		NewBalance:  fromWallet.Balance(currency.Name) - amount,
	}, nil
}

// Deposit credits a user's wallet (administrative grant)
func (s *ledgerService) Deposit(ctx context.Context, guildID, adminUserID, toUserID int64, currencyName string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive, got %d", amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	currency, err := uow.CurrencyRepository().GetByName(ctx, guildID, currencyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	if currency == nil {
		return nil, fmt.Errorf("currency %q in guild %d: %w", currencyName, guildID, ErrCurrencyNotFound)
	}

	wallet, err := getOrCreateWallet(ctx, uow.WalletRepository(), guildID, toUserID)
	if err != nil {
		return nil, err
	}

	if err := uow.WalletRepository().Credit(ctx, wallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		GuildID:      guildID,
		FromUserID:   adminUserID,
		ToUserID:     toUserID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindDeposit,
	}
	if err := uow.TransactionRepository().Create(ctx, transaction); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionLoggedEvent{
		GuildID:      guildID,
		FromUserID:   adminUserID,
		ToUserID:     toUserID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindDeposit,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transaction, nil
}

// Deduct debits the user's own wallet (self-adjustment)
func (s *ledgerService) Deduct(ctx context.Context, guildID, userID int64, currencyName string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deduction amount must be positive, got %d", amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	currency, err := uow.CurrencyRepository().GetByName(ctx, guildID, currencyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	if currency == nil {
		return nil, fmt.Errorf("currency %q in guild %d: %w", currencyName, guildID, ErrCurrencyNotFound)
	}

	wallet, err := getOrCreateWallet(ctx, uow.WalletRepository(), guildID, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.WalletRepository().Debit(ctx, wallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		GuildID:      guildID,
		FromUserID:   userID,
		ToUserID:     userID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindDeduction,
	}
	if err := uow.TransactionRepository().Create(ctx, transaction); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionLoggedEvent{
		GuildID:      guildID,
		FromUserID:   userID,
		ToUserID:     userID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindDeduction,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transaction, nil
}

// ListTransactions returns a guild's audit log, newest first
func (s *ledgerService) ListTransactions(ctx context.Context, guildID int64, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	transactions, err := uow.TransactionRepository().ListByGuild(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transactions, nil
}

// ListTransactionsSince returns the audit entries at or after the given time
func (s *ledgerService) ListTransactionsSince(ctx context.Context, guildID int64, since time.Time) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	transactions, err := uow.TransactionRepository().ListByGuildSince(ctx, guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transactions, nil
}
