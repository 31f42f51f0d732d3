package service

import (
	"context"
	"fmt"

	"coffer/events"
	"coffer/models"
)

// currencyService implements the CurrencyService interface
type currencyService struct {
	uowFactory UnitOfWorkFactory
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(uowFactory UnitOfWorkFactory) CurrencyService {
	return &currencyService{
		uowFactory: uowFactory,
	}
}

// ListCurrencies returns all currencies for a guild
func (s *currencyService) ListCurrencies(ctx context.Context, guildID int64) ([]*models.Currency, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	currencies, err := uow.CurrencyRepository().List(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return currencies, nil
}

// FindCurrency retrieves a currency by name, failing with ErrCurrencyNotFound
func (s *currencyService) FindCurrency(ctx context.Context, guildID int64, name string) (*models.Currency, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	currency, err := uow.CurrencyRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	if currency == nil {
		return nil, fmt.Errorf("currency %q in guild %d: %w", name, guildID, ErrCurrencyNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return currency, nil
}

// CreateCurrency defines a new currency; duplicate names fail with ErrCurrencyExists
func (s *currencyService) CreateCurrency(ctx context.Context, guildID int64, name, symbol string) (*models.Currency, error) {
	if name == "" {
		return nil, fmt.Errorf("currency name must not be empty")
	}
	if symbol == "" {
		return nil, fmt.Errorf("currency symbol must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	currency, err := uow.CurrencyRepository().Create(ctx, guildID, name, symbol)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return currency, nil
}

// DeleteCurrency removes a currency; fails with ErrCurrencyNotFound if absent.
// Orphaned wallet balances are left behind on purpose: lookups always filter
// by the current directory, and re-creating the name revives them.
func (s *currencyService) DeleteCurrency(ctx context.Context, guildID int64, name string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.CurrencyRepository().Delete(ctx, guildID, name)
	if err != nil {
		return fmt.Errorf("failed to delete currency: %w", err)
	}
	if !deleted {
		return fmt.Errorf("currency %q in guild %d: %w", name, guildID, ErrCurrencyNotFound)
	}

	uow.EventBus().Publish(events.CurrencyDeletedEvent{
		GuildID:      guildID,
		CurrencyName: name,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
