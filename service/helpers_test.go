package service

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// serviceMocks bundles a fully wired mock unit of work for service tests.
// Begin, Commit, Rollback and Publish are pre-stubbed; tests override or
// assert on the repositories they care about.
type serviceMocks struct {
	factory      *MockUnitOfWorkFactory
	uow          *MockUnitOfWork
	currencies   *MockCurrencyRepository
	wallets      *MockWalletRepository
	characters   *MockCharacterRepository
	settings     *MockGuildSettingsRepository
	transactions *MockTransactionRepository
	bus          *MockEventPublisher
}

func newServiceMocks(t *testing.T) *serviceMocks {
	t.Helper()

	m := &serviceMocks{
		factory:      &MockUnitOfWorkFactory{},
		uow:          &MockUnitOfWork{},
		currencies:   &MockCurrencyRepository{},
		wallets:      &MockWalletRepository{},
		characters:   &MockCharacterRepository{},
		settings:     &MockGuildSettingsRepository{},
		transactions: &MockTransactionRepository{},
		bus:          &MockEventPublisher{},
	}

	m.uow.SetRepositories(m.currencies, m.wallets, m.characters, m.settings, m.transactions, m.bus)
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.bus.On("Publish", mock.Anything).Return()
	m.factory.On("Create").Return(m.uow)

	return m
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
