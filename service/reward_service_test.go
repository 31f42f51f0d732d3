package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"coffer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRewardService(m *serviceMocks) RewardService {
	return NewRewardService(m.factory, 10, 50, rand.New(rand.NewSource(1)))
}

func TestRewardService_Work_Success(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	wallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{"gold": 5}}
	currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(wallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
	m.wallets.On("Credit", ctx, int64(10), "gold", mock.AnythingOfType("int64")).Return(nil)
	m.wallets.On("UpdateCooldowns", ctx, int64(10), mock.AnythingOfType("*time.Time"), (*time.Time)(nil)).Return(nil)
	m.transactions.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Kind == models.TransactionKindWork && tx.FromUserID == 200 && tx.ToUserID == 200
	})).Return(nil)

	result, err := service.Work(ctx, 100, 200)

	require.NoError(t, err)
	assert.Equal(t, "gold", result.Currency.Name)
	assert.GreaterOrEqual(t, result.Amount, int64(10))
	assert.LessOrEqual(t, result.Amount, int64(50))
	assert.Equal(t, 5+result.Amount, result.NewBalance)
	require.Len(t, m.bus.Events, 1)
}

func TestRewardService_Work_OnCooldown(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	lastWorked := time.Now().UTC().Add(-24 * time.Hour)
	wallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, LastWorked: &lastWorked, Balances: map[string]int64{}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(wallet, nil)

	result, err := service.Work(ctx, 100, 200)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOnCooldown))
	assert.Nil(t, result)

	var cooldownErr *CooldownError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, "work", cooldownErr.Action)
	assert.InDelta(t, float64(48*time.Hour), float64(cooldownErr.Remaining), float64(time.Minute))

	m.wallets.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRewardService_Work_CooldownCheckedBeforeCurrencyLookup(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	lastWorked := time.Now().UTC().Add(-time.Hour)
	wallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, LastWorked: &lastWorked, Balances: map[string]int64{}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(wallet, nil)

	_, err := service.Work(ctx, 100, 200)

	// A user on cooldown in a guild with no currencies still gets the wait time
	assert.True(t, errors.Is(err, ErrOnCooldown))
	m.currencies.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRewardService_Work_NoCurrencies(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	wallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(wallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return([]*models.Currency{}, nil)

	result, err := service.Work(ctx, 100, 200)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCurrencies))
	assert.Nil(t, result)
}

func TestRewardService_Work_ExpiredCooldownAllowsAction(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	lastWorked := time.Now().UTC().Add(-RewardCooldown - time.Hour)
	wallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, LastWorked: &lastWorked, Balances: map[string]int64{}}
	currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(wallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
	m.wallets.On("Credit", ctx, int64(10), "gold", mock.AnythingOfType("int64")).Return(nil)
	m.wallets.On("UpdateCooldowns", ctx, int64(10), mock.AnythingOfType("*time.Time"), (*time.Time)(nil)).Return(nil)
	m.transactions.On("Create", ctx, mock.Anything).Return(nil)

	result, err := service.Work(ctx, 100, 200)

	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestRewardService_Steal_SelfTarget(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)

	result, err := service.Steal(context.Background(), 100, 200, 200)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSelfTarget))
	assert.Nil(t, result)
	m.factory.AssertNotCalled(t, "Create")
}

func TestRewardService_Steal_Success(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	actorWallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{"gold": 3}}
	victimWallet := &models.Wallet{ID: 11, GuildID: 100, UserID: 300, Balances: map[string]int64{"gold": 100}}
	currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(actorWallet, nil)
	m.wallets.On("GetByUser", ctx, int64(100), int64(300)).Return(victimWallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)

	var stolen int64
	m.wallets.On("Debit", ctx, int64(11), "gold", mock.AnythingOfType("int64")).
		Run(func(args mock.Arguments) { stolen = args.Get(3).(int64) }).Return(nil)
	m.wallets.On("Credit", ctx, int64(10), "gold", mock.AnythingOfType("int64")).Return(nil)
	m.wallets.On("UpdateCooldowns", ctx, int64(10), (*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(nil)
	m.transactions.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		// Audit direction runs victim to thief
		return tx.Kind == models.TransactionKindSteal && tx.FromUserID == 300 && tx.ToUserID == 200
	})).Return(nil)

	result, err := service.Steal(ctx, 100, 200, 300)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Amount, int64(1))
	assert.LessOrEqual(t, result.Amount, int64(50))
	assert.Equal(t, stolen, result.Amount)
	assert.Equal(t, 3+result.Amount, result.ActorNewBalance)
}

func TestRewardService_Steal_OnCooldown(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	lastStolen := time.Now().UTC().Add(-time.Hour)
	actorWallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, LastStolen: &lastStolen, Balances: map[string]int64{}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(actorWallet, nil)

	result, err := service.Steal(ctx, 100, 200, 300)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOnCooldown))
	assert.Nil(t, result)

	var cooldownErr *CooldownError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, "steal", cooldownErr.Action)
}

func TestRewardService_Steal_VictimHasNoWallet(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	actorWallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{}}
	currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(actorWallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
	m.wallets.On("GetByUser", ctx, int64(100), int64(300)).Return(nil, nil)

	result, err := service.Steal(ctx, 100, 200, 300)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNothingToSteal))
	assert.Nil(t, result)
}

func TestRewardService_Steal_SingleUnitHoldingIsNotStealable(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	actorWallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{}}
	victimWallet := &models.Wallet{ID: 11, GuildID: 100, UserID: 300, Balances: map[string]int64{"gold": 1}}
	currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(actorWallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
	m.wallets.On("GetByUser", ctx, int64(100), int64(300)).Return(victimWallet, nil)

	result, err := service.Steal(ctx, 100, 200, 300)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNothingToSteal))
	assert.Nil(t, result)
	m.wallets.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRewardService_Steal_SkipsDeletedCurrencyHoldings(t *testing.T) {
	m := newServiceMocks(t)
	service := newTestRewardService(m)
	ctx := context.Background()

	actorWallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{}}
	// Victim holds plenty of a currency that is no longer in the directory
	victimWallet := &models.Wallet{ID: 11, GuildID: 100, UserID: 300, Balances: map[string]int64{"retired": 500}}
	currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

	m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(actorWallet, nil)
	m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
	m.wallets.On("GetByUser", ctx, int64(100), int64(300)).Return(victimWallet, nil)

	result, err := service.Steal(ctx, 100, 200, 300)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNothingToSteal))
	assert.Nil(t, result)
}

func TestRewardService_Steal_AmountNeverExceedsHalf(t *testing.T) {
	// Draw repeatedly with a shared seed and check the bound holds
	for seed := int64(0); seed < 20; seed++ {
		m := newServiceMocks(t)
		service := NewRewardService(m.factory, 10, 50, rand.New(rand.NewSource(seed)))
		ctx := context.Background()

		actorWallet := &models.Wallet{ID: 10, GuildID: 100, UserID: 200, Balances: map[string]int64{}}
		victimWallet := &models.Wallet{ID: 11, GuildID: 100, UserID: 300, Balances: map[string]int64{"gold": 7}}
		currencies := []*models.Currency{{ID: 1, GuildID: 100, Name: "gold", Symbol: "g"}}

		m.wallets.On("GetByUser", ctx, int64(100), int64(200)).Return(actorWallet, nil)
		m.currencies.On("List", ctx, int64(100)).Return(currencies, nil)
		m.wallets.On("GetByUser", ctx, int64(100), int64(300)).Return(victimWallet, nil)
		m.wallets.On("Debit", ctx, int64(11), "gold", mock.AnythingOfType("int64")).Return(nil)
		m.wallets.On("Credit", ctx, int64(10), "gold", mock.AnythingOfType("int64")).Return(nil)
		m.wallets.On("UpdateCooldowns", ctx, int64(10), (*time.Time)(nil), mock.AnythingOfType("*time.Time")).Return(nil)
		m.transactions.On("Create", ctx, mock.Anything).Return(nil)

		result, err := service.Steal(ctx, 100, 200, 300)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Amount, int64(1))
		assert.LessOrEqual(t, result.Amount, int64(3))
	}
}
