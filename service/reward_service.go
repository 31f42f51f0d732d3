package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"coffer/events"
	"coffer/models"
)

// RewardCooldown is how long a user must wait between uses of the same
// reward action. Work and steal are tracked independently.
const RewardCooldown = 72 * time.Hour

// StealMinimumBalance is the smallest victim balance a currency needs to
// be stealable. Half of 1 rounds down to 0, which would make the draw
// degenerate, so single-unit holdings are skipped.
const StealMinimumBalance = 2

// rewardService implements the RewardService interface
type rewardService struct {
	uowFactory UnitOfWorkFactory
	minReward  int64
	maxReward  int64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRewardService creates a new reward service. A nil rng falls back to
// a time-seeded source; tests inject a fixed seed.
func NewRewardService(uowFactory UnitOfWorkFactory, minReward, maxReward int64, rng *rand.Rand) RewardService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &rewardService{
		uowFactory: uowFactory,
		minReward:  minReward,
		maxReward:  maxReward,
		rng:        rng,
	}
}

// intn draws from [0, n) under the lock; rand.Rand is not goroutine safe
func (s *rewardService) intn(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63n(n)
}

// Work credits a random amount of a random guild currency, once per cooldown window
func (s *rewardService) Work(ctx context.Context, guildID, userID int64) (*models.WorkResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := getOrCreateWallet(ctx, uow.WalletRepository(), guildID, userID)
	if err != nil {
		return nil, err
	}

	// Cooldown is checked before anything else so a user on cooldown gets
	// the wait time even when the guild has no currencies yet
	now := time.Now().UTC()
	if wallet.LastWorked != nil {
		if elapsed := now.Sub(*wallet.LastWorked); elapsed < RewardCooldown {
			return nil, &CooldownError{Action: "work", Remaining: RewardCooldown - elapsed}
		}
	}

	currencies, err := uow.CurrencyRepository().List(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if len(currencies) == 0 {
		return nil, fmt.Errorf("guild %d: %w", guildID, ErrNoCurrencies)
	}

	currency := currencies[s.intn(int64(len(currencies)))]
	amount := s.minReward + s.intn(s.maxReward-s.minReward+1)

	if err := uow.WalletRepository().Credit(ctx, wallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}
	if err := uow.WalletRepository().UpdateCooldowns(ctx, wallet.ID, &now, nil); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		GuildID:      guildID,
		FromUserID:   userID,
		ToUserID:     userID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindWork,
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
		Kind:         models.TransactionKindWork,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WorkResult{
		Currency:   currency,
		Amount:     amount,
		NewBalance: wallet.Balance(currency.Name) + amount,
	}, nil
}

// Steal moves a random cut of a victim's holdings to the actor,
// keyed on the actor's own cooldown
func (s *rewardService) Steal(ctx context.Context, guildID, actorID, victimID int64) (*models.StealResult, error) {
	if actorID == victimID {
		return nil, fmt.Errorf("steal by user %d: %w", actorID, ErrSelfTarget)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	actorWallet, err := getOrCreateWallet(ctx, uow.WalletRepository(), guildID, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if actorWallet.LastStolen != nil {
		if elapsed := now.Sub(*actorWallet.LastStolen); elapsed < RewardCooldown {
			return nil, &CooldownError{Action: "steal", Remaining: RewardCooldown - elapsed}
		}
	}

	currencies, err := uow.CurrencyRepository().List(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if len(currencies) == 0 {
		return nil, fmt.Errorf("guild %d: %w", guildID, ErrNoCurrencies)
	}

	victimWallet, err := uow.WalletRepository().GetByUser(ctx, guildID, victimID)
	if err != nil {
		return nil, fmt.Errorf("failed to get victim wallet: %w", err)
	}
	if victimWallet == nil {
		return nil, fmt.Errorf("user %d has no wallet: %w", victimID, ErrNothingToSteal)
	}

	// Only currencies still in the directory count, and only where the
	// victim holds enough for half to round to at least one unit
	var eligible []*models.Currency
	for _, currency := range currencies {
		if victimWallet.Balance(currency.Name) >= StealMinimumBalance {
			eligible = append(eligible, currency)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("user %d holds nothing stealable: %w", victimID, ErrNothingToSteal)
	}

	currency := eligible[s.intn(int64(len(eligible)))]
	maxSteal := victimWallet.Balance(currency.Name) / 2
	amount := 1 + s.intn(maxSteal)

	if err := uow.WalletRepository().Debit(ctx, victimWallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}
	if err := uow.WalletRepository().Credit(ctx, actorWallet.ID, currency.Name, amount); err != nil {
		return nil, err
	}
	if err := uow.WalletRepository().UpdateCooldowns(ctx, actorWallet.ID, nil, &now); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		GuildID:      guildID,
		FromUserID:   victimID,
		ToUserID:     actorID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindSteal,
	}
	if err := uow.TransactionRepository().Create(ctx, transaction); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TransactionLoggedEvent{
		GuildID:      guildID,
		FromUserID:   victimID,
		ToUserID:     actorID,
		CurrencyName: currency.Name,
		Amount:       amount,
		Kind:         models.TransactionKindSteal,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.StealResult{
		Currency:        currency,
		Amount:          amount,
		ActorNewBalance: actorWallet.Balance(currency.Name) + amount,
	}, nil
}
