package bot

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"
	"coffer/events"
	"coffer/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token string
}

type Bot struct {
	config               Config
	session              *discordgo.Session
	currencyService      service.CurrencyService
	ledgerService        service.LedgerService
	rewardService        service.RewardService
	characterService     service.CharacterService
	guildSettingsService service.GuildSettingsService
	backupService        service.BackupService
	eventBus             *events.Bus
}

func New(
	config Config,
	currencyService service.CurrencyService,
	ledgerService service.LedgerService,
	rewardService service.RewardService,
	characterService service.CharacterService,
	guildSettingsService service.GuildSettingsService,
	backupService service.BackupService,
	eventBus *events.Bus,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:               config,
		session:              dg,
		currencyService:      currencyService,
		ledgerService:        ledgerService,
		rewardService:        rewardService,
		characterService:     characterService,
		guildSettingsService: guildSettingsService,
		backupService:        backupService,
		eventBus:             eventBus,
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Committed balance movements and currency removals are mirrored to the
	// guild's configured log channel
	eventBus.Subscribe(events.EventTypeTransactionLogged, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.TransactionLoggedEvent); ok {
			bot.mirrorTransaction(ctx, e)
		}
	})
	eventBus.Subscribe(events.EventTypeCurrencyDeleted, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.CurrencyDeletedEvent); ok {
			bot.mirrorCurrencyDeleted(ctx, e)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "currency":
		b.handleCurrencyCommand(s, i)
	case "money":
		b.handleMoneyCommand(s, i)
	case "work":
		b.handleWork(s, i)
	case "steal":
		b.handleSteal(s, i)
	case "character":
		b.handleCharacterCommand(s, i)
	case "settings":
		b.handleSettingsCommand(s, i)
	case "backup":
		b.handleBackupCommand(s, i)
	}
}

// interactionGuildAndUser extracts the guild and invoking user IDs
func interactionGuildAndUser(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	guildID, err = parseSnowflake(i.GuildID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild id %q: %w", i.GuildID, err)
	}
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, fmt.Errorf("interaction has no member")
	}
	userID, err = parseSnowflake(i.Member.User.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user id %q: %w", i.Member.User.ID, err)
	}
	return guildID, userID, nil
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// respondWithDomainError maps known service failures onto user-facing text
func (b *Bot) respondWithDomainError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, fallback string) {
	var cooldownErr *service.CooldownError
	if errors.As(err, &cooldownErr) {
		days, hours := service.SplitCooldown(cooldownErr.Remaining)
		b.respondWithError(s, i, fmt.Sprintf("You must wait **%s** before you can %s again.", common.FormatCooldownWait(days, hours), cooldownErr.Action))
		return
	}

	switch {
	case errors.Is(err, service.ErrWalletNotFound):
		b.respondWithError(s, i, "That user doesn't have a wallet yet.")
	case errors.Is(err, service.ErrInsufficientFunds):
		b.respondWithError(s, i, "You don't have enough of that currency.")
	case errors.Is(err, service.ErrCurrencyNotFound):
		b.respondWithError(s, i, "That currency does not exist in this server.")
	case errors.Is(err, service.ErrCurrencyExists):
		b.respondWithError(s, i, "A currency with that name already exists.")
	case errors.Is(err, service.ErrNoCurrencies):
		b.respondWithError(s, i, "This server has no currencies yet. An admin can add one with `/currency create`.")
	case errors.Is(err, service.ErrCharacterNotFound):
		b.respondWithError(s, i, "Character not found.")
	case errors.Is(err, service.ErrNothingToSteal):
		b.respondWithError(s, i, "That user has nothing worth stealing.")
	case errors.Is(err, service.ErrSelfTarget):
		b.respondWithError(s, i, "You cannot target yourself.")
	default:
		log.Errorf("Command failed: %v", err)
		b.respondWithError(s, i, fallback)
	}
}
