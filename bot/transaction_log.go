package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"
	"coffer/events"
	"coffer/models"
)

// mirrorTransaction posts a committed balance movement to the guild's
// configured log channel, if any
func (b *Bot) mirrorTransaction(ctx context.Context, event events.TransactionLoggedEvent) {
	channelID, ok := b.logChannelFor(ctx, event.GuildID)
	if !ok {
		return
	}

	var message string
	switch event.Kind {
	case models.TransactionKindTransfer:
		message = fmt.Sprintf("💸 <@%d> sent **%s %s** to <@%d>", event.FromUserID, common.FormatAmount(event.Amount), event.CurrencyName, event.ToUserID)
	case models.TransactionKindDeposit:
		message = fmt.Sprintf("🏦 <@%d> deposited **%s %s** to <@%d>", event.FromUserID, common.FormatAmount(event.Amount), event.CurrencyName, event.ToUserID)
	case models.TransactionKindDeduction:
		message = fmt.Sprintf("🔥 <@%d> deducted **%s %s**", event.FromUserID, common.FormatAmount(event.Amount), event.CurrencyName)
	case models.TransactionKindWork:
		message = fmt.Sprintf("💼 <@%d> earned **%s %s** working", event.ToUserID, common.FormatAmount(event.Amount), event.CurrencyName)
	case models.TransactionKindSteal:
		message = fmt.Sprintf("🦝 <@%d> stole **%s %s** from <@%d>", event.ToUserID, common.FormatAmount(event.Amount), event.CurrencyName, event.FromUserID)
	default:
		message = fmt.Sprintf("<@%d> -> <@%d>: %s %s (%s)", event.FromUserID, event.ToUserID, common.FormatAmount(event.Amount), event.CurrencyName, event.Kind)
	}

	if _, err := b.session.ChannelMessageSend(channelID, message); err != nil {
		log.Errorf("Error mirroring transaction to channel %s: %v", channelID, err)
	}
}

func (b *Bot) mirrorCurrencyDeleted(ctx context.Context, event events.CurrencyDeletedEvent) {
	channelID, ok := b.logChannelFor(ctx, event.GuildID)
	if !ok {
		return
	}

	message := fmt.Sprintf("🗑️ Currency **%s** was removed", event.CurrencyName)
	if _, err := b.session.ChannelMessageSend(channelID, message); err != nil {
		log.Errorf("Error mirroring currency removal to channel %s: %v", channelID, err)
	}
}

func (b *Bot) logChannelFor(ctx context.Context, guildID int64) (string, bool) {
	settings, err := b.guildSettingsService.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.Errorf("Error getting settings for guild %d: %v", guildID, err)
		return "", false
	}
	if settings.TransactionLogChannel == nil {
		return "", false
	}
	return strconv.FormatInt(*settings.TransactionLogChannel, 10), true
}
